package corepipe

import (
	"fmt"
	"net/http"
)

// Kind is the error taxonomy from the error-handling design: not a type per
// error, but a small enum of kinds a layer can dispatch on.
type Kind string

const (
	// KindInvalid: malformed input at a boundary; non-retriable.
	KindInvalid Kind = "INVALID"
	// KindUnauthorized: authz failure; surfaced as an appropriate status.
	KindUnauthorized Kind = "UNAUTHORIZED"
	// KindUnavailable: inner dependency temporarily unusable; connector-level retryable.
	KindUnavailable Kind = "UNAVAILABLE"
	// KindTimeout: exceeded configured deadline.
	KindTimeout Kind = "TIMEOUT"
	// KindCanceled: graceful shutdown or client disconnect.
	KindCanceled Kind = "CANCELED"
	// KindProtocol: peer violated wire contract; close connection.
	KindProtocol Kind = "PROTOCOL"
	// KindInternal: invariant broken.
	KindInternal Kind = "INTERNAL"
)

// Error is a structured, taxonomy-tagged error. It never carries the raw
// backend error text onward without explicit intent (Cause is kept for
// logging, not for re-surfacing to external peers).
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind, retaining cause for internal
// diagnostics only.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// HTTPStatus maps a Kind to the user-visible HTTP status per §7: a failed
// authority derivation yields 400, authz failure yields 401/403, destination
// unreachable yields 502, timeout yields 504, graceful shutdown in-flight
// yields 410.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalid:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusForbidden
	case KindUnavailable:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindCanceled:
		return http.StatusGone
	case KindProtocol:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
