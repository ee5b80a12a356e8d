// Package grpcneg implements gRPC compression negotiation: given the
// `grpc-encoding` header on an inbound request and the server's enabled
// encoding set, pick an encoding or fail the call with UNIMPLEMENTED and
// a `grpc-accept-encoding` trailer. Grounded on
// original_source/rama-grpc/src/codec/compression.rs.
package grpcneg

import (
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
)

// Encoding is one of the compression encodings this module negotiates.
// Content codecs themselves are out of scope; only the header-level
// negotiation is implemented here.
type Encoding string

const (
	Identity Encoding = "identity"
	Gzip     Encoding = "gzip"
	Deflate  Encoding = "deflate"
	Zstd     Encoding = "zstd"
)

// EncodingHeader and AcceptEncodingHeader are the gRPC-specific metadata
// keys this package reads and writes.
const (
	EncodingHeader       = "grpc-encoding"
	AcceptEncodingHeader = "grpc-accept-encoding"
)

// maxEnabled bounds EnabledEncodings to the three encodings this
// negotiator actually ships support for: gzip, deflate, zstd.
const maxEnabled = 3

// EnabledEncodings is an ordered, deduplicated list of at most three
// encodings a server or client advertises as supported.
type EnabledEncodings struct {
	slots [maxEnabled]Encoding
}

// Enable appends enc to the end of the list if not already present and
// there is a free slot; redundant enables are no-ops.
func (e *EnabledEncodings) Enable(enc Encoding) {
	for _, existing := range e.slots {
		if existing == enc {
			return
		}
	}
	for i := range e.slots {
		if e.slots[i] == "" {
			e.slots[i] = enc
			return
		}
	}
}

// IsEnabled reports whether enc is in the list.
func (e EnabledEncodings) IsEnabled(enc Encoding) bool {
	for _, existing := range e.slots {
		if existing == enc {
			return true
		}
	}
	return false
}

// IsEmpty reports whether no encoding has been enabled.
func (e EnabledEncodings) IsEmpty() bool {
	for _, existing := range e.slots {
		if existing != "" {
			return false
		}
	}
	return true
}

// list returns the non-empty slots in order.
func (e EnabledEncodings) list() []Encoding {
	out := make([]Encoding, 0, maxEnabled)
	for _, existing := range e.slots {
		if existing != "" {
			out = append(out, existing)
		}
	}
	return out
}

// AcceptEncodingValue renders the `grpc-accept-encoding` header value:
// every enabled encoding in order, followed by "identity". Returns "" if
// nothing is enabled.
func (e EnabledEncodings) AcceptEncodingValue() string {
	enabled := e.list()
	if len(enabled) == 0 {
		return ""
	}
	parts := make([]string, 0, len(enabled)+1)
	for _, enc := range enabled {
		parts = append(parts, string(enc))
	}
	parts = append(parts, string(Identity))
	return strings.Join(parts, ",")
}

// Status is a negotiation failure: an UNIMPLEMENTED gRPC status plus the
// trailer metadata the caller should send back alongside it.
type Status struct {
	Code    codes.Code
	Message string
	Trailer metadata.MD
}

func (s *Status) Error() string { return fmt.Sprintf("%s: %s", s.Code, s.Message) }

// Negotiate inspects the `grpc-encoding` value of an inbound request
// against enabled. A requested value of "identity" or "" means no
// compression and always succeeds. "gzip", "deflate" or "zstd" succeed
// when present in enabled. Any other value fails the call with
// UNIMPLEMENTED and a `grpc-accept-encoding` trailer listing enabled
// encodings plus "identity".
func Negotiate(requested string, enabled EnabledEncodings) (Encoding, *Status) {
	requested = strings.TrimSpace(requested)
	if requested == "" || requested == string(Identity) {
		return Identity, nil
	}

	enc := Encoding(requested)
	switch enc {
	case Gzip, Deflate, Zstd:
		if enabled.IsEnabled(enc) {
			return enc, nil
		}
	}

	trailer := metadata.MD{}
	if v := enabled.AcceptEncodingValue(); v != "" {
		trailer.Set(AcceptEncodingHeader, v)
	} else {
		trailer.Set(AcceptEncodingHeader, string(Identity))
	}

	return "", &Status{
		Code:    codes.Unimplemented,
		Message: fmt.Sprintf("content is compressed with %q which isn't supported", requested),
		Trailer: trailer,
	}
}
