// Package requestid implements the set/propagate request-id middleware
// pair: Set attaches an id to an inbound request (from an existing header
// or a MakeRequestId producer), Propagate copies it back onto the
// response. Grounded on
// original_source/rama-http/src/layer/request_id.rs.
package requestid

import (
	"context"
	"net/http"

	"github.com/edgeproxy/edgeproxy/internal/extmap"
)

// CanonicalHeader and XHeader are the two conventional request-id header
// names recognised out of the box; see RFC 6648 on the bare form.
const (
	CanonicalHeader = "Request-Id"
	XHeader         = "X-Request-Id"
)

// RequestId identifies one request across the lifetime of its processing.
type RequestId struct {
	value string
}

func New(value string) RequestId { return RequestId{value: value} }

func (r RequestId) String() string { return r.value }
func (r RequestId) IsZero() bool   { return r.value == "" }

// MakeRequestId produces a RequestId for a request that did not already
// carry one. Returning IsZero() true means "no id available"; Set then
// leaves the request without one.
type MakeRequestId interface {
	MakeRequestId(req *http.Request) RequestId
}

type MakeRequestIdFunc func(req *http.Request) RequestId

func (f MakeRequestIdFunc) MakeRequestId(req *http.Request) RequestId { return f(req) }

// Set inspects headerName on req; if present, it is copied into ext as a
// RequestId (unless one is already recorded there). If absent, producer is
// consulted, and any id it yields is attached to both the header and ext.
func Set(ext *extmap.Map, req *http.Request, headerName string, producer MakeRequestId) {
	if existing := req.Header.Get(headerName); existing != "" {
		if !extmap.Contains[RequestId](ext) {
			extmap.Insert(ext, New(existing))
		}
		return
	}
	if producer == nil {
		return
	}
	id := producer.MakeRequestId(req)
	if id.IsZero() {
		return
	}
	req.Header.Set(headerName, id.String())
	extmap.Insert(ext, id)
}

// Propagate copies the RequestId recorded in ext onto resp's headerName,
// unless resp already carries one.
func Propagate(ext *extmap.Map, resp http.Header, headerName string) {
	if resp.Get(headerName) != "" {
		return
	}
	id, ok := extmap.Latest[RequestId](ext)
	if !ok || id.IsZero() {
		return
	}
	resp.Set(headerName, id.String())
}

// contextKey is unexported so only this package's accessors can populate or
// read the per-request extmap stashed on a context.Context.
type contextKey struct{}

// WithExtMap returns a context carrying ext, for handlers that need to
// thread the extension map without changing every signature in the chain.
func WithExtMap(ctx context.Context, ext *extmap.Map) context.Context {
	return context.WithValue(ctx, contextKey{}, ext)
}

// ExtMapFrom retrieves the extmap.Map stashed by WithExtMap, or nil.
func ExtMapFrom(ctx context.Context) *extmap.Map {
	ext, _ := ctx.Value(contextKey{}).(*extmap.Map)
	return ext
}
