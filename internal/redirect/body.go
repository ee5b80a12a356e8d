package redirect

import (
	"io"
	"net/http"
)

// BodyCloner produces a fresh, independently-readable copy of a request
// body so it can be resent on a redirect hop. Implementations that cannot
// clone a particular body should return ok=false; FollowRedirect then
// terminates at the current hop rather than resending a drained body.
type BodyCloner interface {
	CloneBody(req *http.Request) (body io.ReadCloser, ok bool)
}

// NopBodyCloner never clones a non-empty body; only requests that
// advertise an exact zero content length get a synthesized empty body on
// each hop.
type NopBodyCloner struct{}

func (NopBodyCloner) CloneBody(*http.Request) (io.ReadCloser, bool) { return nil, false }

func cloneBody(req *http.Request, cloner BodyCloner) (io.ReadCloser, bool) {
	if req.ContentLength == 0 {
		return http.NoBody, true
	}
	if cloner == nil {
		return nil, false
	}
	return cloner.CloneBody(req)
}
