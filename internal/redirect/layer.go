package redirect

import (
	"context"
	"net/http"
	"net/url"

	"github.com/edgeproxy/edgeproxy/internal/corepipe"
)

// Response wraps the terminal *http.Response of a redirect chain together
// with the URI that chain ultimately settled on, standing in for rama's
// RequestUri response-extension entry.
type Response struct {
	*http.Response
	FinalURI string
}

// Inner is the service a FollowRedirect wraps: one round trip that may
// return a redirect status for FollowRedirect to chase.
type Inner = corepipe.Service[*http.Request, *http.Response]

// FollowRedirect retries an inner HTTP service across a chain of redirect
// responses, rebuilding the request at each hop per the method/body rules
// their status code mandates.
type FollowRedirect struct {
	inner  Inner
	policy Policy
	cloner BodyCloner
}

// New wraps inner with the Standard policy and NopBodyCloner.
func New(inner Inner) *FollowRedirect {
	return &FollowRedirect{inner: inner, policy: Standard(), cloner: NopBodyCloner{}}
}

// NewWithPolicy wraps inner with a caller-supplied policy and body cloner.
func NewWithPolicy(inner Inner, policy Policy, cloner BodyCloner) *FollowRedirect {
	if cloner == nil {
		cloner = NopBodyCloner{}
	}
	return &FollowRedirect{inner: inner, policy: policy, cloner: cloner}
}

// Serve executes the redirect chain to completion, terminating as soon as
// a response is not a recognized redirect status, Location is absent or
// unparsable, the policy says Stop, or the body cannot be carried forward.
func (f *FollowRedirect) Serve(ctx context.Context, req *http.Request) (*Response, error) {
	current := req
	attempt := 0
	for {
		resp, err := f.inner.Serve(ctx, current)
		if err != nil {
			return nil, err
		}

		if !isRedirectStatus(resp.StatusCode) {
			return &Response{Response: resp, FinalURI: current.URL.String()}, nil
		}

		location := resp.Header.Get("Location")
		if location == "" {
			return &Response{Response: resp, FinalURI: current.URL.String()}, nil
		}
		nextURL, err := current.URL.Parse(location)
		if err != nil {
			return &Response{Response: resp, FinalURI: current.URL.String()}, nil
		}

		attempt++
		verdict, err := f.policy.Redirect(Attempt{Previous: current, Location: nextURL, Response: resp, Count: attempt})
		if err != nil {
			return nil, err
		}
		if verdict == ActionStop {
			return &Response{Response: resp, FinalURI: current.URL.String()}, nil
		}

		nextReq, ok := f.rebuildRequest(ctx, current, nextURL, resp.StatusCode)
		if !ok {
			return &Response{Response: resp, FinalURI: current.URL.String()}, nil
		}
		current = nextReq
	}
}

func isRedirectStatus(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

// rebuildRequest applies the per-status method/body rule and clones the
// body per f.cloner, returning ok=false if the body cannot be carried
// forward and the chain must terminate at the current hop instead.
func (f *FollowRedirect) rebuildRequest(ctx context.Context, prev *http.Request, location *url.URL, status int) (*http.Request, bool) {
	method := prev.Method
	clearBody := false

	switch status {
	case http.StatusMovedPermanently, http.StatusFound:
		if prev.Method == http.MethodPost {
			method = http.MethodGet
			clearBody = true
		}
	case http.StatusSeeOther:
		if prev.Method != http.MethodHead {
			method = http.MethodGet
			clearBody = true
		}
	case http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		// preserve method and body
	}

	next, err := http.NewRequestWithContext(ctx, method, location.String(), nil)
	if err != nil {
		return nil, false
	}
	next.Header = prev.Header.Clone()

	if clearBody {
		next.ContentLength = 0
		next.Body = http.NoBody
		next.Header.Del("Content-Length")
		next.Header.Del("Content-Type")
		return next, true
	}

	body, ok := cloneBody(prev, f.cloner)
	if !ok {
		return nil, false
	}
	next.Body = body
	next.ContentLength = prev.ContentLength
	return next, true
}
