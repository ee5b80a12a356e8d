// Package redirect implements the HTTP redirect-following state machine:
// classify the response, resolve Location against the previous request,
// consult a Policy for whether to continue, and rebuild the next request
// per the method/body rules RFC 7231 assigns to each redirect status.
// Grounded on original_source/rama-http/src/layer/follow_redirect/mod.rs.
package redirect

import (
	"net/http"
	"net/url"
)

// Action is a Policy's verdict on whether to continue following a
// redirect.
type Action int

const (
	ActionFollow Action = iota
	ActionStop
)

// Attempt describes one redirect hop under consideration, handed to a
// Policy so it can decide whether to continue.
type Attempt struct {
	Previous *http.Request
	Location *url.URL
	Response *http.Response
	Count    int // 1 on the first redirect attempt, incrementing thereafter
}

// Policy decides whether FollowRedirect should continue to a proposed
// Location.
type Policy interface {
	Redirect(attempt Attempt) (Action, error)
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc func(Attempt) (Action, error)

func (f PolicyFunc) Redirect(a Attempt) (Action, error) { return f(a) }

// Limited stops following redirects once more than max attempts have been
// made, returning the last response as-is rather than erroring.
type Limited struct {
	max int
}

func NewLimited(max int) *Limited { return &Limited{max: max} }

func (l *Limited) Redirect(a Attempt) (Action, error) {
	if a.Count > l.max {
		return ActionStop, nil
	}
	return ActionFollow, nil
}

// SameOrigin stops following a redirect that changes scheme, host, or port
// relative to the previous request, returning the redirect response as-is.
type SameOrigin struct{}

func (SameOrigin) Redirect(a Attempt) (Action, error) {
	prev := a.Previous.URL
	if prev.Scheme != a.Location.Scheme || prev.Host != a.Location.Host {
		return ActionStop, nil
	}
	return ActionFollow, nil
}

// And combines policies so the result is Follow only if every policy
// agrees; the first to say Stop or error short-circuits the rest.
func And(policies ...Policy) Policy {
	return PolicyFunc(func(a Attempt) (Action, error) {
		for _, p := range policies {
			action, err := p.Redirect(a)
			if err != nil {
				return ActionStop, err
			}
			if action == ActionStop {
				return ActionStop, nil
			}
		}
		return ActionFollow, nil
	})
}

// DefaultMaxRedirects is a conservative default redirect budget absent
// explicit configuration.
const DefaultMaxRedirects = 10

// Standard returns the default policy: follow up to DefaultMaxRedirects
// redirects, regardless of origin.
func Standard() Policy { return NewLimited(DefaultMaxRedirects) }
