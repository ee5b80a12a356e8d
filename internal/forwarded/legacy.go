package forwarded

import "strings"

// XForwardedFor parses a comma-separated X-Forwarded-For header value into
// NodeIds, oldest (original client) first.
func XForwardedFor(header string) (Chain, error) {
	var chain Chain
	for _, raw := range strings.Split(header, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		n, err := ParseNodeId(raw)
		if err != nil {
			return nil, err
		}
		chain = append(chain, NewElement().WithFor(n))
	}
	return chain, nil
}

// HAProxyHeaders carries the subset of headers emitted by HAProxy's
// forwardfor/proto configuration directives, used as a fallback source when
// a Forwarded header is absent.
type HAProxyHeaders struct {
	XForwardedFor   string
	XForwardedProto string
	XForwardedHost  string
	XForwardedPort  string
}

// ToElement collapses HAProxy's header set into a single ForwardedElement
// representing the nearest hop, merging proto/host/port onto the first
// X-Forwarded-For entry when present.
func (h HAProxyHeaders) ToElement() (ForwardedElement, bool, error) {
	elem := NewElement()
	var present bool
	if h.XForwardedFor != "" {
		first := strings.TrimSpace(strings.Split(h.XForwardedFor, ",")[0])
		n, err := ParseNodeId(first)
		if err != nil {
			return ForwardedElement{}, false, err
		}
		elem = elem.WithFor(n)
		present = true
	}
	if h.XForwardedProto != "" {
		elem = elem.WithProto(strings.ToLower(h.XForwardedProto))
		present = true
	}
	host := h.XForwardedHost
	if host != "" && h.XForwardedPort != "" && !strings.Contains(host, ":") {
		host = host + ":" + h.XForwardedPort
	}
	if host != "" {
		elem = elem.WithHost(host)
		present = true
	}
	return elem, present, nil
}
