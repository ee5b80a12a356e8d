package forwarded

import "strings"

// Chain is an ordered Forwarded header value: each element is one hop,
// earliest-inserted (closest to the original client) first, matching the
// wire order of RFC 7239 §4.
type Chain []ForwardedElement

// Parse parses a full Forwarded header value into a Chain.
func Parse(header string) (Chain, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, nil
	}
	var chain Chain
	for _, raw := range splitOutsideQuotes(header, ',') {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		elem, err := ParseElement(raw)
		if err != nil {
			return nil, err
		}
		chain = append(chain, elem)
	}
	return chain, nil
}

// String renders the chain back to a single Forwarded header value.
func (c Chain) String() string {
	parts := make([]string, len(c))
	for i, e := range c {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// Append returns a new chain with elem added as the newest (rightmost) hop.
func (c Chain) Append(elem ForwardedElement) Chain {
	out := make(Chain, len(c)+1)
	copy(out, c)
	out[len(c)] = elem
	return out
}

// Client returns the first element of the chain, i.e. the hop nearest the
// original client, or false if the chain is empty.
func (c Chain) Client() (ForwardedElement, bool) {
	if len(c) == 0 {
		return ForwardedElement{}, false
	}
	return c[0], true
}

// Nearest returns the last element of the chain, i.e. the most recently
// added hop (closest to the current node), or false if empty.
func (c Chain) Nearest() (ForwardedElement, bool) {
	if len(c) == 0 {
		return ForwardedElement{}, false
	}
	return c[len(c)-1], true
}
