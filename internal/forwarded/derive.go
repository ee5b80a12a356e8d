package forwarded

import (
	"net"
	"strings"

	"github.com/edgeproxy/edgeproxy/internal/config"
)

// Sources bundles every signal a RequestContext can be derived from for one
// inbound connection. Any field may be empty if that header was absent.
type Sources struct {
	ForwardedHeader string
	XForwardedFor   string
	XForwardedProto string
	XForwardedHost  string
	XForwardedPort  string
	RemoteAddr      string // dotted-quad or bracketed-v6, no port
}

// IsTrustedSource reports whether remoteAddr matches one of the trusted
// entries, each either a bare IP or a CIDR block.
func IsTrustedSource(remoteAddr string, trusted []string) bool {
	if len(trusted) == 0 {
		return false
	}
	ip := net.ParseIP(strings.TrimSuffix(strings.TrimPrefix(remoteAddr, "["), "]"))
	if ip == nil {
		return false
	}
	for _, entry := range trusted {
		if _, cidr, err := net.ParseCIDR(entry); err == nil {
			if cidr.Contains(ip) {
				return true
			}
			continue
		}
		if candidate := net.ParseIP(entry); candidate != nil && candidate.Equal(ip) {
			return true
		}
	}
	return false
}

// Derive picks one ForwardedElement according to policy, falling back
// through the remaining sources in priority order when the preferred one
// is absent or the peer is untrusted. From a Forwarded header it takes the
// nearest (last) hop; from X-Forwarded-For it takes the first (client)
// entry. The Forwarded header
// and HAProxy legacy headers are only honored when RemoteAddr is in
// trustedFrom; X-Forwarded-For alone needs no trust (it is commonly set by
// the application's own edge load balancer and is expected to be
// re-validated by RemoteAddr checks upstream of this package).
func Derive(policy config.ForwardedDerivationPolicy, src Sources, trustedFrom []string) (ForwardedElement, bool, error) {
	trusted := IsTrustedSource(src.RemoteAddr, trustedFrom)

	tryForwarded := func() (ForwardedElement, bool, error) {
		if !trusted || src.ForwardedHeader == "" {
			return ForwardedElement{}, false, nil
		}
		chain, err := Parse(src.ForwardedHeader)
		if err != nil {
			return ForwardedElement{}, false, err
		}
		elem, ok := chain.Nearest()
		return elem, ok, nil
	}
	tryHAProxy := func() (ForwardedElement, bool, error) {
		if !trusted {
			return ForwardedElement{}, false, nil
		}
		h := HAProxyHeaders{
			XForwardedFor:   src.XForwardedFor,
			XForwardedProto: src.XForwardedProto,
			XForwardedHost:  src.XForwardedHost,
			XForwardedPort:  src.XForwardedPort,
		}
		return h.ToElement()
	}
	tryXFF := func() (ForwardedElement, bool, error) {
		if src.XForwardedFor == "" {
			return ForwardedElement{}, false, nil
		}
		chain, err := XForwardedFor(src.XForwardedFor)
		if err != nil {
			return ForwardedElement{}, false, err
		}
		elem, ok := chain.Client()
		return elem, ok, nil
	}

	var order []func() (ForwardedElement, bool, error)
	switch policy {
	case config.PolicyXForwardedFirst:
		order = []func() (ForwardedElement, bool, error){tryXFF, tryForwarded, tryHAProxy}
	case config.PolicyHAProxyFirst:
		order = []func() (ForwardedElement, bool, error){tryHAProxy, tryForwarded, tryXFF}
	default:
		order = []func() (ForwardedElement, bool, error){tryForwarded, tryHAProxy, tryXFF}
	}

	for _, attempt := range order {
		elem, ok, err := attempt()
		if err != nil {
			return ForwardedElement{}, false, err
		}
		if ok {
			return elem, true, nil
		}
	}
	return ForwardedElement{}, false, nil
}
