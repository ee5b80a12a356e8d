package mitm

import "strings"

// Decision is the routing outcome an SNIRouter reaches for one ClientHello.
type Decision int

const (
	// DecisionMITM means this connection should be terminated locally and
	// handed off to the HTTPS service for host-based routing.
	DecisionMITM Decision = iota
	// DecisionTunnel means this connection should be forwarded untouched
	// to TunnelHost:TunnelPort, with no certificate issued for it.
	DecisionTunnel
)

// Route is the result of routing a single ClientHello.
type Route struct {
	Decision   Decision
	SNI        string
	TunnelHost string
	TunnelPort int
}

// SNIRouter decides, from a peeked ClientHello's server name, whether to
// intercept a connection or tunnel it untouched. Grounded on
// SniRouterService in tls_sni_proxy_mitm.rs: absent SNI defaults to MITM,
// an exact host match or a subdomain of a tracked parent domain is MITM'd,
// everything else tunnels as plain TCP.
type SNIRouter struct {
	ExactHosts    map[string]struct{}
	ParentDomains []string
	TunnelPort    int
}

// NewSNIRouter builds a router that MITMs exactHosts (case-insensitive
// exact match) and any subdomain of parentDomains, tunneling everything
// else to tunnelPort.
func NewSNIRouter(tunnelPort int, exactHosts, parentDomains []string) *SNIRouter {
	r := &SNIRouter{
		ExactHosts: make(map[string]struct{}, len(exactHosts)),
		TunnelPort: tunnelPort,
	}
	for _, h := range exactHosts {
		r.ExactHosts[strings.ToLower(h)] = struct{}{}
	}
	for _, p := range parentDomains {
		r.ParentDomains = append(r.ParentDomains, strings.ToLower(p))
	}
	return r
}

// Route decides what to do with sni, the server name peeked from a
// ClientHello (possibly empty).
func (r *SNIRouter) Route(sni string) Route {
	if sni == "" {
		// No SNI at all: tls_sni_proxy_mitm.rs still forwards to the
		// HTTPS service rather than tunneling blind.
		return Route{Decision: DecisionMITM}
	}
	if r.matchesMITM(sni) {
		return Route{Decision: DecisionMITM, SNI: sni}
	}
	return Route{Decision: DecisionTunnel, SNI: sni, TunnelHost: sni, TunnelPort: r.TunnelPort}
}

func (r *SNIRouter) matchesMITM(sni string) bool {
	sni = strings.ToLower(sni)
	if _, ok := r.ExactHosts[sni]; ok {
		return true
	}
	return isSubdomainOfAny(sni, r.ParentDomains)
}

func isSubdomainOfAny(host string, parents []string) bool {
	for _, p := range parents {
		if host == p || strings.HasSuffix(host, "."+p) {
			return true
		}
	}
	return false
}
