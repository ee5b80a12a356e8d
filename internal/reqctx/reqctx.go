// Package reqctx derives the authoritative (protocol, authority, version)
// triple for an in-flight request from whichever of its several,
// potentially conflicting, signals are present.
package reqctx

import (
	"github.com/edgeproxy/edgeproxy/internal/corepipe"
	"github.com/edgeproxy/edgeproxy/internal/forwarded"
	"github.com/edgeproxy/edgeproxy/internal/netaddr"
)

// RequestContext is the single source of truth for a request's effective
// protocol, destination authority, and HTTP version, independent of which
// upstream signal actually carried that information.
type RequestContext struct {
	Protocol  netaddr.Protocol
	Authority netaddr.Authority
	Version   string
}

// Inputs bundles every signal the derivation algorithm consults, in
// descending priority order per field.
type Inputs struct {
	// URIScheme is the scheme parsed directly off the request-target, if
	// the engine received an absolute-form URI.
	URIScheme string
	// URIAuthority is the authority parsed off the request-target, if any.
	URIAuthority string
	// Forwarded is the element picked by the forwarded package's Derive,
	// or nil if no forwarded signal was present.
	Forwarded *forwarded.ForwardedElement
	// HostHeader is the raw Host header value, used only once URI and
	// Forwarded authority are both absent.
	HostHeader string
	// SecureTransportHint is true when the engine terminated TLS for
	// this connection, used as the last-resort protocol signal.
	SecureTransportHint bool
	// WireVersion is the HTTP version the engine actually observed on
	// the wire (e.g. "HTTP/1.1", "HTTP/2"), used when no forwarded
	// client version overrides it.
	WireVersion string
}

// Derive computes the RequestContext per the priority order: URI scheme,
// then forwarded client proto, then the secure-transport hint, defaulting
// to HTTP; URI authority, then forwarded client host, then the Host header
// for authority; forwarded client version, else the wire version. The
// function is pure, so re-deriving from the same Inputs is idempotent by
// construction.
func Derive(in Inputs) (RequestContext, error) {
	protocol, err := deriveProtocol(in)
	if err != nil {
		return RequestContext{}, err
	}

	authorityRaw, err := deriveAuthorityRaw(in)
	if err != nil {
		return RequestContext{}, err
	}
	authority, err := netaddr.ParseAuthority(authorityRaw)
	if err != nil {
		return RequestContext{}, corepipe.Wrap(corepipe.KindInvalid, "reqctx: invalid authority", err)
	}
	authority = authority.WithDefaultPort(protocol.DefaultPort())

	version := in.WireVersion
	if in.Forwarded != nil && in.Forwarded.ProtoVersion != "" {
		version = in.Forwarded.ProtoVersion
	}

	return RequestContext{Protocol: protocol, Authority: authority, Version: version}, nil
}

func deriveProtocol(in Inputs) (netaddr.Protocol, error) {
	if in.URIScheme != "" {
		return netaddr.ParseProtocol(in.URIScheme)
	}
	if in.Forwarded != nil && in.Forwarded.Proto != "" {
		return netaddr.ParseProtocol(in.Forwarded.Proto)
	}
	if in.SecureTransportHint {
		return netaddr.HTTPS, nil
	}
	return netaddr.HTTP, nil
}

func deriveAuthorityRaw(in Inputs) (string, error) {
	if in.URIAuthority != "" {
		return in.URIAuthority, nil
	}
	if in.Forwarded != nil && in.Forwarded.Host != "" {
		return in.Forwarded.Host, nil
	}
	if in.HostHeader != "" {
		return in.HostHeader, nil
	}
	return "", corepipe.New(corepipe.KindInvalid, "reqctx: no authority in URI, Forwarded, or Host header")
}
