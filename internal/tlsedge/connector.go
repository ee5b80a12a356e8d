// Package tlsedge provides the outbound TLS connector glue and the
// egress transport pool backing it: auto/secure/tunnel dial modes with a
// bounded handshake timeout, and a cache of reusable *http.Transport
// values keyed by route. Grounded on internal/proxy/transport.go +
// internal/proxy/tls_latency_conn.go and
// original_source/rama-tls-rustls/src/client/connector.rs.
package tlsedge

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	M "github.com/sagernet/sing/common/metadata"
)

// Dialer is the egress dial seam this connector wraps, shaped after
// sing-box's adapter.Outbound.DialContext so a real outbound adapter
// plugs in directly.
type Dialer interface {
	DialContext(ctx context.Context, network string, addr M.Socksaddr) (net.Conn, error)
}

// DialerFunc adapts a plain function to a Dialer.
type DialerFunc func(ctx context.Context, network string, addr M.Socksaddr) (net.Conn, error)

func (f DialerFunc) DialContext(ctx context.Context, network string, addr M.Socksaddr) (net.Conn, error) {
	return f(ctx, network, addr)
}

// Mode selects when a Connector actually performs a TLS handshake.
type Mode int

const (
	// ModeAuto secures the connection only if the request demands it,
	// otherwise forwards the plain inner connection.
	ModeAuto Mode = iota
	// ModeSecure always secures the connection regardless of the
	// request.
	ModeSecure
	// ModeTunnel secures the connection only if a tunnel host was
	// requested (per call, or a fixed one configured on the
	// Connector).
	ModeTunnel
)

const defaultHandshakeTimeout = 10 * time.Second

// Request is the per-dial input a Connector needs to decide whether and
// how to secure the connection.
type Request struct {
	Addr M.Socksaddr
	// Secure, consulted only in ModeAuto, says whether this particular
	// request wants a TLS connection.
	Secure bool
	// TunnelHost, consulted only in ModeTunnel, overrides the
	// Connector's fixed tunnel host for this call if non-empty.
	TunnelHost string
}

// Connector dials through an inner Dialer and, depending on its Mode,
// layers a TLS handshake on top of the resulting connection.
type Connector struct {
	inner            Dialer
	mode             Mode
	tlsConfig        *tls.Config
	tunnelHost       string
	handshakeTimeout time.Duration

	// OnHandshakeLatency, if set, is called with the wall-clock time the
	// TLS handshake took, the same metric hook internal/proxy/tls_latency_conn.go
	// exposes for its connections.
	OnHandshakeLatency func(time.Duration)
}

// Option configures a Connector at construction time.
type Option func(*Connector)

// WithHandshakeTimeout overrides the default 10s handshake deadline.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *Connector) { c.handshakeTimeout = d }
}

// NewAuto builds a Connector that secures a connection only when the
// per-request Secure flag is set, otherwise forwards the plain inner
// connection unchanged.
func NewAuto(inner Dialer, tlsConfig *tls.Config, opts ...Option) *Connector {
	return newConnector(inner, ModeAuto, tlsConfig, "", opts)
}

// NewSecure builds a Connector that always performs a TLS handshake.
func NewSecure(inner Dialer, tlsConfig *tls.Config, opts ...Option) *Connector {
	return newConnector(inner, ModeSecure, tlsConfig, "", opts)
}

// NewTunnel builds a Connector that secures the connection only when a
// tunnel host is present, either per request or as the fixed
// defaultTunnelHost configured here.
func NewTunnel(inner Dialer, tlsConfig *tls.Config, defaultTunnelHost string, opts ...Option) *Connector {
	return newConnector(inner, ModeTunnel, tlsConfig, defaultTunnelHost, opts)
}

func newConnector(inner Dialer, mode Mode, tlsConfig *tls.Config, tunnelHost string, opts []Option) *Connector {
	c := &Connector{
		inner:            inner,
		mode:             mode,
		tlsConfig:        tlsConfig,
		tunnelHost:       tunnelHost,
		handshakeTimeout: defaultHandshakeTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DialTLS dials req.Addr over network and, per the Connector's Mode,
// either returns the plain connection or layers a bounded-deadline TLS
// handshake on top of it.
func (c *Connector) DialTLS(ctx context.Context, network string, req Request) (net.Conn, error) {
	conn, err := c.inner.DialContext(ctx, network, req.Addr)
	if err != nil {
		return nil, fmt.Errorf("tlsedge: dial %s: %w", req.Addr, err)
	}

	serverName, secure := c.decide(req)
	if !secure {
		return conn, nil
	}

	return c.handshake(ctx, conn, serverName)
}

func (c *Connector) decide(req Request) (serverName string, secure bool) {
	switch c.mode {
	case ModeSecure:
		return hostOf(req.Addr), true
	case ModeTunnel:
		host := req.TunnelHost
		if host == "" {
			host = c.tunnelHost
		}
		if host == "" {
			return "", false
		}
		return host, true
	default: // ModeAuto
		if !req.Secure {
			return "", false
		}
		return hostOf(req.Addr), true
	}
}

func hostOf(addr M.Socksaddr) string {
	if addr.IsFqdn() {
		return addr.Fqdn
	}
	return addr.Addr.String()
}

func (c *Connector) handshake(ctx context.Context, conn net.Conn, serverName string) (net.Conn, error) {
	cfg := c.tlsConfig
	if cfg == nil {
		cfg = &tls.Config{}
	}
	if cfg.ServerName == "" && serverName != "" {
		clone := cfg.Clone()
		clone.ServerName = serverName
		cfg = clone
	}

	handshakeCtx, cancel := context.WithTimeout(ctx, c.handshakeTimeout)
	defer cancel()

	tlsConn := tls.Client(conn, cfg)
	start := time.Now()
	if err := tlsConn.HandshakeContext(handshakeCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("tlsedge: tls handshake with %q: %w", serverName, err)
	}
	if c.OnHandshakeLatency != nil {
		c.OnHandshakeLatency(time.Since(start))
	}

	return tlsConn, nil
}
