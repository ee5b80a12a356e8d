package tlsedge

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/maypok86/otter"
	M "github.com/sagernet/sing/common/metadata"
)

// PoolConfig tunes the *http.Transport instances a TransportPool hands
// out, mirroring internal/proxy/transport.go's OutboundTransportConfig.
type PoolConfig struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	// Capacity bounds the number of distinct routes the pool caches
	// transports for before otter starts evicting least-valuable
	// entries.
	Capacity int
}

const (
	defaultPoolMaxIdleConns        = 1024
	defaultPoolMaxIdleConnsPerHost = 64
	defaultPoolIdleConnTimeout     = 90 * time.Second
	defaultPoolCapacity            = 4096
)

func normalizePoolConfig(cfg PoolConfig) PoolConfig {
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = defaultPoolMaxIdleConns
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = defaultPoolMaxIdleConnsPerHost
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = defaultPoolIdleConnTimeout
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = defaultPoolCapacity
	}
	return cfg
}

// TransportPool manages reusable outbound *http.Transport values keyed
// by route, so forward and reverse proxy paths that dial the same
// upstream share keep-alive connections instead of each opening their
// own pool. Grounded on internal/proxy/transport.go's
// OutboundTransportPool, swapping its xsync.Map for an otter cache so
// idle routes can be evicted under memory pressure rather than only on
// explicit removal.
type TransportPool struct {
	config     PoolConfig
	transports otter.Cache[string, *http.Transport]
}

// NewTransportPool builds a pool backed by an otter cache bounded at
// cfg.Capacity distinct routes.
func NewTransportPool(cfg PoolConfig) (*TransportPool, error) {
	cfg = normalizePoolConfig(cfg)
	cache, err := otter.MustBuilder[string, *http.Transport](cfg.Capacity).Build()
	if err != nil {
		return nil, err
	}
	return &TransportPool{config: cfg, transports: cache}, nil
}

// Get returns the transport for routeKey, building one via connector if
// absent.
func (p *TransportPool) Get(routeKey string, connector *Connector) *http.Transport {
	if transport, ok := p.transports.Get(routeKey); ok {
		return transport
	}
	transport := p.newTransport(connector)
	p.transports.Set(routeKey, transport)
	return transport
}

// Evict closes idle connections for routeKey's transport and removes it
// from the pool.
func (p *TransportPool) Evict(routeKey string) {
	transport, ok := p.transports.Get(routeKey)
	if !ok {
		return
	}
	transport.CloseIdleConnections()
	p.transports.Delete(routeKey)
}

// CloseAll closes idle connections on every pooled transport and clears
// the pool.
func (p *TransportPool) CloseAll() {
	p.transports.Range(func(_ string, transport *http.Transport) bool {
		transport.CloseIdleConnections()
		return true
	})
	p.transports.Close()
}

func (p *TransportPool) newTransport(connector *Connector) *http.Transport {
	return &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return connector.DialTLS(ctx, network, Request{Addr: M.ParseSocksaddr(addr), Secure: true})
		},
		DisableKeepAlives:   false,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        p.config.MaxIdleConns,
		MaxIdleConnsPerHost: p.config.MaxIdleConnsPerHost,
		IdleConnTimeout:     p.config.IdleConnTimeout,
	}
}
