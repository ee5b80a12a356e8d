package socks5udp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/netip"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	M "github.com/sagernet/sing/common/metadata"
)

// association tracks the most recent origin server address a client
// talked to, so a south-bound reply can be addressed back at the client
// without the client re-stating it.
type association struct {
	serverAddr M.Socksaddr
	lastSeenNs int64
}

// Table is the relay's client -> last-server association table, keyed by
// the client's own UDP source address. Mirrors internal/routing/lease.go's
// xsync.Map-based routing state tables.
type Table struct {
	entries *xsync.Map[netip.AddrPort, *association]
}

// NewTable constructs an empty association table.
func NewTable() *Table {
	return &Table{entries: xsync.NewMap[netip.AddrPort, *association]()}
}

// Remember records that client last talked to serverAddr.
func (t *Table) Remember(client netip.AddrPort, serverAddr M.Socksaddr) {
	t.entries.Store(client, &association{serverAddr: serverAddr, lastSeenNs: time.Now().UnixNano()})
}

// Lookup retrieves the last-known server address for client.
func (t *Table) Lookup(client netip.AddrPort) (M.Socksaddr, bool) {
	e, ok := t.entries.Load(client)
	if !ok {
		return M.Socksaddr{}, false
	}
	return e.serverAddr, true
}

// SweepIdle drops associations whose last traffic predates cutoff,
// returning the number removed. Intended to run on a cron.ParseStandard
// schedule the same way internal/geoip/geoip.go schedules its staleness
// sweep.
func (t *Table) SweepIdle(cutoff time.Time) int {
	cutoffNs := cutoff.UnixNano()
	removed := 0
	t.entries.Range(func(key netip.AddrPort, e *association) bool {
		if e.lastSeenNs < cutoffNs {
			t.entries.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Relay runs a single UDP ASSOCIATE session: north faces the client,
// south faces origin servers. Every non-dropped datagram is presented to
// inspector before being forwarded.
type Relay struct {
	North, South *net.UDPConn
	NorthBufSize int
	SouthBufSize int
	Inspector    Inspector
	Resolver     Resolver
	Table        *Table
	ClientAddr   netip.AddrPort
}

// Run pumps datagrams between North and South until ctx is canceled or a
// fatal socket error occurs. Parse failures, unresolved hosts, and
// inspector blocks are logged and do not end the session.
func (r *Relay) Run(ctx context.Context) error {
	errCh := make(chan error, 2)
	go func() { errCh <- r.pumpNorth(ctx) }()
	go func() { errCh <- r.pumpSouth(ctx) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (r *Relay) pumpNorth(ctx context.Context) error {
	buf := make([]byte, r.NorthBufSize)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n, _, err := r.North.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("socks5udp: north read: %w", err)
		}

		dgram, err := DecodeDatagram(buf[:n])
		if err != nil {
			log.Printf("socks5udp: drop malformed north packet: %v", err)
			continue
		}

		dest := dgram.Dest
		if dest.IsFqdn() {
			resolved, ok := r.resolveFqdn(ctx, dest)
			if !ok {
				log.Printf("socks5udp: drop north packet: could not resolve %q", dest.Fqdn)
				continue
			}
			dest = resolved
		}

		action, err := r.Inspector.InspectPacket(ctx, DirectionSouth, dest, dgram.Payload)
		if err != nil {
			return fmt.Errorf("socks5udp: inspector error (north->south): %w", err)
		}

		switch action.Kind {
		case ActionBlock:
			log.Printf("socks5udp: block north->south @ %v: inspector blocked", dest)
			continue
		case ActionModify:
			dgram.Payload = action.Payload
		}

		r.Table.Remember(r.ClientAddr, dest)

		udpAddr := socksaddrToUDPAddr(dest)
		if udpAddr == nil {
			log.Printf("socks5udp: drop north packet: no resolved address for %v", dest)
			continue
		}
		if _, err := r.South.WriteToUDP(dgram.Payload, udpAddr); err != nil {
			return fmt.Errorf("socks5udp: south write: %w", err)
		}
	}
}

func (r *Relay) pumpSouth(ctx context.Context) error {
	buf := make([]byte, r.SouthBufSize)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n, from, err := r.South.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("socks5udp: south read: %w", err)
		}

		serverAddr := udpAddrToSocksaddr(from)

		action, err := r.Inspector.InspectPacket(ctx, DirectionNorth, serverAddr, buf[:n])
		if err != nil {
			return fmt.Errorf("socks5udp: inspector error (south->north): %w", err)
		}

		payload := buf[:n]
		switch action.Kind {
		case ActionBlock:
			log.Printf("socks5udp: block south->north @ %v: inspector blocked", serverAddr)
			continue
		case ActionModify:
			payload = action.Payload
		}

		encoded, err := EncodeDatagram(serverAddr, payload)
		if err != nil {
			log.Printf("socks5udp: drop south packet: %v", err)
			continue
		}

		clientUDPAddr := net.UDPAddrFromAddrPort(r.ClientAddr)
		if _, err := r.North.WriteToUDP(encoded, clientUDPAddr); err != nil {
			return fmt.Errorf("socks5udp: north write: %w", err)
		}
	}
}

func (r *Relay) resolveFqdn(ctx context.Context, dest M.Socksaddr) (M.Socksaddr, bool) {
	if r.Resolver == nil {
		return M.Socksaddr{}, false
	}
	ips, err := r.Resolver.LookupIP(ctx, dest.Fqdn)
	if err != nil || len(ips) == 0 {
		return M.Socksaddr{}, false
	}
	return M.Socksaddr{Addr: ips[0], Port: dest.Port}, true
}

func socksaddrToUDPAddr(addr M.Socksaddr) *net.UDPAddr {
	if !addr.Addr.IsValid() {
		return nil
	}
	return net.UDPAddrFromAddrPort(netip.AddrPortFrom(addr.Addr, addr.Port))
}

func udpAddrToSocksaddr(addr *net.UDPAddr) M.Socksaddr {
	ap := addr.AddrPort()
	return M.Socksaddr{Addr: ap.Addr(), Port: ap.Port()}
}
