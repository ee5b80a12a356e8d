package socks5udp

import (
	"context"
	"net/netip"

	M "github.com/sagernet/sing/common/metadata"
)

// RelayDirection identifies which leg of the relay a packet is crossing.
type RelayDirection int

const (
	// DirectionSouth is client -> origin (a datagram read off north,
	// about to be written to south).
	DirectionSouth RelayDirection = iota
	// DirectionNorth is origin -> client.
	DirectionNorth
)

func (d RelayDirection) String() string {
	if d == DirectionSouth {
		return "south"
	}
	return "north"
}

// RelayRequest is presented to an Inspector for every non-dropped
// datagram crossing the relay.
type RelayRequest struct {
	Direction     RelayDirection
	ServerAddress M.Socksaddr
	Payload       []byte
}

// ActionKind is the inspector's verdict on a relayed datagram.
type ActionKind int

const (
	ActionForward ActionKind = iota
	ActionBlock
	ActionModify
)

// Action is an inspector's decision: forward the payload unchanged, drop
// it, or forward substitute bytes instead.
type Action struct {
	Kind    ActionKind
	Payload []byte // only meaningful when Kind == ActionModify
}

func Forward() Action              { return Action{Kind: ActionForward} }
func Block() Action                { return Action{Kind: ActionBlock} }
func Modify(payload []byte) Action { return Action{Kind: ActionModify, Payload: payload} }

// Inspector inspects relayed UDP packets synchronously, in both
// directions, and returns a verdict.
type Inspector interface {
	InspectPacket(ctx context.Context, dir RelayDirection, serverAddr M.Socksaddr, payload []byte) (Action, error)
}

// InspectorFunc adapts a plain function to an Inspector.
type InspectorFunc func(ctx context.Context, dir RelayDirection, serverAddr M.Socksaddr, payload []byte) (Action, error)

func (f InspectorFunc) InspectPacket(ctx context.Context, dir RelayDirection, serverAddr M.Socksaddr, payload []byte) (Action, error) {
	return f(ctx, dir, serverAddr, payload)
}

// DirectInspector forwards every packet without inspection, the default
// an ASSOCIATE session uses when no inspector was configured.
type DirectInspector struct{}

func (DirectInspector) InspectPacket(context.Context, RelayDirection, M.Socksaddr, []byte) (Action, error) {
	return Forward(), nil
}

// AsyncInspector adapts an async relay-request/response service (one
// that may itself suspend, e.g. on an upstream policy call) into an
// Inspector. Mirrors rama's AsyncUdpInspector wrapper, which delegates
// to a generic Service rather than a plain synchronous closure.
type AsyncInspector struct {
	Serve func(ctx context.Context, req RelayRequest) (Action, error)
}

func (a AsyncInspector) InspectPacket(ctx context.Context, dir RelayDirection, serverAddr M.Socksaddr, payload []byte) (Action, error) {
	return a.Serve(ctx, RelayRequest{Direction: dir, ServerAddress: serverAddr, Payload: payload})
}

// Resolver resolves a domain-name destination to an IP address, used
// only when a datagram read off the north (client-facing) socket has a
// domain-name ATYP. Shaped after
// github.com/miekg/dns's resolution surface so a real resolver can be
// substituted; actual DNS resolution is out of scope here; callers
// without a resolver must reject domain-name datagrams.
type Resolver interface {
	LookupIP(ctx context.Context, name string) ([]netip.Addr, error)
}
