// Package socks5udp implements the per-datagram header codec, pluggable
// packet inspector, and client/server association table for a SOCKS5 UDP
// ASSOCIATE relay. Grounded on
// original_source/rama-socks5/src/server/udp/inspect.rs.
package socks5udp

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	M "github.com/sagernet/sing/common/metadata"
)

// Address type octets per RFC 1928 §5.
const (
	atypIPv4   = 0x01
	atypDomain = 0x03
	atypIPv6   = 0x04
)

// Datagram is a decoded SOCKS5 UDP relay packet (RFC 1928 §7): a
// fragment number, destination address, and payload.
type Datagram struct {
	Frag    byte
	Dest    M.Socksaddr
	Payload []byte
}

// DecodeDatagram parses a raw UDP packet as received on the north
// (client-facing) socket. Fragmentation (FRAG != 0) is rejected since
// this relay does not reassemble fragments.
func DecodeDatagram(raw []byte) (Datagram, error) {
	if len(raw) < 4 {
		return Datagram{}, fmt.Errorf("socks5udp: packet too short (%d bytes)", len(raw))
	}
	if raw[0] != 0 || raw[1] != 0 {
		return Datagram{}, fmt.Errorf("socks5udp: non-zero reserved bytes")
	}
	frag := raw[2]
	atyp := raw[3]
	pos := 4

	var addr M.Socksaddr
	switch atyp {
	case atypIPv4:
		if len(raw) < pos+4+2 {
			return Datagram{}, fmt.Errorf("socks5udp: truncated IPv4 address")
		}
		ip := netip.AddrFrom4([4]byte(raw[pos : pos+4]))
		pos += 4
		port := binary.BigEndian.Uint16(raw[pos : pos+2])
		pos += 2
		addr = M.Socksaddr{Addr: ip, Port: port}
	case atypIPv6:
		if len(raw) < pos+16+2 {
			return Datagram{}, fmt.Errorf("socks5udp: truncated IPv6 address")
		}
		ip := netip.AddrFrom16([16]byte(raw[pos : pos+16]))
		pos += 16
		port := binary.BigEndian.Uint16(raw[pos : pos+2])
		pos += 2
		addr = M.Socksaddr{Addr: ip, Port: port}
	case atypDomain:
		if len(raw) < pos+1 {
			return Datagram{}, fmt.Errorf("socks5udp: truncated domain length")
		}
		n := int(raw[pos])
		pos++
		if len(raw) < pos+n+2 {
			return Datagram{}, fmt.Errorf("socks5udp: truncated domain name")
		}
		fqdn := string(raw[pos : pos+n])
		pos += n
		port := binary.BigEndian.Uint16(raw[pos : pos+2])
		pos += 2
		addr = M.Socksaddr{Fqdn: fqdn, Port: port}
	default:
		return Datagram{}, fmt.Errorf("socks5udp: unsupported address type %#x", atyp)
	}

	if frag != 0 {
		return Datagram{}, fmt.Errorf("socks5udp: fragmented datagrams are not supported (frag=%d)", frag)
	}

	return Datagram{Frag: frag, Dest: addr, Payload: raw[pos:]}, nil
}

// EncodeDatagram renders a datagram for the south->north direction,
// wrapping payload in a SOCKS5 UDP header addressed at dest.
func EncodeDatagram(dest M.Socksaddr, payload []byte) ([]byte, error) {
	out := make([]byte, 0, 4+18+len(payload))
	out = append(out, 0, 0, 0)

	switch {
	case dest.IsFqdn():
		if len(dest.Fqdn) > 255 {
			return nil, fmt.Errorf("socks5udp: domain name too long (%d bytes)", len(dest.Fqdn))
		}
		out = append(out, atypDomain, byte(len(dest.Fqdn)))
		out = append(out, dest.Fqdn...)
		out = binary.BigEndian.AppendUint16(out, dest.Port)
	case dest.Addr.Is4():
		out = append(out, atypIPv4)
		b := dest.Addr.As4()
		out = append(out, b[:]...)
		out = binary.BigEndian.AppendUint16(out, dest.Port)
	case dest.Addr.Is6():
		out = append(out, atypIPv6)
		b := dest.Addr.As16()
		out = append(out, b[:]...)
		out = binary.BigEndian.AppendUint16(out, dest.Port)
	default:
		return nil, fmt.Errorf("socks5udp: destination address %v has no usable form", dest)
	}

	return out, nil
}
