// Package netaddr parses and compares Host, Authority, and Protocol values:
// the domain/IP/port identity of a proxied destination. Grounded on
// internal/netutil's host/port splitting conventions, generalized per §4.3.
package netaddr

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/edgeproxy/edgeproxy/internal/netutil"
)

// HostKind discriminates the Host sum type's active arm.
type HostKind int

const (
	HostDomain HostKind = iota
	HostIPv4
	HostIPv6
)

// Host is one of {domain name, IPv4 address, IPv6 address}.
type Host struct {
	kind   HostKind
	domain string
	ip     net.IP
}

// Domain builds a domain Host. The caller must have already validated it
// with ValidateDomain.
func Domain(d string) Host { return Host{kind: HostDomain, domain: d} }

// Address builds an IP Host from a net.IP, accepting raw 4- or 16-byte
// representations via ip.To4()/To16() normalization.
func Address(ip net.IP) Host {
	if v4 := ip.To4(); v4 != nil {
		return Host{kind: HostIPv4, ip: v4}
	}
	return Host{kind: HostIPv6, ip: ip.To16()}
}

func (h Host) Kind() HostKind { return h.kind }
func (h Host) Domain() string { return h.domain }
func (h Host) IP() net.IP     { return h.ip }

// RegistrableDomain returns the effective TLD+1 for a domain Host (e.g.
// "echo.ramaproxy.org" -> "ramaproxy.org"), for grouping subdomains under
// their registrable owner. IP hosts return their string form unchanged.
func (h Host) RegistrableDomain() string {
	if h.kind != HostDomain {
		return h.String()
	}
	return netutil.ExtractDomain(h.domain)
}

func (h Host) String() string {
	switch h.kind {
	case HostDomain:
		return h.domain
	case HostIPv6:
		return "[" + h.ip.String() + "]"
	default:
		return h.ip.String()
	}
}

// Equal compares two Hosts, accounting for v4-mapped v6 addresses
// (::ffff:a.b.c.d) equaling their plain IPv4 counterpart regardless of
// which side carries the mapped form.
func (h Host) Equal(other Host) bool {
	if h.kind == HostDomain || other.kind == HostDomain {
		return h.kind == HostDomain && other.kind == HostDomain &&
			strings.EqualFold(h.domain, other.domain)
	}
	a, b := h.ip, other.ip
	if a4 := a.To4(); a4 != nil {
		a = a4
	}
	if b4 := b.To4(); b4 != nil {
		b = b4
	}
	return a.Equal(b)
}

// ParseHost accepts, in order: bracketed IPv6 with optional port, bare
// IPv6, IPv4, domain. It returns the parsed Host and the port if one was
// present (0 otherwise).
func ParseHost(s string) (Host, uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Host{}, 0, fmt.Errorf("netaddr: empty host")
	}

	if strings.HasPrefix(s, "[") {
		hostPart, portPart, err := net.SplitHostPort(s)
		if err == nil {
			ip := net.ParseIP(hostPart)
			if ip == nil {
				return Host{}, 0, fmt.Errorf("netaddr: invalid bracketed IPv6 host %q", s)
			}
			port, perr := parsePort(portPart)
			if perr != nil {
				return Host{}, 0, perr
			}
			return Address(ip), port, nil
		}
		// No port: "[::1]"
		if strings.HasSuffix(s, "]") {
			inner := s[1 : len(s)-1]
			ip := net.ParseIP(inner)
			if ip == nil {
				return Host{}, 0, fmt.Errorf("netaddr: invalid bracketed IPv6 host %q", s)
			}
			return Address(ip), 0, nil
		}
		return Host{}, 0, fmt.Errorf("netaddr: unterminated bracketed host %q", s)
	}

	// Bare IPv6 (contains multiple colons, no brackets, so can't be host:port).
	if strings.Count(s, ":") > 1 {
		ip := net.ParseIP(s)
		if ip == nil {
			return Host{}, 0, fmt.Errorf("netaddr: invalid bare IPv6 host %q", s)
		}
		return Address(ip), 0, nil
	}

	// host:port or bare host.
	if hostPart, portPart, err := net.SplitHostPort(s); err == nil {
		port, perr := parsePort(portPart)
		if perr != nil {
			return Host{}, 0, perr
		}
		h, herr := parseHostNoPort(hostPart)
		if herr != nil {
			return Host{}, 0, herr
		}
		return h, port, nil
	}

	h, err := parseHostNoPort(s)
	return h, 0, err
}

func parseHostNoPort(s string) (Host, error) {
	if ip := parseStrictIPv4(s); ip != nil {
		return Address(ip), nil
	}
	if ip := net.ParseIP(s); ip != nil {
		return Address(ip), nil
	}
	if err := ValidateDomain(s); err != nil {
		return Host{}, err
	}
	return Domain(s), nil
}

// parseStrictIPv4 rejects octets with leading zeros (e.g. "127.00.1"),
// which net.ParseIP would otherwise accept loosely or reject outright
// depending on shape; the boundary case from §8 requires "127.00.1" to
// fall through to domain parsing, not be treated as an (invalid) IPv4.
func parseStrictIPv4(s string) net.IP {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return nil
	}
	bs := make([]byte, 4)
	for i, p := range parts {
		if p == "" || len(p) > 3 {
			return nil
		}
		if len(p) > 1 && p[0] == '0' {
			return nil // leading zero disqualifies as IPv4 octet
		}
		for _, c := range p {
			if c < '0' || c > '9' {
				return nil
			}
		}
		n, err := strconv.Atoi(p)
		if err != nil || n > 255 {
			return nil
		}
		bs[i] = byte(n)
	}
	return net.IPv4(bs[0], bs[1], bs[2], bs[3])
}

func parsePort(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("netaddr: invalid port %q", s)
	}
	return uint16(n), nil
}

// ValidateDomain enforces strict domain syntax: labels 1-63 chars, allowed
// chars (alnum and hyphen, not leading/trailing hyphen), total length <=253.
// A single trailing dot (FQDN form, e.g. "example.com.") is permitted.
func ValidateDomain(s string) error {
	if s == "" {
		return fmt.Errorf("netaddr: empty domain")
	}
	trimmed := strings.TrimSuffix(s, ".")
	if len(trimmed) == 0 || len(trimmed) > 253 {
		return fmt.Errorf("netaddr: domain length out of range: %q", s)
	}
	labels := strings.Split(trimmed, ".")
	for _, label := range labels {
		if len(label) == 0 || len(label) > 63 {
			return fmt.Errorf("netaddr: invalid domain label length: %q", label)
		}
		for i, c := range label {
			isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
			isHyphen := c == '-'
			if !isAlnum && !isHyphen {
				return fmt.Errorf("netaddr: invalid char %q in domain label %q", c, label)
			}
			if isHyphen && (i == 0 || i == len(label)-1) {
				return fmt.Errorf("netaddr: domain label %q cannot start/end with hyphen", label)
			}
		}
	}
	return nil
}
