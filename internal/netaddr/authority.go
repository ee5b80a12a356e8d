package netaddr

import "fmt"

// Authority is a (host, port) pair; the port may be implicit, in which case
// HasPort is false and callers should fall back to protocol.DefaultPort().
type Authority struct {
	Host    Host
	Port    uint16
	HasPort bool
}

// ParseAuthority parses a "host", "host:port", or "[ipv6]:port" string into
// an Authority.
func ParseAuthority(s string) (Authority, error) {
	h, port, err := ParseHost(s)
	if err != nil {
		return Authority{}, err
	}
	return Authority{Host: h, Port: port, HasPort: port != 0}, nil
}

// WithDefaultPort returns an Authority with Port filled from def when the
// original carried none.
func (a Authority) WithDefaultPort(def uint16) Authority {
	if a.HasPort {
		return a
	}
	a.Port = def
	a.HasPort = true
	return a
}

func (a Authority) String() string {
	if !a.HasPort {
		return a.Host.String()
	}
	return fmt.Sprintf("%s:%d", a.Host.String(), a.Port)
}

// Equal compares two Authorities for host and (when both carry an explicit
// port) port equality.
func (a Authority) Equal(other Authority) bool {
	if !a.Host.Equal(other.Host) {
		return false
	}
	if a.HasPort && other.HasPort {
		return a.Port == other.Port
	}
	return true
}
