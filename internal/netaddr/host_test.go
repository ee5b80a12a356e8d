package netaddr

import "testing"

func TestParseHost_Boundaries(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind HostKind
	}{
		{"bracketed loopback v6", "[::1]", HostIPv6},
		{"leading zero octet is domain", "127.00.1", HostDomain},
		{"fqdn trailing dot", "example.com.", HostDomain},
		{"plain ipv4", "192.0.2.1", HostIPv4},
		{"bare ipv6", "2001:db8::1", HostIPv6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, err := ParseHost(tt.input)
			if err != nil {
				t.Fatalf("ParseHost(%q) error: %v", tt.input, err)
			}
			if h.Kind() != tt.wantKind {
				t.Errorf("ParseHost(%q).Kind() = %v, want %v", tt.input, h.Kind(), tt.wantKind)
			}
		})
	}
}

func TestParseHost_BracketedWithPort(t *testing.T) {
	h, port, err := ParseHost("[2001:db8::17]:4711")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Kind() != HostIPv6 || port != 4711 {
		t.Errorf("got kind=%v port=%d, want IPv6 4711", h.Kind(), port)
	}
}

func TestHost_Equal_V4MappedV6(t *testing.T) {
	a, _, err := ParseHost("192.0.2.1")
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := ParseHost("::ffff:192.0.2.1")
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Error("v4-mapped v6 should equal its plain v4 counterpart")
	}
	if !b.Equal(a) {
		t.Error("equality should be symmetric")
	}
}

func TestHost_RegistrableDomain(t *testing.T) {
	h, _, err := ParseHost("echo.ramaproxy.org")
	if err != nil {
		t.Fatal(err)
	}
	if got := h.RegistrableDomain(); got != "ramaproxy.org" {
		t.Errorf("RegistrableDomain() = %q, want ramaproxy.org", got)
	}

	ip, _, err := ParseHost("192.0.2.1")
	if err != nil {
		t.Fatal(err)
	}
	if got := ip.RegistrableDomain(); got != "192.0.2.1" {
		t.Errorf("RegistrableDomain() on an IP host = %q, want the IP unchanged", got)
	}
}

func TestValidateDomain(t *testing.T) {
	if err := ValidateDomain("example.com"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateDomain("-bad.com"); err == nil {
		t.Error("expected error for leading hyphen label")
	}
	long := ""
	for i := 0; i < 5; i++ {
		long += "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyzabcdefghij."
	}
	if err := ValidateDomain(long); err == nil {
		t.Error("expected error for domain exceeding 253 chars")
	}
}
