package forwarded

import (
	"testing"

	"github.com/edgeproxy/edgeproxy/internal/config"
)

func TestDerive_ForwardedFirstRequiresTrust(t *testing.T) {
	src := Sources{
		ForwardedHeader: `for=192.0.2.43;proto=https`,
		XForwardedFor:   "203.0.113.5",
		RemoteAddr:      "10.0.0.1",
	}
	elem, ok, err := Derive(config.PolicyForwardedFirst, src, nil)
	if err != nil {
		t.Fatalf("Derive error: %v", err)
	}
	if !ok {
		t.Fatal("expected a fallback element from untrusted X-Forwarded-For")
	}
	if elem.For == nil || elem.For.String() != "203.0.113.5" {
		t.Errorf("expected fallback to XFF client, got %+v", elem)
	}
}

func TestDerive_TrustedForwardedWins(t *testing.T) {
	src := Sources{
		ForwardedHeader: `for=192.0.2.43;proto=https`,
		XForwardedFor:   "203.0.113.5",
		RemoteAddr:      "10.0.0.1",
	}
	elem, ok, err := Derive(config.PolicyForwardedFirst, src, []string{"10.0.0.0/8"})
	if err != nil {
		t.Fatalf("Derive error: %v", err)
	}
	if !ok || elem.For == nil || elem.For.String() != "192.0.2.43" || elem.Proto != "https" {
		t.Errorf("expected trusted Forwarded element, got %+v ok=%v", elem, ok)
	}
}

func TestIsTrustedSource_CIDRAndExact(t *testing.T) {
	if !IsTrustedSource("10.1.2.3", []string{"10.0.0.0/8"}) {
		t.Error("expected CIDR match")
	}
	if !IsTrustedSource("192.168.1.1", []string{"192.168.1.1"}) {
		t.Error("expected exact match")
	}
	if IsTrustedSource("8.8.8.8", []string{"10.0.0.0/8"}) {
		t.Error("expected no match")
	}
}
