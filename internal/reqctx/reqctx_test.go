package reqctx

import (
	"testing"

	"github.com/edgeproxy/edgeproxy/internal/forwarded"
)

func TestDerive_URISchemeWins(t *testing.T) {
	fwd := forwarded.NewElement().WithProto("http")
	ctx, err := Derive(Inputs{
		URIScheme:    "https",
		URIAuthority: "example.com",
		Forwarded:    &fwd,
		WireVersion:  "HTTP/1.1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Protocol.String() != "https" {
		t.Errorf("Protocol = %v, want https", ctx.Protocol)
	}
	if ctx.Authority.Port != 443 {
		t.Errorf("Port = %d, want default 443", ctx.Authority.Port)
	}
}

func TestDerive_ForwardedProtoFallback(t *testing.T) {
	fwd := forwarded.NewElement().WithProto("https").WithHost("backend.internal:8443")
	ctx, err := Derive(Inputs{
		Forwarded:   &fwd,
		WireVersion: "HTTP/2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Protocol.String() != "https" {
		t.Errorf("Protocol = %v, want https", ctx.Protocol)
	}
	if ctx.Authority.Host.String() != "backend.internal" || ctx.Authority.Port != 8443 {
		t.Errorf("Authority = %+v", ctx.Authority)
	}
	if ctx.Version != "HTTP/2" {
		t.Errorf("Version = %q, want HTTP/2 (no forwarded proto-version override)", ctx.Version)
	}
}

func TestDerive_SecureTransportHintDefault(t *testing.T) {
	ctx, err := Derive(Inputs{
		HostHeader:          "example.com",
		SecureTransportHint: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Protocol.String() != "https" {
		t.Errorf("Protocol = %v, want https from secure-transport hint", ctx.Protocol)
	}
}

func TestDerive_NoAuthorityErrors(t *testing.T) {
	if _, err := Derive(Inputs{}); err == nil {
		t.Error("expected NoAuthority error when every authority source is absent")
	}
}

func TestDerive_Idempotent(t *testing.T) {
	in := Inputs{
		URIScheme:    "http",
		URIAuthority: "example.com:8080",
		WireVersion:  "HTTP/1.1",
	}
	first, err := Derive(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Derive(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Protocol != second.Protocol || first.Version != second.Version || !first.Authority.Equal(second.Authority) {
		t.Errorf("Derive not idempotent: %+v != %+v", first, second)
	}
}
