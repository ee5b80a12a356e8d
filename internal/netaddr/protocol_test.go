package netaddr

import "testing"

func TestParseProtocol_Boundaries(t *testing.T) {
	p, err := ParseProtocol("")
	if err != nil || p != HTTP {
		t.Fatalf("ParseProtocol(\"\") = %v, %v; want http, nil", p, err)
	}

	p, err = ParseProtocol("socks5h")
	if err != nil || p != Socks5H {
		t.Fatalf("ParseProtocol(socks5h) = %v, %v; want socks5h, nil", p, err)
	}

	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := ParseProtocol(string(long)); err == nil {
		t.Error("expected error for protocol > 64 bytes")
	}
}

func TestParseProtocol_CaseInsensitiveKnown(t *testing.T) {
	p, err := ParseProtocol("HTTPS")
	if err != nil || p != HTTPS {
		t.Fatalf("ParseProtocol(HTTPS) = %v, %v; want https, nil", p, err)
	}
}

func TestProtocol_Properties(t *testing.T) {
	if !HTTPS.IsSecure() || HTTP.IsSecure() {
		t.Error("IsSecure mismatch for http/https")
	}
	if HTTPS.DefaultPort() != 443 || HTTP.DefaultPort() != 80 {
		t.Error("DefaultPort mismatch")
	}
	if !Socks5.IsSocks5() || !WS.IsWS() || !HTTP.IsHTTP() {
		t.Error("category predicate mismatch")
	}
}

func TestExtractScheme(t *testing.T) {
	scheme, ok := ExtractScheme("https://example.com/path")
	if !ok || scheme != "https" {
		t.Fatalf("ExtractScheme = %q, %v; want https, true", scheme, ok)
	}
	if _, ok := ExtractScheme("not-a-uri"); ok {
		t.Error("expected no scheme found")
	}
}
