package forwarded

import "testing"

func TestParseElement_RoundTrip(t *testing.T) {
	raw := `for=192.0.2.43;proto=http;by=203.0.113.43`
	elem, err := ParseElement(raw)
	if err != nil {
		t.Fatalf("ParseElement error: %v", err)
	}
	if elem.For == nil || elem.For.String() != "192.0.2.43" {
		t.Errorf("for = %v, want 192.0.2.43", elem.For)
	}
	if elem.Proto != "http" {
		t.Errorf("proto = %q, want http", elem.Proto)
	}
	if elem.By == nil || elem.By.String() != "203.0.113.43" {
		t.Errorf("by = %v, want 203.0.113.43", elem.By)
	}

	reparsed, err := ParseElement(elem.String())
	if err != nil {
		t.Fatalf("reparse error: %v", err)
	}
	if reparsed.String() != elem.String() {
		t.Errorf("not idempotent: %q != %q", reparsed.String(), elem.String())
	}
}

func TestParseElement_QuotedIPv6NeedsQuoting(t *testing.T) {
	raw := `for="[2001:db8::17]:4711"`
	elem, err := ParseElement(raw)
	if err != nil {
		t.Fatalf("ParseElement error: %v", err)
	}
	if elem.For == nil || elem.For.Kind() != NodeIP || !elem.For.HasPort() || elem.For.Port() != 4711 {
		t.Fatalf("unexpected for node: %+v", elem.For)
	}
	out := elem.String()
	if out != `for="[2001:db8::17]:4711"` {
		t.Errorf("String() = %q, want quoted bracketed form", out)
	}
}

func TestParseElement_Extension(t *testing.T) {
	elem, err := ParseElement(`for=192.0.2.1;secret="a,b"`)
	if err != nil {
		t.Fatalf("ParseElement error: %v", err)
	}
	ext, ok := elem.Extensions["secret"]
	if !ok || ext.Value != "a,b" || !ext.Quoted {
		t.Errorf("Extensions[secret] = %+v, ok=%v", ext, ok)
	}
}

func TestChain_EndToEndScenario(t *testing.T) {
	header := `for=192.0.2.43, for="[2001:db8::17]:4711";proto=http;by=203.0.113.43`
	chain, err := Parse(header)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("len(chain) = %d, want 2", len(chain))
	}
	client, ok := chain.Client()
	if !ok || client.For == nil || client.For.String() != "192.0.2.43" {
		t.Errorf("Client() = %+v", client)
	}
	nearest, ok := chain.Nearest()
	if !ok || nearest.Proto != "http" || nearest.By == nil || nearest.By.String() != "203.0.113.43" {
		t.Errorf("Nearest() = %+v", nearest)
	}

	reparsed, err := Parse(chain.String())
	if err != nil {
		t.Fatalf("reparse error: %v", err)
	}
	if reparsed.String() != chain.String() {
		t.Errorf("chain not idempotent under round-trip: %q != %q", reparsed.String(), chain.String())
	}
}

func TestParseNodeId_ObfuscatedWithPort(t *testing.T) {
	n, err := ParseNodeId("_hidden:_port1")
	if err != nil {
		t.Fatalf("ParseNodeId error: %v", err)
	}
	if n.Kind() != NodeObfuscated || n.Obfuscated() != "_hidden" {
		t.Errorf("unexpected node: %+v", n)
	}
	if n.String() != "_hidden:_port1" {
		t.Errorf("String() = %q", n.String())
	}
}

func TestParseNodeId_Unknown(t *testing.T) {
	n, err := ParseNodeId("unknown")
	if err != nil || n.Kind() != NodeUnknown {
		t.Fatalf("ParseNodeId(unknown) = %+v, %v", n, err)
	}
}
