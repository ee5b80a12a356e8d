package main

import (
	"crypto/x509"
	"net"
	"testing"

	"github.com/edgeproxy/edgeproxy/internal/requestid"
)

func TestSplitMITMHosts_TrimsAndSkipsBlank(t *testing.T) {
	exact, parents := splitMITMHosts([]string{" example.com ", "", "ramaproxy.org"})
	if len(exact) != 2 || exact[0] != "example.com" || exact[1] != "ramaproxy.org" {
		t.Errorf("exact = %v", exact)
	}
	if len(parents) != 2 {
		t.Errorf("parents = %v", parents)
	}
}

func TestOrDefault(t *testing.T) {
	if got := orDefault(nil, []string{"fallback"}); len(got) != 1 || got[0] != "fallback" {
		t.Errorf("orDefault(nil, ...) = %v", got)
	}
	if got := orDefault([]string{"explicit"}, []string{"fallback"}); len(got) != 1 || got[0] != "explicit" {
		t.Errorf("orDefault(explicit, ...) = %v", got)
	}
}

func TestRequestIDProducer_SelectsByName(t *testing.T) {
	if _, ok := requestIDProducer("nanoid").(requestid.NanoIDProducer); !ok {
		t.Error("requestIDProducer(nanoid) did not return a NanoIDProducer")
	}
	if _, ok := requestIDProducer("uuid4").(requestid.UUIDv4Producer); !ok {
		t.Error("requestIDProducer(uuid4) did not return a UUIDv4Producer")
	}
	if _, ok := requestIDProducer("").(requestid.UUIDv4Producer); !ok {
		t.Error("requestIDProducer(\"\") did not default to UUIDv4Producer")
	}
}

func TestIssueSelfSigned_ProducesValidLeafForHost(t *testing.T) {
	cert, err := issueSelfSigned("example.test")
	if err != nil {
		t.Fatalf("issueSelfSigned error: %v", err)
	}
	if cert.Leaf == nil {
		t.Fatal("expected Leaf to be populated")
	}
	if err := cert.Leaf.VerifyHostname("example.test"); err != nil {
		t.Errorf("VerifyHostname: %v", err)
	}
	if cert.Leaf.PublicKeyAlgorithm != x509.ECDSA {
		t.Errorf("PublicKeyAlgorithm = %v, want ECDSA", cert.Leaf.PublicKeyAlgorithm)
	}
}

func TestIssueSelfSigned_RejectsEmptyHost(t *testing.T) {
	if _, err := issueSelfSigned(""); err == nil {
		t.Fatal("expected error for empty host")
	}
}

func TestSingleConnListener_AcceptOnceThenEOF(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	l := &singleConnListener{conn: server}
	conn, err := l.Accept()
	if err != nil {
		t.Fatalf("first Accept error: %v", err)
	}
	if conn != server {
		t.Error("Accept did not return the wrapped conn")
	}
	if _, err := l.Accept(); err == nil {
		t.Fatal("second Accept should return an error")
	}
}
