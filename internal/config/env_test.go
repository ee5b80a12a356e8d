package config

import (
	"strings"
	"testing"
	"time"
)

func requiredEnvs() map[string]string {
	return map[string]string{
		"EDGEGW_PROXY_TOKEN": "proxy-secret",
	}
}

func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoadEnvConfig_Defaults(t *testing.T) {
	setEnvs(t, requiredEnvs())

	cfg, err := LoadEnvConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertEqual(t, "ListenAddress", cfg.ListenAddress, "0.0.0.0")
	assertEqual(t, "ListenPort", cfg.ListenPort, 8443)
	assertEqual(t, "HeaderTimeout", cfg.HeaderTimeout, 30*time.Second)
	assertEqual(t, "MaxHeaderBytes", cfg.MaxHeaderBytes, 400<<10)
	assertEqual(t, "RequestIDHeader", cfg.RequestIDHeader, "x-request-id")
	assertEqual(t, "RedirectLimit", cfg.RedirectLimit, 10)
	if len(cfg.MITMHosts) != 0 {
		t.Errorf("MITMHosts = %v, want empty", cfg.MITMHosts)
	}
}

func TestLoadEnvConfig_MissingProxyToken(t *testing.T) {
	_, err := LoadEnvConfig()
	if err == nil || !strings.Contains(err.Error(), "EDGEGW_PROXY_TOKEN") {
		t.Fatalf("expected missing proxy token error, got %v", err)
	}
}

func TestLoadEnvConfig_InvalidPort(t *testing.T) {
	setEnvs(t, requiredEnvs())
	t.Setenv("EDGEGW_LISTEN_PORT", "99999")

	_, err := LoadEnvConfig()
	if err == nil || !strings.Contains(err.Error(), "port must be 1-65535") {
		t.Fatalf("expected port validation error, got %v", err)
	}
}

func TestLoadEnvConfig_InvalidCron(t *testing.T) {
	setEnvs(t, requiredEnvs())
	t.Setenv("EDGEGW_MITM_CERT_SWEEP_SCHEDULE", "not-a-cron")

	_, err := LoadEnvConfig()
	if err == nil || !strings.Contains(err.Error(), "invalid cron expression") {
		t.Fatalf("expected cron validation error, got %v", err)
	}
}

func TestLoadEnvConfig_TooManyGRPCEncodings(t *testing.T) {
	setEnvs(t, requiredEnvs())
	t.Setenv("EDGEGW_GRPC_ENABLED_ENCODINGS", `["gzip","deflate","zstd","identity"]`)

	_, err := LoadEnvConfig()
	if err == nil || !strings.Contains(err.Error(), "at most 3 encodings") {
		t.Fatalf("expected encoding count validation error, got %v", err)
	}
}

func assertEqual(t *testing.T, name string, got, want any) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}
