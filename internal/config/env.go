// Package config handles environment-based configuration loading and
// hot-updatable runtime config models for the proxy core.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// EnvConfig holds all environment-variable-driven settings that are fixed
// for the lifetime of the process (not hot-updatable).
type EnvConfig struct {
	CacheDir string
	StateDir string

	ListenAddress    string
	ListenPort       int
	HeaderTimeout    time.Duration
	MaxHeaderBytes   int
	ReadHeaderBuffer int

	MITMHosts       []string
	MITMCacheDir    string
	MITMLeafTTL     time.Duration
	MITMCertSweep   string
	RedirectLimit   int
	RequestIDHeader string

	SOCKS5NorthBufferBytes int
	SOCKS5SouthBufferBytes int
	SOCKS5AssocSweep       string

	GRPCEnabledEncodings []string

	ProxyToken string
}

// LoadEnvConfig reads environment variables and returns a validated
// EnvConfig. Returns an error describing every invalid variable at once.
func LoadEnvConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	var errs []string

	cfg.CacheDir = envStr("EDGEGW_CACHE_DIR", "/var/cache/edgegw")
	cfg.StateDir = envStr("EDGEGW_STATE_DIR", "/var/lib/edgegw")

	cfg.ListenAddress = strings.TrimSpace(envStr("EDGEGW_LISTEN_ADDRESS", "0.0.0.0"))
	cfg.ListenPort = envInt("EDGEGW_LISTEN_PORT", 8443, &errs)
	cfg.HeaderTimeout = envDuration("EDGEGW_HEADER_TIMEOUT", 30*time.Second, &errs)
	cfg.MaxHeaderBytes = envInt("EDGEGW_MAX_HEADER_BYTES", 400<<10, &errs)
	cfg.ReadHeaderBuffer = envInt("EDGEGW_READ_HEADER_BUFFER_BYTES", 8<<10, &errs)

	cfg.MITMHosts = envStringSlice("EDGEGW_MITM_HOSTS", []string{}, &errs)
	cfg.MITMCacheDir = envStr("EDGEGW_MITM_CACHE_DIR", "/var/cache/edgegw/mitm-certs")
	cfg.MITMLeafTTL = envDuration("EDGEGW_MITM_LEAF_TTL", 24*time.Hour, &errs)
	cfg.MITMCertSweep = envStr("EDGEGW_MITM_CERT_SWEEP_SCHEDULE", "0 * * * *")
	cfg.RedirectLimit = envInt("EDGEGW_REDIRECT_LIMIT", 10, &errs)
	cfg.RequestIDHeader = envStr("EDGEGW_REQUEST_ID_HEADER", "x-request-id")

	cfg.SOCKS5NorthBufferBytes = envInt("EDGEGW_SOCKS5_NORTH_BUFFER_BYTES", 64<<10, &errs)
	cfg.SOCKS5SouthBufferBytes = envInt("EDGEGW_SOCKS5_SOUTH_BUFFER_BYTES", 64<<10, &errs)
	cfg.SOCKS5AssocSweep = envStr("EDGEGW_SOCKS5_ASSOC_SWEEP_SCHEDULE", "*/5 * * * *")

	cfg.GRPCEnabledEncodings = envStringSlice("EDGEGW_GRPC_ENABLED_ENCODINGS", []string{"gzip"}, &errs)

	proxyToken, hasProxyToken := os.LookupEnv("EDGEGW_PROXY_TOKEN")
	cfg.ProxyToken = proxyToken
	if !hasProxyToken {
		errs = append(errs, "EDGEGW_PROXY_TOKEN must be defined (can be empty to disable auth)")
	}

	if cfg.ListenAddress == "" {
		errs = append(errs, "EDGEGW_LISTEN_ADDRESS must not be empty")
	}
	validatePort("EDGEGW_LISTEN_PORT", cfg.ListenPort, &errs)
	validatePositive("EDGEGW_MAX_HEADER_BYTES", cfg.MaxHeaderBytes, &errs)
	if cfg.MaxHeaderBytes < 8<<10 {
		errs = append(errs, "EDGEGW_MAX_HEADER_BYTES must be at least 8KiB")
	}
	validatePositive("EDGEGW_READ_HEADER_BUFFER_BYTES", cfg.ReadHeaderBuffer, &errs)
	if cfg.HeaderTimeout <= 0 {
		errs = append(errs, "EDGEGW_HEADER_TIMEOUT must be positive")
	}
	if cfg.RedirectLimit < 0 {
		errs = append(errs, "EDGEGW_REDIRECT_LIMIT must not be negative")
	}
	if _, err := cron.ParseStandard(cfg.MITMCertSweep); err != nil {
		errs = append(errs, fmt.Sprintf("EDGEGW_MITM_CERT_SWEEP_SCHEDULE: invalid cron expression %q: %v", cfg.MITMCertSweep, err))
	}
	if _, err := cron.ParseStandard(cfg.SOCKS5AssocSweep); err != nil {
		errs = append(errs, fmt.Sprintf("EDGEGW_SOCKS5_ASSOC_SWEEP_SCHEDULE: invalid cron expression %q: %v", cfg.SOCKS5AssocSweep, err))
	}
	validatePositive("EDGEGW_SOCKS5_NORTH_BUFFER_BYTES", cfg.SOCKS5NorthBufferBytes, &errs)
	validatePositive("EDGEGW_SOCKS5_SOUTH_BUFFER_BYTES", cfg.SOCKS5SouthBufferBytes, &errs)
	if len(cfg.GRPCEnabledEncodings) > 3 {
		errs = append(errs, "EDGEGW_GRPC_ENABLED_ENCODINGS: at most 3 encodings allowed")
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}

	return cfg, nil
}

// --- helpers ---

func envStr(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int, errs *[]string) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: invalid integer %q", key, v))
		return defaultVal
	}
	return n
}

func envDuration(key string, defaultVal time.Duration, errs *[]string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: invalid duration %q", key, v))
		return defaultVal
	}
	return d
}

func envStringSlice(key string, defaultVal []string, errs *[]string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: invalid JSON string array %q", key, v))
		return defaultVal
	}
	if out == nil {
		return []string{}
	}
	return out
}

func validatePort(name string, value int, errs *[]string) {
	if value < 1 || value > 65535 {
		*errs = append(*errs, fmt.Sprintf("%s: port must be 1-65535, got %d", name, value))
	}
}

func validatePositive(name string, value int, errs *[]string) {
	if value <= 0 {
		*errs = append(*errs, fmt.Sprintf("%s: must be positive, got %d", name, value))
	}
}
