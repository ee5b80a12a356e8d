package mitm

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/maypok86/otter"
	"github.com/robfig/cron/v3"
)

// Issuer mints a leaf certificate for a given ClientHello, shaped after
// certmagic.Config.GetCertificate so a real ACME-backed certmagic.Config
// plugs in directly as the on-demand issuer.
type Issuer interface {
	GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error)
}

// CertCacheConfig tunes a CertCache.
type CertCacheConfig struct {
	Capacity int
	// SweepSchedule is a cron expression controlling how often expiring
	// leaf certificates are evicted. Default: every 10 minutes.
	SweepSchedule string
}

const (
	defaultCertCacheCapacity = 1024
	defaultSweepSchedule     = "*/10 * * * *"
	certExpiryGuardBand      = time.Hour
)

// CertCache wraps an Issuer with a leaf certificate cache keyed by server
// name, swept on a cron schedule the same way a periodic staleness sweep
// is built elsewhere in this codebase (cron.New + AddFunc + Start/Stop).
type CertCache struct {
	issuer Issuer
	certs  otter.Cache[string, *tls.Certificate]
	cron   *cron.Cron
}

// NewCertCache builds a CertCache in front of issuer and starts its sweep
// schedule.
func NewCertCache(issuer Issuer, cfg CertCacheConfig) (*CertCache, error) {
	if cfg.Capacity <= 0 {
		cfg.Capacity = defaultCertCacheCapacity
	}
	if cfg.SweepSchedule == "" {
		cfg.SweepSchedule = defaultSweepSchedule
	}

	certs, err := otter.MustBuilder[string, *tls.Certificate](cfg.Capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("mitm: build cert cache: %w", err)
	}

	c := &CertCache{issuer: issuer, certs: certs, cron: cron.New()}
	if _, err := c.cron.AddFunc(cfg.SweepSchedule, c.sweep); err != nil {
		return nil, fmt.Errorf("mitm: invalid cert cache sweep schedule %q: %w", cfg.SweepSchedule, err)
	}
	c.cron.Start()
	return c, nil
}

// GetCertificate returns a cached leaf certificate for hello.ServerName,
// issuing and caching a new one on a cache miss.
func (c *CertCache) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	name := hello.ServerName
	if name == "" {
		return nil, errors.New("mitm: ClientHelloInfo has no ServerName")
	}
	if cert, ok := c.certs.Get(name); ok {
		return cert, nil
	}
	cert, err := c.issuer.GetCertificate(hello)
	if err != nil {
		return nil, err
	}
	c.certs.Set(name, cert)
	return cert, nil
}

// Stop halts the sweep schedule.
func (c *CertCache) Stop() {
	<-c.cron.Stop().Done()
}

func (c *CertCache) sweep() {
	now := time.Now()
	var stale []string
	c.certs.Range(func(name string, cert *tls.Certificate) bool {
		if certExpiringSoon(cert, now) {
			stale = append(stale, name)
		}
		return true
	})
	for _, name := range stale {
		c.certs.Delete(name)
	}
}

func certExpiringSoon(cert *tls.Certificate, now time.Time) bool {
	if cert == nil || len(cert.Certificate) == 0 {
		return true
	}
	leaf := cert.Leaf
	if leaf == nil {
		parsed, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return true
		}
		leaf = parsed
	}
	return now.After(leaf.NotAfter.Add(-certExpiryGuardBand))
}
