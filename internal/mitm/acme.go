package mitm

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/caddyserver/certmagic"
)

// ACMEIssuerConfig configures an ACME-backed certificate issuer for
// domains this proxy is willing to MITM.
type ACMEIssuerConfig struct {
	Email    string
	CacheDir string
	// Staging routes issuance through Let's Encrypt's staging directory,
	// for development and tests that would otherwise hit production rate
	// limits.
	Staging bool
}

// NewACMEIssuer builds a certmagic-backed Issuer and eagerly manages
// certificates for domains. Obtaining certificates this way requires the
// proxy to be reachable on the ACME challenge ports; callers that only
// want on-demand issuance behind a handshake should rely on certmagic's
// OnDemand policy instead of calling ManageSync up front.
func NewACMEIssuer(ctx context.Context, cfg ACMEIssuerConfig, domains []string) (Issuer, error) {
	certmagic.Default.Storage = &certmagic.FileStorage{Path: cfg.CacheDir}
	magic := certmagic.NewDefault()
	magic.Issuers = []certmagic.Issuer{
		certmagic.NewACMEIssuer(magic, acmeTemplate(cfg)),
	}

	if len(domains) > 0 {
		if err := magic.ManageSync(ctx, domains); err != nil {
			return nil, fmt.Errorf("mitm: manage ACME certificates: %w", err)
		}
	}

	return certmagicIssuer{config: magic}, nil
}

func acmeTemplate(cfg ACMEIssuerConfig) certmagic.ACMEIssuer {
	tmpl := certmagic.ACMEIssuer{Email: cfg.Email, Agreed: true}
	if cfg.Staging {
		tmpl.CA = certmagic.LetsEncryptStagingCA
	}
	return tmpl
}

// certmagicIssuer adapts a *certmagic.Config to this package's Issuer
// interface.
type certmagicIssuer struct {
	config *certmagic.Config
}

func (c certmagicIssuer) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	return c.config.GetCertificate(hello)
}
