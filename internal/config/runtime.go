package config

import "time"

// ForwardedDerivationPolicy selects which signal wins when deriving the
// client-facing RequestContext from possibly-conflicting sources.
type ForwardedDerivationPolicy string

const (
	// PolicyForwardedFirst prefers the RFC 7239 Forwarded header over
	// legacy X-Forwarded-* headers and HAProxy protocol bytes.
	PolicyForwardedFirst ForwardedDerivationPolicy = "FORWARDED_FIRST"
	// PolicyXForwardedFirst prefers legacy X-Forwarded-* headers.
	PolicyXForwardedFirst ForwardedDerivationPolicy = "X_FORWARDED_FIRST"
	// PolicyHAProxyFirst prefers the HAProxy protocol preamble.
	PolicyHAProxyFirst ForwardedDerivationPolicy = "HAPROXY_FIRST"
)

func (p ForwardedDerivationPolicy) IsValid() bool {
	switch p {
	case PolicyForwardedFirst, PolicyXForwardedFirst, PolicyHAProxyFirst:
		return true
	default:
		return false
	}
}

// MissingSNIAction controls SNI-router behavior when ClientHello carries no
// server_name extension.
type MissingSNIAction string

const (
	MissingSNIActionMITM    MissingSNIAction = "MITM"
	MissingSNIActionTunnel  MissingSNIAction = "TUNNEL"
	MissingSNIActionReject  MissingSNIAction = "REJECT"
)

func (a MissingSNIAction) IsValid() bool {
	switch a {
	case MissingSNIActionMITM, MissingSNIActionTunnel, MissingSNIActionReject:
		return true
	default:
		return false
	}
}

// RuntimeConfig holds all hot-updatable settings. cmd/edgegw builds one at
// startup and overlays an optional profile onto it; it does not swap it
// atomically at run time.
type RuntimeConfig struct {
	// Forwarded / RequestContext derivation
	ForwardedPolicy        ForwardedDerivationPolicy `json:"forwarded_policy"`
	TrustForwardedFrom     []string                  `json:"trust_forwarded_from"`
	SecureTransportDefault bool                      `json:"secure_transport_default_https"`

	// Redirect follower
	RedirectLimit     int      `json:"redirect_limit"`
	RedirectSchemes   []string `json:"redirect_allowed_schemes"`

	// Request-ID
	RequestIDHeader   string `json:"request_id_header"`
	RequestIDProducer string `json:"request_id_producer"` // "uuid4" | "nanoid"

	// MITM / SNI router
	MITMHosts        []string         `json:"mitm_hosts"`
	MissingSNIAction MissingSNIAction `json:"missing_sni_action"`
	MITMLeafTTL      Duration         `json:"mitm_leaf_ttl"`

	// SOCKS5 UDP relay
	SOCKS5AssocIdleTimeout Duration `json:"socks5_assoc_idle_timeout"`

	// gRPC compression negotiation
	GRPCEnabledEncodings []string `json:"grpc_enabled_encodings"`

	// Limits / backpressure
	MaxConcurrentRequests int      `json:"max_concurrent_requests"`
	BackoffBase           Duration `json:"backoff_base"`
	BackoffMax             Duration `json:"backoff_max"`
}

// NewDefaultRuntimeConfig returns a RuntimeConfig populated with sane
// process defaults, hot-updatable thereafter.
func NewDefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		ForwardedPolicy:        PolicyForwardedFirst,
		TrustForwardedFrom:     []string{},
		SecureTransportDefault: true,

		RedirectLimit:   10,
		RedirectSchemes: []string{"http", "https"},

		RequestIDHeader:   "x-request-id",
		RequestIDProducer: "uuid4",

		MITMHosts:        []string{},
		MissingSNIAction: MissingSNIActionMITM,
		MITMLeafTTL:      Duration(24 * time.Hour),

		SOCKS5AssocIdleTimeout: Duration(5 * time.Minute),

		GRPCEnabledEncodings: []string{"gzip"},

		MaxConcurrentRequests: 4096,
		BackoffBase:           Duration(10 * time.Millisecond),
		BackoffMax:            Duration(2 * time.Second),
	}
}
