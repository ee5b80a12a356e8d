package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is an optional YAML overlay for a subset of RuntimeConfig,
// letting a demonstration deployment hand-edit hot-reloadable settings
// in a file instead of (or alongside) environment variables.
type Profile struct {
	ForwardedPolicy      string   `yaml:"forwarded_policy"`
	RedirectLimit        int      `yaml:"redirect_limit"`
	RequestIDHeader      string   `yaml:"request_id_header"`
	RequestIDProducer    string   `yaml:"request_id_producer"`
	MITMHosts            []string `yaml:"mitm_hosts"`
	MissingSNIAction     string   `yaml:"missing_sni_action"`
	GRPCEnabledEncodings []string `yaml:"grpc_enabled_encodings"`
}

// LoadProfileFile reads and parses a YAML profile from path.
func LoadProfileFile(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read profile %q: %w", path, err)
	}
	var p Profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("config: parse profile %q: %w", path, err)
	}
	return &p, nil
}

// ApplyProfile overlays the non-zero fields of p onto rt in place. Fields
// left empty in the profile keep rt's existing value, so a profile only
// needs to mention what it overrides.
func ApplyProfile(rt *RuntimeConfig, p *Profile) {
	if p.ForwardedPolicy != "" {
		policy := ForwardedDerivationPolicy(p.ForwardedPolicy)
		if policy.IsValid() {
			rt.ForwardedPolicy = policy
		}
	}
	if p.RedirectLimit > 0 {
		rt.RedirectLimit = p.RedirectLimit
	}
	if p.RequestIDHeader != "" {
		rt.RequestIDHeader = p.RequestIDHeader
	}
	if p.RequestIDProducer != "" {
		rt.RequestIDProducer = p.RequestIDProducer
	}
	if len(p.MITMHosts) > 0 {
		rt.MITMHosts = p.MITMHosts
	}
	if p.MissingSNIAction != "" {
		action := MissingSNIAction(p.MissingSNIAction)
		if action.IsValid() {
			rt.MissingSNIAction = action
		}
	}
	if len(p.GRPCEnabledEncodings) > 0 {
		rt.GRPCEnabledEncodings = p.GRPCEnabledEncodings
	}
}
