package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProfileFile_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	contents := "redirect_limit: 3\nmitm_hosts:\n  - example.com\n  - ramaproxy.org\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProfileFile(path)
	if err != nil {
		t.Fatalf("LoadProfileFile error: %v", err)
	}
	if p.RedirectLimit != 3 {
		t.Errorf("RedirectLimit = %d, want 3", p.RedirectLimit)
	}
	if len(p.MITMHosts) != 2 || p.MITMHosts[0] != "example.com" {
		t.Errorf("MITMHosts = %v", p.MITMHosts)
	}
}

func TestLoadProfileFile_MissingFile(t *testing.T) {
	if _, err := LoadProfileFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing profile file")
	}
}

func TestApplyProfile_OnlyOverridesSetFields(t *testing.T) {
	rt := NewDefaultRuntimeConfig()
	originalHeader := rt.RequestIDHeader

	ApplyProfile(rt, &Profile{RedirectLimit: 7})

	if rt.RedirectLimit != 7 {
		t.Errorf("RedirectLimit = %d, want 7", rt.RedirectLimit)
	}
	if rt.RequestIDHeader != originalHeader {
		t.Errorf("RequestIDHeader changed to %q despite an empty profile field", rt.RequestIDHeader)
	}
}

func TestApplyProfile_RejectsInvalidEnumValues(t *testing.T) {
	rt := NewDefaultRuntimeConfig()
	original := rt.MissingSNIAction

	ApplyProfile(rt, &Profile{MissingSNIAction: "NOT_A_REAL_ACTION"})

	if rt.MissingSNIAction != original {
		t.Errorf("MissingSNIAction = %q, want unchanged %q for an invalid override", rt.MissingSNIAction, original)
	}
}
