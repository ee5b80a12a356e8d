package fingerprint

import "testing"

func TestComputeAkamaiH2_FormatAndHash(t *testing.T) {
	wu := uint32(15663105)
	in := AkamaiH2Input{
		Settings: []Setting{
			{SettingHeaderTableSize, 65536},
			{SettingEnablePush, 0},
			{SettingInitialWindowSize, 6291456},
			{SettingMaxHeaderListSize, 262144},
		},
		WindowUpdate: &wu,
		PriorityFrames: []PriorityFrame{
			{StreamID: 3, Exclusive: true, DependsOn: 0, Weight: 201},
			{StreamID: 5, Exclusive: true, DependsOn: 0, Weight: 101},
		},
		PseudoHeaderOrder: []PseudoHeader{PseudoMethod, PseudoAuthority, PseudoScheme, PseudoPath},
	}

	a := ComputeAkamaiH2(in)

	wantRaw := "1:65536;2:0;4:6291456;6:262144|15663105|3:1:0:201,5:1:0:101|m,a,s,p"
	if got := a.ToHumanString(); got != wantRaw {
		t.Errorf("ToHumanString() = %q, want %q", got, wantRaw)
	}

	hashed := a.String()
	if len(hashed) != 32 {
		t.Errorf("len(String()) = %d, want 32 (md5 hex)", len(hashed))
	}
}

func TestComputeAkamaiH2_EmptyDefaults(t *testing.T) {
	a := ComputeAkamaiH2(AkamaiH2Input{})
	want := "|00|0|"
	if got := a.ToHumanString(); got != want {
		t.Errorf("ToHumanString() = %q, want %q", got, want)
	}
}
