package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// SettingID mirrors an HTTP/2 SETTINGS parameter identifier; kept as a raw
// numeric type (rather than golang.org/x/net/http2's older constant set)
// since the fingerprint also covers newer draft settings
// (enable-connect-protocol, no-rfc7540-priorities) that package predates.
type SettingID uint16

const (
	SettingHeaderTableSize        SettingID = 0x1
	SettingEnablePush             SettingID = 0x2
	SettingMaxConcurrentStreams   SettingID = 0x3
	SettingInitialWindowSize      SettingID = 0x4
	SettingMaxFrameSize           SettingID = 0x5
	SettingMaxHeaderListSize      SettingID = 0x6
	SettingEnableConnectProtocol  SettingID = 0x8
	SettingNoRFC7540Priorities    SettingID = 0x9
)

// Setting is one id:value pair observed in a non-ack SETTINGS frame, in the
// order the peer sent them.
type Setting struct {
	ID    SettingID
	Value uint32
}

// PriorityFrame captures one HTTP/2 PRIORITY frame.
type PriorityFrame struct {
	StreamID  uint32
	Exclusive bool
	DependsOn uint32
	Weight    uint8
}

// PseudoHeader is one of the four HTTP/2 request pseudo-headers, reduced to
// its single-character fingerprint code.
type PseudoHeader byte

const (
	PseudoMethod    PseudoHeader = 'm'
	PseudoPath      PseudoHeader = 'p'
	PseudoAuthority PseudoHeader = 'a'
	PseudoScheme    PseudoHeader = 's'
)

// AkamaiH2Input is the early-connection HTTP/2 frame shape the Akamai
// fingerprint is computed from, captured before any stream data arrives.
type AkamaiH2Input struct {
	Settings          []Setting
	WindowUpdate      *uint32 // connection-level (stream 0) increment, nil if none seen
	PriorityFrames    []PriorityFrame
	PseudoHeaderOrder []PseudoHeader
}

// AkamaiH2 is a computed Akamai HTTP/2 fingerprint in the
// `S[;]|WU|P[,]|PS[,]` format.
type AkamaiH2 struct {
	settings     []Setting
	windowUpdate *uint32
	priority     []PriorityFrame
	pseudoOrder  []PseudoHeader
}

// ComputeAkamaiH2 builds an AkamaiH2 fingerprint from in.
func ComputeAkamaiH2(in AkamaiH2Input) AkamaiH2 {
	return AkamaiH2{
		settings:     in.Settings,
		windowUpdate: in.WindowUpdate,
		priority:     in.PriorityFrames,
		pseudoOrder:  in.PseudoHeaderOrder,
	}
}

// ToHumanString renders the raw, unhashed fingerprint string.
func (a AkamaiH2) ToHumanString() string { return a.format(false) }

// String renders the canonical MD5-hashed fingerprint.
func (a AkamaiH2) String() string { return a.format(true) }

func (a AkamaiH2) format(asHash bool) string {
	settingParts := make([]string, len(a.settings))
	for i, s := range a.settings {
		settingParts[i] = fmt.Sprintf("%d:%d", s.ID, s.Value)
	}
	settings := strings.Join(settingParts, ";")

	windowUpdate := "00"
	if a.windowUpdate != nil {
		windowUpdate = fmt.Sprintf("%d", *a.windowUpdate)
	}

	priority := "0"
	if len(a.priority) > 0 {
		parts := make([]string, len(a.priority))
		for i, p := range a.priority {
			excl := 0
			if p.Exclusive {
				excl = 1
			}
			parts[i] = fmt.Sprintf("%d:%d:%d:%d", p.StreamID, excl, p.DependsOn, p.Weight)
		}
		priority = strings.Join(parts, ",")
	}

	pseudoParts := make([]string, len(a.pseudoOrder))
	for i, p := range a.pseudoOrder {
		pseudoParts[i] = string(rune(p))
	}
	pseudo := strings.Join(pseudoParts, ",")

	raw := fmt.Sprintf("%s|%s|%s|%s", settings, windowUpdate, priority, pseudo)
	if !asHash {
		return raw
	}
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
