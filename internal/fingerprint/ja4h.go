// Package fingerprint computes client fingerprints (JA4H, Akamai H2) from
// already-parsed HTTP request shape, independent of which HTTP engine
// parsed it. Grounded on original_source/rama-net/src/fingerprint.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"
)

// HeaderField is one header as it appeared on the wire, preserving order
// and duplicate occurrences — JA4H is sensitive to both.
type HeaderField struct {
	Name  string
	Value string
}

// HTTPInput is everything JA4H needs from a request.
type HTTPInput struct {
	Method  string
	Version string // "1.0", "1.1", "2", "2.0", "3", "3.0"
	Headers []HeaderField
}

// JA4H is a computed JA4H fingerprint, renderable either as a human string
// (raw, unhashed chunks) or the canonical hashed form.
type JA4H struct {
	methodCode      string
	versionCode     string
	hasCookie       bool
	hasReferer      bool
	language        string
	headerNames     []string
	cookiePairNames []string
	cookiePairsFull []string
}

// ComputeJA4H computes a JA4H fingerprint from in. Returns an error if the
// HTTP version is unrecognised or the request carries no headers usable in
// the application fingerprint (after Cookie/Referer are pulled out).
func ComputeJA4H(in HTTPInput) (JA4H, error) {
	versionCode, err := ja4hVersionCode(in.Version)
	if err != nil {
		return JA4H{}, err
	}

	var (
		hasCookie, hasReferer bool
		language              string
		headerNames           []string
		cookiePairs           [][2]string // [name, value]; value=="" means absent (not necessarily empty string value)
		cookieHasValue        []bool
	)

	for _, h := range in.Headers {
		switch strings.ToLower(h.Name) {
		case "accept-language":
			language = ja4hLanguageField(h.Value)
			headerNames = append(headerNames, h.Name)
		case "cookie":
			hasCookie = true
			for _, raw := range strings.Split(h.Value, ";") {
				raw = strings.TrimSpace(raw)
				if raw == "" {
					continue
				}
				if idx := strings.IndexByte(raw, '='); idx >= 0 {
					cookiePairs = append(cookiePairs, [2]string{raw[:idx], raw[idx+1:]})
					cookieHasValue = append(cookieHasValue, true)
				} else {
					cookiePairs = append(cookiePairs, [2]string{raw, ""})
					cookieHasValue = append(cookieHasValue, false)
				}
			}
		case "referer":
			hasReferer = true
		default:
			headerNames = append(headerNames, h.Name)
		}
	}
	if len(headerNames) == 0 {
		return JA4H{}, fmt.Errorf("fingerprint: ja4h: no headers to fingerprint")
	}

	sort.SliceStable(cookiePairs, func(i, j int) bool {
		if cookiePairs[i][0] != cookiePairs[j][0] {
			return cookiePairs[i][0] < cookiePairs[j][0]
		}
		if cookieHasValue[i] != cookieHasValue[j] {
			return !cookieHasValue[i] // absent value sorts before present, mirroring None < Some
		}
		return cookiePairs[i][1] < cookiePairs[j][1]
	})

	names := make([]string, len(cookiePairs))
	full := make([]string, len(cookiePairs))
	for i, p := range cookiePairs {
		names[i] = p[0]
		if cookieHasValue[i] {
			full[i] = p[0] + "=" + p[1]
		} else {
			full[i] = p[0]
		}
	}

	return JA4H{
		methodCode:      ja4hMethodCode(in.Method),
		versionCode:     versionCode,
		hasCookie:       hasCookie,
		hasReferer:      hasReferer,
		language:        language,
		headerNames:     headerNames,
		cookiePairNames: names,
		cookiePairsFull: full,
	}, nil
}

func ja4hMethodCode(method string) string {
	switch strings.ToUpper(method) {
	case "CONNECT":
		return "co"
	case "DELETE":
		return "de"
	case "GET":
		return "ge"
	case "HEAD":
		return "he"
	case "OPTIONS":
		return "op"
	case "PATCH":
		return "pa"
	case "POST":
		return "po"
	case "PUT":
		return "pu"
	case "TRACE":
		return "tr"
	default:
		lower := strings.ToLower(method)
		runes := []rune(lower)
		var a, b byte = '0', '0'
		if len(runes) > 0 {
			a = byte(runes[0])
		}
		if len(runes) > 1 {
			b = byte(runes[1])
		}
		return string([]byte{a, b})
	}
}

func ja4hVersionCode(version string) (string, error) {
	switch strings.TrimPrefix(strings.ToUpper(version), "HTTP/") {
	case "1.0":
		return "10", nil
	case "1.1":
		return "11", nil
	case "2", "2.0":
		return "20", nil
	case "3", "3.0":
		return "30", nil
	default:
		return "", fmt.Errorf("fingerprint: ja4h: unrecognised http version %q", version)
	}
}

// ja4hLanguageField extracts the primary language tag from an
// Accept-Language header value, keeping only alphabetic characters,
// lowercased, truncated or zero-padded to exactly 4 characters.
func ja4hLanguageField(value string) string {
	first := value
	if idx := strings.IndexByte(first, ','); idx >= 0 {
		first = first[:idx]
	}
	if idx := strings.IndexByte(first, ';'); idx >= 0 {
		first = first[:idx]
	}
	first = strings.TrimSpace(first)

	var b strings.Builder
	for _, r := range first {
		if b.Len() == 4 {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(toLowerASCII(r))
		}
	}
	out := b.String()
	for len(out) < 4 {
		out += "0"
	}
	return out
}

func toLowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func ja4hHeaderCount(n int) int {
	if n > 99 {
		return 99
	}
	return n
}

// ToHumanString renders the raw (unhashed) JA4H string, useful for
// debugging and test fixtures.
func (j JA4H) ToHumanString() string {
	return j.format(false)
}

// String renders the canonical hashed JA4H fingerprint.
func (j JA4H) String() string {
	return j.format(true)
}

func (j JA4H) format(hashChunks bool) string {
	cookieMarker := byte('n')
	if j.hasCookie {
		cookieMarker = 'c'
	}
	refererMarker := byte('n')
	if j.hasReferer {
		refererMarker = 'r'
	}

	prefix := fmt.Sprintf("%s%s%c%c%02d%s",
		j.methodCode, j.versionCode, cookieMarker, refererMarker,
		ja4hHeaderCount(len(j.headerNames)), j.language)

	headers := strings.Join(j.headerNames, ",")
	cookieNames := strings.Join(j.cookiePairNames, ",")
	cookiePairs := strings.Join(j.cookiePairsFull, ",")

	if !hashChunks {
		return fmt.Sprintf("%s_%s_%s_%s", prefix, headers, cookieNames, cookiePairs)
	}
	return fmt.Sprintf("%s_%s_%s_%s", prefix, hash12(headers), hash12(cookieNames), hash12(cookiePairs))
}

// CacheKey returns a fast, non-cryptographic hash of the canonical JA4H
// string, suitable as a map key for per-fingerprint rate limiting or
// connection-reuse lookups where SHA-256's cost is wasted. Not a
// substitute for the canonical hashed form returned by String.
func (j JA4H) CacheKey() uint64 {
	return xxh3.HashString(j.String())
}

func hash12(s string) string {
	if s == "" {
		return "000000000000"
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:6])
}
