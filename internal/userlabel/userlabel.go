// Package userlabel parses SOCKS5/proxy-auth usernames of the form
// "username-label1-label2-...", handing each label to a pluggable parser.
// Grounded on original_source/rama-core/src/username/parse.rs.
package userlabel

import (
	"fmt"
	"strings"

	"github.com/edgeproxy/edgeproxy/internal/extmap"
)

// DefaultSeparator is the label delimiter used when none is specified.
const DefaultSeparator = '-'

// LabelState is the outcome of handing one label to a LabelParser.
type LabelState int

const (
	// LabelUsed means the parser recognised and consumed the label.
	LabelUsed LabelState = iota
	// LabelIgnored means the parser did not recognise the label; by
	// itself this is not an error, but ParseUsername rejects the whole
	// username if every parser ignores a label.
	LabelIgnored
	// LabelAbort means the label put the parser into an unrecoverable
	// state; parsing stops immediately with an error.
	LabelAbort
)

// LabelParser interprets username labels and, once all labels have been
// seen, stores whatever it collected into ext.
type LabelParser interface {
	ParseLabel(label string) LabelState
	Build(ext *extmap.Map) error
}

// ParseUsername extracts the leading username segment from usernameRef and
// feeds every remaining "-"-delimited label to parser, storing parser's
// result into ext. Returns an error if the username is empty or any label
// is ignored or aborts parsing.
func ParseUsername(ext *extmap.Map, parser LabelParser, usernameRef string) (string, error) {
	return ParseUsernameWithSeparator(ext, parser, usernameRef, DefaultSeparator)
}

// ParseUsernameWithSeparator is ParseUsername with a caller-chosen label
// separator.
func ParseUsernameWithSeparator(ext *extmap.Map, parser LabelParser, usernameRef string, separator byte) (string, error) {
	parts := strings.Split(usernameRef, string(separator))
	username := parts[0]
	if username == "" {
		return "", fmt.Errorf("userlabel: empty username")
	}
	for index, label := range parts[1:] {
		switch parser.ParseLabel(label) {
		case LabelUsed:
		case LabelIgnored:
			return "", fmt.Errorf("userlabel: ignored label %q at index %d", label, index)
		case LabelAbort:
			return "", fmt.Errorf("userlabel: invalid label %q at index %d", label, index)
		}
	}
	if err := parser.Build(ext); err != nil {
		return "", fmt.Errorf("userlabel: build: %w", err)
	}
	return username, nil
}

// noopParser is the zero-value LabelParser: it accepts every label without
// recording anything, equivalent to passing no parser at all.
type noopParser struct{}

func (noopParser) ParseLabel(string) LabelState    { return LabelUsed }
func (noopParser) Build(*extmap.Map) error         { return nil }

// NoOp returns a LabelParser that accepts every label and stores nothing.
func NoOp() LabelParser { return noopParser{} }
