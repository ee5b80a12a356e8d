package userlabel

import "github.com/edgeproxy/edgeproxy/internal/extmap"

// tupleParser runs every member parser against each label; a label is
// considered used if any member used it — useful when multiple concerns
// tag disjoint label vocabularies and all parsers need a look.
type tupleParser struct {
	parsers []LabelParser
}

// Tuple combines parsers so every one of them sees every label. The
// combined label state is Used if any member used it (unless a member
// aborts, which aborts immediately), Ignored only if none did.
func Tuple(parsers ...LabelParser) LabelParser {
	return &tupleParser{parsers: parsers}
}

func (t *tupleParser) ParseLabel(label string) LabelState {
	state := LabelIgnored
	for _, p := range t.parsers {
		switch p.ParseLabel(label) {
		case LabelAbort:
			return LabelAbort
		case LabelUsed:
			state = LabelUsed
		}
	}
	return state
}

func (t *tupleParser) Build(ext *extmap.Map) error {
	for _, p := range t.parsers {
		if err := p.Build(ext); err != nil {
			return err
		}
	}
	return nil
}

// exclusiveParser stops at the first member that consumes a label, so at
// most one parser in the set ever sees a given label.
type exclusiveParser struct {
	parsers []LabelParser
}

// Exclusive combines parsers so each label is offered to members in order
// and stops at the first one that reports Used; later members never see
// that label.
func Exclusive(parsers ...LabelParser) LabelParser {
	return &exclusiveParser{parsers: parsers}
}

func (e *exclusiveParser) ParseLabel(label string) LabelState {
	for _, p := range e.parsers {
		switch p.ParseLabel(label) {
		case LabelUsed:
			return LabelUsed
		case LabelAbort:
			return LabelAbort
		}
	}
	return LabelIgnored
}

func (e *exclusiveParser) Build(ext *extmap.Map) error {
	for _, p := range e.parsers {
		if err := p.Build(ext); err != nil {
			return err
		}
	}
	return nil
}
