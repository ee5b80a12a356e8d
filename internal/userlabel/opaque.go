package userlabel

import "github.com/edgeproxy/edgeproxy/internal/extmap"

// Labels holds every label collected by an OpaqueParser, in the order they
// appeared in the username.
type Labels struct {
	Values []string
}

// OpaqueParser collects every label verbatim, with no parsing logic of its
// own; useful as one member of a Tuple alongside parsers that only care
// about specific label prefixes.
type OpaqueParser struct {
	labels []string
}

func NewOpaqueParser() *OpaqueParser { return &OpaqueParser{} }

func (p *OpaqueParser) ParseLabel(label string) LabelState {
	p.labels = append(p.labels, label)
	return LabelUsed
}

func (p *OpaqueParser) Build(ext *extmap.Map) error {
	if len(p.labels) > 0 {
		extmap.Insert(ext, Labels{Values: p.labels})
	}
	return nil
}
