package ged

import (
	"strings"

	"github.com/lindenrow/rootline/core/encoding"
	"github.com/lindenrow/rootline/core/gedcom"
	"github.com/lindenrow/rootline/internal/formats"
)

// Handler exposes the GEDCOM parser through the format registry.
type Handler struct{}

// Name implements formats.Handler.
func (Handler) Name() string { return "ged" }

// Detect reports whether the buffer looks like line-tagged GEDCOM text:
// decodable, with a first non-blank line at level 0.
func (Handler) Detect(data []byte) bool {
	text, err := encoding.Decode(data)
	if err != nil {
		return false
	}
	for _, raw := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		return strings.HasPrefix(trimmed, "0 ")
	}
	return false
}

// Parse implements formats.Handler.
func (Handler) Parse(data []byte) (*gedcom.ParseResult, error) {
	return Parse(data)
}

func init() {
	formats.Register(Handler{})
}
