package ged

import (
	"fmt"

	"github.com/lindenrow/rootline/core/encoding"
	"github.com/lindenrow/rootline/core/errors"
	"github.com/lindenrow/rootline/core/gedcom"
)

// Parse converts a raw GEDCOM buffer into the canonical model.
//
// The buffer is decoded once; a decode failure is fatal with no fallback.
// The strict record-tree strategy runs first, and any failure there sends
// the original raw buffer through the lenient object-graph strategy. When
// both strategies fail the returned error names both failure messages.
// Normalization is all-or-nothing per strategy; no partial result is ever
// returned.
func Parse(data []byte) (*gedcom.ParseResult, error) {
	text, err := encoding.Decode(data)
	if err != nil {
		return nil, err
	}

	res, primaryErr := parseTreeStrategy(text)
	if primaryErr == nil {
		return res, nil
	}

	res, fallbackErr := parseGraphStrategy(data)
	if fallbackErr == nil {
		return res, nil
	}

	return nil, errors.NewParse("GEDCOM",
		fmt.Sprintf("%v; fallback also failed: %v", primaryErr, fallbackErr))
}
