package gedcom

import (
	"fmt"

	"github.com/lindenrow/rootline/core/errors"
)

// Validate checks the structural invariants of a ParseResult before it is
// handed to a consumer. A nil result or one whose meta counts disagree
// with its record lists is rejected; traversal and emission refuse to
// start on an invalid result.
func (r *ParseResult) Validate() error {
	if r == nil {
		return errors.NewValidation("parseResult", "result is required")
	}
	if r.Meta.Individuals != len(r.Persons) {
		return errors.NewValidation("meta.individuals",
			fmt.Sprintf("count %d does not match %d person records",
				r.Meta.Individuals, len(r.Persons)))
	}
	if r.Meta.Families != len(r.Families) {
		return errors.NewValidation("meta.families",
			fmt.Sprintf("count %d does not match %d family records",
				r.Meta.Families, len(r.Families)))
	}
	seen := make(map[string]bool, len(r.Persons))
	for i, p := range r.Persons {
		if p.ID == "" {
			return errors.NewValidation(fmt.Sprintf("persons[%d]", i), "missing id")
		}
		if seen[p.ID] {
			return errors.NewValidation(fmt.Sprintf("persons[%d]", i),
				fmt.Sprintf("duplicate id %s", p.ID))
		}
		seen[p.ID] = true
	}
	return nil
}
