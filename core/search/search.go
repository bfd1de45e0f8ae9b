// Package search provides free-text filtering over parsed persons.
//
// Matching is linear predicate evaluation: every query term must match
// somewhere in a person's searchable fields (case-insensitive substring),
// and results keep source order. Queries may scope a term to one field
// with the field:value form, e.g.
//
//	name:john surname:doe birth:1900
//	"van der" id:I5
package search

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/lindenrow/rootline/core/errors"
	"github.com/lindenrow/rootline/core/gedcom"
)

// queryGrammar is the participle grammar for search queries: one or more
// terms, each an optional field scope followed by a bare or quoted value.
type queryGrammar struct {
	Terms []*termGrammar `parser:"@@+"`
}

type termGrammar struct {
	Field *string `parser:"( @Word \":\" )?"`
	Value string  `parser:"( @String | @Word )"`
}

var queryLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Word", Pattern: `[^\s:"]+`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var queryParser = participle.MustBuild[queryGrammar](
	participle.Lexer(queryLexer),
	participle.Elide("Whitespace"),
	// Two tokens of lookahead so a bare word is not committed to the
	// optional field scope before the ":" is seen.
	participle.UseLookahead(2),
)

// Field names accepted as term scopes.
const (
	FieldName    = "name"
	FieldGiven   = "given"
	FieldSurname = "surname"
	FieldID      = "id"
	FieldBirth   = "birth"
	FieldDeath   = "death"
)

var validFields = map[string]bool{
	FieldName:    true,
	FieldGiven:   true,
	FieldSurname: true,
	FieldID:      true,
	FieldBirth:   true,
	FieldDeath:   true,
}

// Term is one parsed query predicate.
type Term struct {
	// Field scopes the term to a single field; empty matches any field.
	Field string
	// Value is the lowercased substring to look for.
	Value string
}

// Query is a conjunction of terms.
type Query struct {
	Terms []Term
}

// ParseQuery parses a query string. An empty query or an unknown field
// scope is a validation error.
func ParseQuery(q string) (*Query, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, errors.NewValidation("query", "query is required")
	}
	parsed, err := queryParser.ParseString("", q)
	if err != nil {
		return nil, errors.NewValidation("query", err.Error())
	}

	out := &Query{}
	for _, t := range parsed.Terms {
		term := Term{Value: strings.ToLower(strings.Trim(t.Value, `"`))}
		if t.Field != nil {
			field := strings.ToLower(*t.Field)
			if !validFields[field] {
				return nil, errors.NewValidation("query", "unknown field "+field)
			}
			term.Field = field
		}
		if term.Value == "" {
			continue
		}
		out.Terms = append(out.Terms, term)
	}
	if len(out.Terms) == 0 {
		return nil, errors.NewValidation("query", "query has no terms")
	}
	return out, nil
}

// Matches reports whether every term of the query matches the person.
func (q *Query) Matches(p *gedcom.Person) bool {
	for _, t := range q.Terms {
		if !matchTerm(t, p) {
			return false
		}
	}
	return true
}

func matchTerm(t Term, p *gedcom.Person) bool {
	switch t.Field {
	case FieldName:
		return contains(p.Name, t.Value)
	case FieldGiven:
		return contains(p.FirstName, t.Value)
	case FieldSurname:
		return contains(p.LastName, t.Value)
	case FieldID:
		return contains(p.ID, t.Value)
	case FieldBirth:
		return contains(p.BirthDate, t.Value)
	case FieldDeath:
		return contains(p.DeathDate, t.Value)
	default:
		return contains(p.Name, t.Value) ||
			contains(p.FirstName, t.Value) ||
			contains(p.LastName, t.Value) ||
			contains(p.ID, t.Value) ||
			contains(p.BirthDate, t.Value) ||
			contains(p.DeathDate, t.Value)
	}
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

// Filter returns the persons matching the query string, in source order.
func Filter(res *gedcom.ParseResult, query string) ([]gedcom.Person, error) {
	q, err := ParseQuery(query)
	if err != nil {
		return nil, err
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	matched := []gedcom.Person{}
	for i := range res.Persons {
		if q.Matches(&res.Persons[i]) {
			matched = append(matched, res.Persons[i])
		}
	}
	return matched, nil
}
