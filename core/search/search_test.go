package search

import (
	"testing"

	"github.com/lindenrow/rootline/core/gedcom"
)

func sampleResult() *gedcom.ParseResult {
	res := &gedcom.ParseResult{
		Persons: []gedcom.Person{
			{ID: "@I1@", Name: "John Doe", FirstName: "John", LastName: "Doe",
				BirthDate: "1 JAN 1900", DeathDate: "5 MAY 1980",
				Famc: []string{}, Fams: []string{}},
			{ID: "@I2@", Name: "Jane Smith", FirstName: "Jane", LastName: "Smith",
				BirthDate: "2 FEB 1902",
				Famc: []string{}, Fams: []string{}},
			{ID: "@I3@", Name: "John Smith", FirstName: "John", LastName: "Smith",
				Famc: []string{}, Fams: []string{}},
		},
	}
	res.Meta = gedcom.Meta{Individuals: 3}
	return res
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery("surname:doe john")
	if err != nil {
		t.Fatalf("ParseQuery() error: %v", err)
	}
	if len(q.Terms) != 2 {
		t.Fatalf("terms = %+v, want 2", q.Terms)
	}
	if q.Terms[0].Field != FieldSurname || q.Terms[0].Value != "doe" {
		t.Errorf("term 0 = %+v", q.Terms[0])
	}
	if q.Terms[1].Field != "" || q.Terms[1].Value != "john" {
		t.Errorf("term 1 = %+v", q.Terms[1])
	}
}

func TestParseQueryQuoted(t *testing.T) {
	q, err := ParseQuery(`name:"van der Berg" id:I5`)
	if err != nil {
		t.Fatalf("ParseQuery() error: %v", err)
	}
	if q.Terms[0].Value != "van der berg" {
		t.Errorf("quoted value = %q", q.Terms[0].Value)
	}
	if q.Terms[1].Field != FieldID || q.Terms[1].Value != "i5" {
		t.Errorf("term 1 = %+v", q.Terms[1])
	}
}

func TestParseQueryErrors(t *testing.T) {
	for _, bad := range []string{"", "   ", `""`, "bogusfield:x"} {
		if _, err := ParseQuery(bad); err == nil {
			t.Errorf("ParseQuery(%q) should fail", bad)
		}
	}
}

func TestFilterByField(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"surname scope", "surname:smith", []string{"@I2@", "@I3@"}},
		{"given scope", "given:john", []string{"@I1@", "@I3@"}},
		{"conjunction", "given:john surname:smith", []string{"@I3@"}},
		{"birth year", "birth:1902", []string{"@I2@"}},
		{"death year", "death:1980", []string{"@I1@"}},
		{"id scope", "id:i1", []string{"@I1@"}},
		{"unscoped matches any field", "1900", []string{"@I1@"}},
		{"case insensitive", "SURNAME:DOE", []string{"@I1@"}},
		{"no matches", "surname:nobody", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(sampleResult(), tt.query)
			if err != nil {
				t.Fatalf("Filter(%q) error: %v", tt.query, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Filter(%q) returned %d persons, want %d", tt.query, len(got), len(tt.want))
			}
			for i, p := range got {
				if p.ID != tt.want[i] {
					t.Errorf("Filter(%q)[%d] = %s, want %s", tt.query, i, p.ID, tt.want[i])
				}
			}
		})
	}
}

func TestFilterKeepsSourceOrder(t *testing.T) {
	got, err := Filter(sampleResult(), "john")
	if err != nil {
		t.Fatalf("Filter() error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "@I1@" || got[1].ID != "@I3@" {
		t.Errorf("order = %v", got)
	}
}

func TestFilterInvalidResult(t *testing.T) {
	res := sampleResult()
	res.Meta.Individuals = 0
	if _, err := Filter(res, "john"); err == nil {
		t.Fatal("Filter() should reject a result that fails validation")
	}
}

func TestMatchesUnscopedAcrossFields(t *testing.T) {
	q, err := ParseQuery("doe")
	if err != nil {
		t.Fatalf("ParseQuery() error: %v", err)
	}
	p := &gedcom.Person{ID: "@I1@", LastName: "Doe"}
	if !q.Matches(p) {
		t.Error("unscoped term should match the surname field")
	}
}
