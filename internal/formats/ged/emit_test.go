package ged

import (
	"strings"
	"testing"

	"github.com/lindenrow/rootline/core/gedcom"
)

func TestEmit(t *testing.T) {
	res, err := Parse([]byte(sampleGED))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	text, err := Emit(res)
	if err != nil {
		t.Fatalf("Emit() error: %v", err)
	}

	for _, want := range []string{
		"0 HEAD\n",
		"1 CHAR UTF-8\n",
		"0 @I1@ INDI\n",
		"1 NAME John /Doe/\n",
		"1 BIRT\n2 DATE 1 JAN 1900\n",
		"1 DEAT\n2 DATE 5 MAY 1980\n",
		"1 FAMS @F1@\n",
		"0 @F1@ FAM\n",
		"1 HUSB @I1@\n",
		"1 WIFE @I2@\n",
		"1 CHIL @I3@\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Emit() output missing %q", want)
		}
	}
	if !strings.HasSuffix(text, "0 TRLR\n") {
		t.Error("Emit() output should end with the trailer")
	}
}

// Emission output must parse back to an equivalent model.
func TestEmitRoundTrip(t *testing.T) {
	first, err := Parse([]byte(sampleGED))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	text, err := Emit(first)
	if err != nil {
		t.Fatalf("Emit() error: %v", err)
	}
	second, err := Parse([]byte(text))
	if err != nil {
		t.Fatalf("reparse error: %v", err)
	}

	if second.Meta != first.Meta {
		t.Errorf("meta changed: %+v vs %+v", first.Meta, second.Meta)
	}
	for i := range first.Persons {
		a, b := first.Persons[i], second.Persons[i]
		if a.ID != b.ID || a.Name != b.Name || a.BirthDate != b.BirthDate ||
			a.DeathDate != b.DeathDate {
			t.Errorf("person %d changed: %+v vs %+v", i, a, b)
		}
	}
	for i := range first.Families {
		a, b := first.Families[i], second.Families[i]
		if a.ID != b.ID || a.Husband != b.Husband || a.Wife != b.Wife {
			t.Errorf("family %d changed: %+v vs %+v", i, a, b)
		}
	}
}

func TestEmitDisplayNameWithoutComponents(t *testing.T) {
	res := &gedcom.ParseResult{
		Meta: gedcom.Meta{Individuals: 1, EncodingTag: "UTF-8"},
		Persons: []gedcom.Person{
			{ID: "@I1@", Name: "Cher", Famc: []string{}, Fams: []string{}},
		},
		Families: []gedcom.Family{},
	}
	text, err := Emit(res)
	if err != nil {
		t.Fatalf("Emit() error: %v", err)
	}
	if !strings.Contains(text, "1 NAME Cher\n") {
		t.Errorf("Emit() should fall back to the display name:\n%s", text)
	}
}

func TestEmitRejectsInvalidResult(t *testing.T) {
	res := &gedcom.ParseResult{
		Meta:    gedcom.Meta{Individuals: 3}, // disagrees with zero records
		Persons: []gedcom.Person{},
	}
	if _, err := Emit(res); err == nil {
		t.Fatal("Emit() should reject a result that fails validation")
	}
}
