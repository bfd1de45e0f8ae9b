package ged

import (
	"fmt"
	"strings"

	"github.com/lindenrow/rootline/core/gedcom"
)

// Emit serializes a ParseResult back to GEDCOM text form: a HEAD envelope
// carrying the encoding tag, one INDI record per person, one FAM record
// per family, and a TRLR terminator. Records are emitted in model order.
func Emit(res *gedcom.ParseResult) (string, error) {
	if err := res.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("0 HEAD\n")
	b.WriteString("1 GEDC\n")
	b.WriteString("2 VERS 5.5\n")
	tag := res.Meta.EncodingTag
	if tag == "" {
		tag = defaultEncodingTag
	}
	fmt.Fprintf(&b, "1 CHAR %s\n", tag)

	for i := range res.Persons {
		emitPerson(&b, &res.Persons[i])
	}
	for i := range res.Families {
		emitFamily(&b, &res.Families[i])
	}

	b.WriteString("0 TRLR\n")
	return b.String(), nil
}

func emitPerson(b *strings.Builder, p *gedcom.Person) {
	fmt.Fprintf(b, "0 %s INDI\n", p.ID)
	switch {
	case p.FirstName != "" || p.LastName != "":
		fmt.Fprintf(b, "1 NAME %s\n", JoinName(p.FirstName, p.LastName))
	case p.Name != "":
		fmt.Fprintf(b, "1 NAME %s\n", p.Name)
	}
	if p.BirthDate != "" {
		b.WriteString("1 BIRT\n")
		fmt.Fprintf(b, "2 DATE %s\n", p.BirthDate)
	}
	if p.DeathDate != "" {
		b.WriteString("1 DEAT\n")
		fmt.Fprintf(b, "2 DATE %s\n", p.DeathDate)
	}
	for _, ref := range p.Famc {
		fmt.Fprintf(b, "1 FAMC %s\n", ref)
	}
	for _, ref := range p.Fams {
		fmt.Fprintf(b, "1 FAMS %s\n", ref)
	}
}

func emitFamily(b *strings.Builder, f *gedcom.Family) {
	fmt.Fprintf(b, "0 %s FAM\n", f.ID)
	if f.Husband != "" {
		fmt.Fprintf(b, "1 HUSB %s\n", f.Husband)
	}
	if f.Wife != "" {
		fmt.Fprintf(b, "1 WIFE %s\n", f.Wife)
	}
	for _, c := range f.Children {
		fmt.Fprintf(b, "1 CHIL %s\n", c)
	}
}
