package ged

import (
	"github.com/lindenrow/rootline/core/errors"
	"github.com/lindenrow/rootline/core/gedcom"
)

// defaultEncodingTag is reported when the source declares no HEAD/CHAR
// character set.
const defaultEncodingTag = "UTF-8"

// normalizeTree projects a record tree into the canonical model.
//
// Top-level INDI and FAM records with a cross-reference id become Person
// and Family entries in source order; the cross-reference is already in
// canonical pointer form and is used as-is. Every other top-level tag is
// ignored, except HEAD, which supplies the character-set tag.
func normalizeTree(root *Node) (*gedcom.ParseResult, error) {
	if root == nil || len(root.Children) == 0 {
		return nil, errors.NewParse("record-tree", "tree has no records")
	}

	res := &gedcom.ParseResult{
		Persons:  []gedcom.Person{},
		Families: []gedcom.Family{},
	}
	charset := defaultEncodingTag

	for _, rec := range root.Children {
		switch rec.Tag {
		case "HEAD":
			for _, c := range rec.Children {
				if c.Tag == "CHAR" && c.Value != "" {
					charset = c.Value
				}
			}
		case "INDI":
			if rec.XrefID == "" {
				continue
			}
			res.Persons = append(res.Persons, normalizePerson(rec))
		case "FAM":
			if rec.XrefID == "" {
				continue
			}
			res.Families = append(res.Families, normalizeFamily(rec))
		}
	}

	res.Meta = gedcom.Meta{
		Individuals: len(res.Persons),
		Families:    len(res.Families),
		EncodingTag: charset,
	}
	return res, nil
}

func normalizePerson(rec *Node) gedcom.Person {
	p := gedcom.Person{
		ID:   rec.XrefID,
		Famc: []string{},
		Fams: []string{},
	}
	for _, c := range rec.Children {
		switch c.Tag {
		case "NAME":
			p.Name, p.FirstName, p.LastName = SplitName(c.Value)
		case "BIRT":
			p.BirthDate = childDate(c)
		case "DEAT":
			p.DeathDate = childDate(c)
		case "FAMC":
			if c.Pointer != "" {
				p.Famc = append(p.Famc, c.Pointer)
			}
		case "FAMS":
			if c.Pointer != "" {
				p.Fams = append(p.Fams, c.Pointer)
			}
		}
	}
	return p
}

func normalizeFamily(rec *Node) gedcom.Family {
	f := gedcom.Family{
		ID:       rec.XrefID,
		Children: []string{},
	}
	for _, c := range rec.Children {
		switch c.Tag {
		case "HUSB":
			f.Husband = pointerOrValue(c)
		case "WIFE":
			f.Wife = pointerOrValue(c)
		case "CHIL":
			if ref := pointerOrValue(c); ref != "" {
				f.Children = append(f.Children, ref)
			}
		}
	}
	return f
}

// childDate returns the value of a nested DATE child, empty when absent.
func childDate(n *Node) string {
	for _, c := range n.Children {
		if c.Tag == "DATE" {
			return c.Value
		}
	}
	return ""
}

// pointerOrValue prefers the reference pointer, falling back to the raw
// scalar value.
func pointerOrValue(n *Node) string {
	if n.Pointer != "" {
		return n.Pointer
	}
	return n.Value
}
