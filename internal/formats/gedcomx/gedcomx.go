// Package gedcomx imports GEDCOM X XML documents into the canonical
// model.
//
// GEDCOM X carries persons and relationships instead of family records:
// Couple relationships become Family husband/wife pairs and ParentChild
// relationships place children, creating a single-parent family when no
// couple exists for the parent. The projection reuses the same canonical
// pointer convention as the line-tagged parser, so traversal works
// identically on either import path.
package gedcomx

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/lindenrow/rootline/core/errors"
	"github.com/lindenrow/rootline/core/gedcom"
	"github.com/lindenrow/rootline/internal/formats"
)

// Parse converts a GEDCOM X XML buffer into the canonical model.
func Parse(data []byte) (*gedcom.ParseResult, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &errors.ParseError{Strategy: "gedcomx", Message: err.Error(), Err: err}
	}

	b := newBuilder()
	for _, node := range xmlquery.Find(doc, "//*[local-name()='person']") {
		b.addPerson(node)
	}
	if len(b.persons) == 0 {
		return nil, errors.NewParse("gedcomx", "document has no person elements")
	}
	for _, node := range xmlquery.Find(doc, "//*[local-name()='relationship']") {
		b.addRelationship(node)
	}
	return b.result(), nil
}

type builder struct {
	persons  []*gedcom.Person
	families []*gedcom.Family
	byID     map[string]*gedcom.Person
	genders  map[string]string // canonical person id -> "male"/"female"/""
}

func newBuilder() *builder {
	return &builder{
		byID:    map[string]*gedcom.Person{},
		genders: map[string]string{},
	}
}

func (b *builder) addPerson(node *xmlquery.Node) {
	id := node.SelectAttr("id")
	if id == "" {
		return
	}
	p := &gedcom.Person{
		ID:   gedcom.Canonicalize(id),
		Famc: []string{},
		Fams: []string{},
	}

	if full := xmlquery.FindOne(node, ".//*[local-name()='fullText']"); full != nil {
		p.Name = strings.TrimSpace(full.InnerText())
	}
	for _, part := range xmlquery.Find(node, ".//*[local-name()='part']") {
		value := part.SelectAttr("value")
		switch {
		case strings.HasSuffix(part.SelectAttr("type"), "Given"):
			p.FirstName = value
		case strings.HasSuffix(part.SelectAttr("type"), "Surname"):
			p.LastName = value
		}
	}
	if p.Name == "" {
		p.Name = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}

	for _, fact := range xmlquery.Find(node, ".//*[local-name()='fact']") {
		date := ""
		if d := xmlquery.FindOne(fact, ".//*[local-name()='original']"); d != nil {
			date = strings.TrimSpace(d.InnerText())
		}
		switch {
		case strings.HasSuffix(fact.SelectAttr("type"), "Birth"):
			p.BirthDate = date
		case strings.HasSuffix(fact.SelectAttr("type"), "Death"):
			p.DeathDate = date
		}
	}

	if g := xmlquery.FindOne(node, ".//*[local-name()='gender']"); g != nil {
		switch {
		case strings.HasSuffix(g.SelectAttr("type"), "Male"):
			b.genders[p.ID] = "male"
		case strings.HasSuffix(g.SelectAttr("type"), "Female"):
			b.genders[p.ID] = "female"
		}
	}

	b.persons = append(b.persons, p)
	b.byID[p.ID] = p
}

// resourceID resolves a person1/person2 resource reference ("#p1") to a
// canonical pointer.
func resourceID(node *xmlquery.Node, name string) string {
	ref := xmlquery.FindOne(node, ".//*[local-name()='"+name+"']")
	if ref == nil {
		return ""
	}
	res := strings.TrimPrefix(ref.SelectAttr("resource"), "#")
	if res == "" {
		return ""
	}
	return gedcom.Canonicalize(res)
}

func (b *builder) addRelationship(node *xmlquery.Node) {
	p1 := resourceID(node, "person1")
	p2 := resourceID(node, "person2")
	if p1 == "" || p2 == "" {
		return
	}
	switch {
	case strings.HasSuffix(node.SelectAttr("type"), "Couple"):
		b.addCouple(p1, p2)
	case strings.HasSuffix(node.SelectAttr("type"), "ParentChild"):
		b.addParentChild(p1, p2)
	}
}

func (b *builder) newFamily() *gedcom.Family {
	f := &gedcom.Family{
		ID:       gedcom.Canonicalize("F" + strconv.Itoa(len(b.families)+1)),
		Children: []string{},
	}
	b.families = append(b.families, f)
	return f
}

func (b *builder) addCouple(p1, p2 string) {
	// One family per couple; re-stated couples are ignored.
	for _, f := range b.families {
		if sameCouple(f, p1, p2) {
			return
		}
	}
	f := b.newFamily()
	husband, wife := p1, p2
	if b.genders[p1] == "female" || b.genders[p2] == "male" {
		husband, wife = p2, p1
	}
	f.Husband = husband
	f.Wife = wife
	b.noteFams(husband, f.ID)
	b.noteFams(wife, f.ID)
}

func (b *builder) addParentChild(parent, child string) {
	if b.byID[parent] == nil || b.byID[child] == nil {
		return
	}
	// Prefer an existing family where the parent is a spouse.
	var target *gedcom.Family
	for _, f := range b.families {
		if f.Husband == parent || f.Wife == parent {
			target = f
			break
		}
	}
	if target == nil {
		target = b.newFamily()
		if b.genders[parent] == "female" {
			target.Wife = parent
		} else {
			target.Husband = parent
		}
		b.noteFams(parent, target.ID)
	}
	for _, existing := range target.Children {
		if existing == child {
			return
		}
	}
	target.Children = append(target.Children, child)
	b.noteFamc(child, target.ID)
}

func (b *builder) noteFams(personID, familyID string) {
	p := b.byID[personID]
	if p == nil {
		return
	}
	for _, id := range p.Fams {
		if id == familyID {
			return
		}
	}
	p.Fams = append(p.Fams, familyID)
}

func (b *builder) noteFamc(personID, familyID string) {
	p := b.byID[personID]
	if p == nil {
		return
	}
	for _, id := range p.Famc {
		if id == familyID {
			return
		}
	}
	p.Famc = append(p.Famc, familyID)
}

func (b *builder) result() *gedcom.ParseResult {
	res := &gedcom.ParseResult{
		Persons:  make([]gedcom.Person, 0, len(b.persons)),
		Families: make([]gedcom.Family, 0, len(b.families)),
	}
	for _, p := range b.persons {
		res.Persons = append(res.Persons, *p)
	}
	for _, f := range b.families {
		res.Families = append(res.Families, *f)
	}
	res.Meta = gedcom.Meta{
		Individuals: len(res.Persons),
		Families:    len(res.Families),
		EncodingTag: "UTF-8",
	}
	return res
}

// sameCouple reports whether the family records exactly this couple, in
// either order.
func sameCouple(f *gedcom.Family, p1, p2 string) bool {
	return (f.Husband == p1 && f.Wife == p2) || (f.Husband == p2 && f.Wife == p1)
}

// Handler exposes the GEDCOM X importer through the format registry.
type Handler struct{}

// Name implements formats.Handler.
func (Handler) Name() string { return "gedcomx" }

// Detect reports whether the buffer looks like a GEDCOM X XML document.
func (Handler) Detect(data []byte) bool {
	head := strings.TrimSpace(string(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})))
	return strings.HasPrefix(head, "<") && strings.Contains(head, "gedcomx")
}

// Parse implements formats.Handler.
func (Handler) Parse(data []byte) (*gedcom.ParseResult, error) {
	return Parse(data)
}

func init() {
	formats.Register(Handler{})
}
