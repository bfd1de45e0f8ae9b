package ged

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/lindenrow/rootline/core/encoding"
	"github.com/lindenrow/rootline/core/errors"
	"github.com/lindenrow/rootline/core/gedcom"
)

// The fallback strategy reads the raw buffer into a pre-resolved object
// graph: individuals and families keyed by bare identifier, with nested
// reference objects carrying bare pointers. The graph normalizer then
// re-canonicalizes every identifier, which is what makes its output
// interchangeable with the primary strategy's.

type objectGraph struct {
	head        *graphHead
	individuals map[string]*graphIndividual
	families    map[string]*graphFamily
	// Maps lose source order, so discovery order is kept separately.
	indiOrder []string
	famOrder  []string
}

type graphHead struct {
	characterSet *graphValue
}

type graphValue struct {
	value string
}

type graphName struct {
	given   string
	surname string
}

type graphEvent struct {
	date *graphValue
}

type graphFamilyRef struct {
	family string // bare family identifier
}

type graphPersonRef struct {
	pointer string // bare person identifier
}

type graphIndividual struct {
	names          []graphName
	birth          *graphEvent
	death          *graphEvent
	familyAsChild  []graphFamilyRef
	familyAsSpouse []graphFamilyRef
}

type graphFamily struct {
	husband  *graphPersonRef
	wife     *graphPersonRef
	children []graphPersonRef
}

// buildGraph walks decoded GEDCOM text leniently. Lines that do not parse
// are skipped rather than rejected; the walk fails only when nothing
// recognizable was recovered at all.
func buildGraph(text string) (*objectGraph, error) {
	g := &objectGraph{
		head:        &graphHead{},
		individuals: map[string]*graphIndividual{},
		families:    map[string]*graphFamily{},
	}

	const (
		ctxNone = iota
		ctxHead
		ctxIndi
		ctxFam
	)
	ctx := ctxNone
	var indi *graphIndividual
	var fam *graphFamily
	sub := "" // open BIRT/DEAT sub-record within an individual

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		level, err := strconv.Atoi(fields[0])
		if err != nil || level < 0 {
			continue
		}

		var xref, tag, value string
		rest := fields[1:]
		if gedcom.IsPointer(rest[0]) {
			xref = gedcom.BareID(rest[0])
			rest = rest[1:]
			if len(rest) == 0 {
				continue
			}
		}
		tag = strings.ToUpper(rest[0])
		value = strings.Join(rest[1:], " ")

		if level == 0 {
			ctx, indi, fam, sub = ctxNone, nil, nil, ""
			switch tag {
			case "HEAD":
				ctx = ctxHead
			case "INDI":
				if xref == "" {
					continue
				}
				indi = &graphIndividual{}
				g.individuals[xref] = indi
				g.indiOrder = append(g.indiOrder, xref)
				ctx = ctxIndi
			case "FAM":
				if xref == "" {
					continue
				}
				fam = &graphFamily{}
				g.families[xref] = fam
				g.famOrder = append(g.famOrder, xref)
				ctx = ctxFam
			}
			continue
		}

		if level == 1 {
			sub = ""
		}

		switch ctx {
		case ctxHead:
			if level == 1 && tag == "CHAR" && value != "" {
				g.head.characterSet = &graphValue{value: value}
			}
		case ctxIndi:
			switch {
			case level == 1 && tag == "NAME":
				_, given, surname := SplitName(value)
				indi.names = append(indi.names, graphName{given: given, surname: surname})
			case level == 1 && tag == "BIRT":
				indi.birth = &graphEvent{}
				sub = "BIRT"
			case level == 1 && tag == "DEAT":
				indi.death = &graphEvent{}
				sub = "DEAT"
			case level == 1 && tag == "FAMC" && value != "":
				indi.familyAsChild = append(indi.familyAsChild,
					graphFamilyRef{family: gedcom.BareID(value)})
			case level == 1 && tag == "FAMS" && value != "":
				indi.familyAsSpouse = append(indi.familyAsSpouse,
					graphFamilyRef{family: gedcom.BareID(value)})
			case level == 2 && tag == "DATE":
				switch sub {
				case "BIRT":
					indi.birth.date = &graphValue{value: value}
				case "DEAT":
					indi.death.date = &graphValue{value: value}
				}
			}
		case ctxFam:
			if level != 1 || value == "" {
				break
			}
			switch tag {
			case "HUSB":
				fam.husband = &graphPersonRef{pointer: gedcom.BareID(value)}
			case "WIFE":
				fam.wife = &graphPersonRef{pointer: gedcom.BareID(value)}
			case "CHIL":
				fam.children = append(fam.children,
					graphPersonRef{pointer: gedcom.BareID(value)})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(g.individuals) == 0 && len(g.families) == 0 {
		return nil, errors.NewParse("object-graph", "no individual or family records found")
	}
	return g, nil
}

// normalizeGraph projects the object graph into the canonical model,
// passing every raw identifier through Canonicalize and synthesizing the
// slash-delimited name form so both strategies share one name collaborator.
func normalizeGraph(g *objectGraph) (*gedcom.ParseResult, error) {
	res := &gedcom.ParseResult{
		Persons:  []gedcom.Person{},
		Families: []gedcom.Family{},
	}

	for _, key := range g.indiOrder {
		ind := g.individuals[key]
		p := gedcom.Person{
			ID:   gedcom.Canonicalize(key),
			Famc: []string{},
			Fams: []string{},
		}
		if len(ind.names) > 0 {
			n := ind.names[0]
			p.Name, p.FirstName, p.LastName = SplitName(n.given + " /" + n.surname + "/")
		}
		if ind.birth != nil && ind.birth.date != nil {
			p.BirthDate = ind.birth.date.value
		}
		if ind.death != nil && ind.death.date != nil {
			p.DeathDate = ind.death.date.value
		}
		for _, r := range ind.familyAsChild {
			if r.family != "" {
				p.Famc = append(p.Famc, gedcom.Canonicalize(r.family))
			}
		}
		for _, r := range ind.familyAsSpouse {
			if r.family != "" {
				p.Fams = append(p.Fams, gedcom.Canonicalize(r.family))
			}
		}
		res.Persons = append(res.Persons, p)
	}

	for _, key := range g.famOrder {
		src := g.families[key]
		f := gedcom.Family{
			ID:       gedcom.Canonicalize(key),
			Children: []string{},
		}
		if src.husband != nil {
			f.Husband = gedcom.Canonicalize(src.husband.pointer)
		}
		if src.wife != nil {
			f.Wife = gedcom.Canonicalize(src.wife.pointer)
		}
		for _, c := range src.children {
			if c.pointer != "" {
				f.Children = append(f.Children, gedcom.Canonicalize(c.pointer))
			}
		}
		res.Families = append(res.Families, f)
	}

	charset := defaultEncodingTag
	if g.head != nil && g.head.characterSet != nil && g.head.characterSet.value != "" {
		charset = g.head.characterSet.value
	}
	res.Meta = gedcom.Meta{
		Individuals: len(res.Persons),
		Families:    len(res.Families),
		EncodingTag: charset,
	}
	return res, nil
}

// parseGraphStrategy is the fallback strategy. It decodes the original
// raw buffer itself rather than reusing the orchestrator's decode.
func parseGraphStrategy(data []byte) (*gedcom.ParseResult, error) {
	text, err := encoding.Decode(data)
	if err != nil {
		return nil, err
	}
	g, err := buildGraph(text)
	if err != nil {
		return nil, err
	}
	return normalizeGraph(g)
}
