// Package lineage computes bounded-depth ancestor and descendant graphs
// over a parsed GEDCOM dataset.
//
// Both walks are breadth-first over the parent/child relations implied by
// family records, with a traversal-global visited set: each person is
// discovered at most once, at the shallowest generation a path reaches
// it, so the output graph stays free of duplicates even under pedigree
// collapse. Traversal never mutates the ParseResult it reads; every call
// builds its own indexes, so concurrent calls may share one result.
package lineage

import (
	"github.com/lindenrow/rootline/core/errors"
	"github.com/lindenrow/rootline/core/gedcom"
)

// Relation labels the parent side of an edge.
type Relation string

// Relation values.
const (
	Father Relation = "father"
	Mother Relation = "mother"
)

// MaxGenerations is the upper bound surfaces clamp generation counts to.
const MaxGenerations = 15

// Edge is one directed parent-to-child link discovered by a walk.
type Edge struct {
	Parent   string   `json:"parent"`
	Child    string   `json:"child"`
	Relation Relation `json:"relation"`
}

// Result is a generation-partitioned lineage graph.
type Result struct {
	// Root is the canonical identifier the walk started from.
	Root string `json:"root"`

	// Generations holds one slice per BFS depth, in discovery order.
	// Generation 0 is always exactly [Root]; a depth that discovered
	// nothing is never appended.
	Generations [][]string `json:"generations"`

	// Nodes holds every visited person's record, each exactly once.
	Nodes []gedcom.Person `json:"nodes"`

	// Edges holds the discovered links in discovery order, one per
	// newly discovered person.
	Edges []Edge `json:"edges"`
}

// Ancestors walks the parent direction from rootID for at most maxGen
// generations. rootID may be supplied raw ("I5") or canonical ("@I5@").
func Ancestors(res *gedcom.ParseResult, rootID string, maxGen int) (*Result, error) {
	return traverse(res, rootID, maxGen, ancestorStep)
}

// Descendants walks the child direction from rootID for at most maxGen
// generations.
func Descendants(res *gedcom.ParseResult, rootID string, maxGen int) (*Result, error) {
	return traverse(res, rootID, maxGen, descendantStep)
}

// walk carries the shared traversal state handed to a step function.
type walk struct {
	persons  map[string]*gedcom.Person
	families map[string]*gedcom.Family
	visited  map[string]bool
	next     []string
	result   *Result
}

// discover admits id to the next generation if it is unvisited and has a
// person record, attributing the edge that led to it. Later paths to an
// already-visited person are dropped, not recorded as extra edges.
func (w *walk) discover(id, parent, child string, rel Relation) {
	if id == "" || w.visited[id] {
		return
	}
	p, ok := w.persons[id]
	if !ok {
		return
	}
	w.visited[id] = true
	w.next = append(w.next, id)
	w.result.Nodes = append(w.result.Nodes, *p)
	w.result.Edges = append(w.result.Edges, Edge{Parent: parent, Child: child, Relation: rel})
}

// ancestorStep discovers the parents of one person via its famc links.
func ancestorStep(w *walk, personID string) {
	for _, famID := range w.persons[personID].Famc {
		fam, ok := w.families[famID]
		if !ok {
			continue
		}
		w.discover(fam.Husband, fam.Husband, personID, Father)
		w.discover(fam.Wife, fam.Wife, personID, Mother)
	}
}

// descendantStep discovers the children of one person via its fams links.
// The edge relation is father only when the traversing person is the
// family's recorded husband; every other traversing person, including an
// inconsistently recorded one, yields mother.
func descendantStep(w *walk, personID string) {
	for _, famID := range w.persons[personID].Fams {
		fam, ok := w.families[famID]
		if !ok {
			continue
		}
		rel := Mother
		if fam.Husband == personID {
			rel = Father
		}
		for _, childID := range fam.Children {
			w.discover(childID, personID, childID, rel)
		}
	}
}

func traverse(res *gedcom.ParseResult, rootID string, maxGen int, step func(*walk, string)) (*Result, error) {
	if rootID == "" {
		return nil, errors.NewValidation("rootId", "Root Person ID is required")
	}
	if maxGen < 1 {
		return nil, errors.NewValidation("maxGenerations", "must be at least 1")
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}

	root := gedcom.Canonicalize(rootID)
	w := &walk{
		persons:  res.PersonIndex(),
		families: res.FamilyIndex(),
		visited:  map[string]bool{},
	}
	rootPerson, ok := w.persons[root]
	if !ok {
		// Report the id as the caller spelled it, not canonicalized.
		return nil, errors.NewNotFound("person", rootID)
	}

	w.result = &Result{
		Root:        root,
		Generations: [][]string{},
		Nodes:       []gedcom.Person{*rootPerson},
		Edges:       []Edge{},
	}
	w.visited[root] = true

	current := []string{root}
	for gen := 0; len(current) > 0; gen++ {
		w.result.Generations = append(w.result.Generations, current)
		if gen+1 >= maxGen {
			break
		}
		w.next = nil
		for _, id := range current {
			step(w, id)
		}
		current = w.next
	}
	return w.result, nil
}
