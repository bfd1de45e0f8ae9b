// Package ged parses GEDCOM 5.5 line-tagged text into the canonical
// model.
//
// Two strategies handle the same wire format. The primary strategy builds
// a typed record tree under strict line rules and projects it into the
// model; the fallback strategy re-reads the raw buffer leniently into a
// pre-resolved object graph and projects that instead. Parse orchestrates
// the two: strict first, lenient on any strict failure, a combined error
// when both fail.
package ged

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/lindenrow/rootline/core/errors"
	"github.com/lindenrow/rootline/core/gedcom"
)

// Node is one record-tree node. Top-level entity records carry an XrefID
// ("@I1@" on "0 @I1@ INDI"); reference children carry a Pointer (the
// "@F1@" of "1 FAMC @F1@"); everything else is tag plus raw value.
type Node struct {
	Tag      string
	Value    string
	XrefID   string
	Pointer  string
	Children []*Node
}

// line is one parsed GEDCOM line: LEVEL [XREF] TAG [VALUE].
type line struct {
	level int
	xref  string
	tag   string
	value string
}

// parseLine splits a GEDCOM line under strict rules. The value keeps its
// internal spacing; only the level, optional cross-reference, and tag are
// tokenized.
func parseLine(num int, raw string) (line, error) {
	var ln line
	trimmed := strings.TrimSpace(raw)

	rest := trimmed
	sp := strings.SplitN(rest, " ", 2)
	level, err := strconv.Atoi(sp[0])
	if err != nil || level < 0 {
		return ln, fmt.Errorf("line %d: invalid level %q", num, sp[0])
	}
	if len(sp) < 2 {
		return ln, fmt.Errorf("line %d: missing tag", num)
	}
	rest = strings.TrimLeft(sp[1], " ")

	if strings.HasPrefix(rest, "@") {
		sp = strings.SplitN(rest, " ", 2)
		if !gedcom.IsPointer(sp[0]) {
			return ln, fmt.Errorf("line %d: malformed cross-reference %q", num, sp[0])
		}
		ln.xref = sp[0]
		if len(sp) < 2 {
			return ln, fmt.Errorf("line %d: missing tag after cross-reference", num)
		}
		rest = strings.TrimLeft(sp[1], " ")
	}

	sp = strings.SplitN(rest, " ", 2)
	if sp[0] == "" {
		return ln, fmt.Errorf("line %d: missing tag", num)
	}
	ln.level = level
	ln.tag = strings.ToUpper(sp[0])
	if len(sp) == 2 {
		ln.value = sp[1]
	}
	return ln, nil
}

// buildTree assembles decoded GEDCOM text into a record tree. The
// synthetic root's children are the level-0 records. Strict structure
// rules apply: every non-blank line must parse, and a line may nest at
// most one level deeper than its predecessor.
func buildTree(text string) (*Node, error) {
	root := &Node{Tag: "ROOT"}
	stack := []*Node{root} // stack[L+1] is the open node at level L

	num := 0
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		num++
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		ln, err := parseLine(num, scanner.Text())
		if err != nil {
			return nil, err
		}
		if ln.level >= len(stack) {
			return nil, fmt.Errorf("line %d: level %d skips a level", num, ln.level)
		}

		node := &Node{Tag: ln.tag, Value: ln.value}
		if ln.level == 0 {
			node.XrefID = ln.xref
		}
		if gedcom.IsPointer(ln.value) {
			node.Pointer = ln.value
		}
		parent := stack[ln.level]
		parent.Children = append(parent.Children, node)
		stack = append(stack[:ln.level+1], node)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", num, err)
	}
	if len(root.Children) == 0 {
		return nil, fmt.Errorf("no records found")
	}
	return root, nil
}

// parseTreeStrategy is the primary strategy: strict record tree plus tree
// normalization over already-decoded text.
func parseTreeStrategy(text string) (*gedcom.ParseResult, error) {
	root, err := buildTree(text)
	if err != nil {
		return nil, &errors.ParseError{Strategy: "record-tree", Message: err.Error(), Err: err}
	}
	return normalizeTree(root)
}
