package ged

import (
	"regexp"
	"strings"
)

// nameRegex matches the slash-delimited GEDCOM NAME convention:
// "Given /Surname/", with the surname between the slashes.
var nameRegex = regexp.MustCompile(`^([^/]*)/([^/]*)/`)

// SplitName recovers the given-name and surname components from a raw
// GEDCOM NAME value and rebuilds the display form. A value without the
// slash convention is returned whole as the display name with no
// components. Both normalizer strategies route names through here so the
// two produce identical fields for the same logical name.
func SplitName(raw string) (name, first, last string) {
	raw = strings.TrimSpace(raw)
	m := nameRegex.FindStringSubmatch(raw)
	if m == nil {
		return raw, "", ""
	}
	first = strings.TrimSpace(m[1])
	last = strings.TrimSpace(m[2])
	switch {
	case first != "" && last != "":
		name = first + " " + last
	case first != "":
		name = first
	default:
		name = last
	}
	return name, first, last
}

// JoinName rebuilds the slash-delimited raw form from components, the
// inverse of SplitName for emission.
func JoinName(first, last string) string {
	return strings.TrimSpace(first) + " /" + strings.TrimSpace(last) + "/"
}
