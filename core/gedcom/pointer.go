package gedcom

import "strings"

// Canonicalize converts a raw identifier into the canonical pointer form.
// An identifier that already starts and ends with "@" is returned
// unchanged, anything else is wrapped as "@<id>@", and the empty string
// stays empty. The function is idempotent:
//
//	Canonicalize("I5")   == "@I5@"
//	Canonicalize("@I5@") == "@I5@"
//
// Both normalizers and the traversal engine route every identifier through
// this function so that graph joins always compare identical strings.
func Canonicalize(id string) string {
	if id == "" {
		return ""
	}
	if strings.HasPrefix(id, "@") && strings.HasSuffix(id, "@") && len(id) > 1 {
		return id
	}
	return "@" + id + "@"
}

// BareID strips the canonical "@" wrapping from a pointer. The inverse of
// Canonicalize for well-formed pointers; raw identifiers pass through
// unchanged.
func BareID(pointer string) string {
	return strings.Trim(pointer, "@")
}

// IsPointer reports whether s is shaped like a canonical pointer.
func IsPointer(s string) bool {
	return len(s) > 2 && strings.HasPrefix(s, "@") && strings.HasSuffix(s, "@")
}
