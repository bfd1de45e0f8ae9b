// Package gedcom provides the canonical in-memory model for genealogical
// datasets parsed from GEDCOM sources.
//
// All parser strategies and the lineage traversal engine exchange data
// exclusively through these types:
//
//   - ParseResult: Top-level container for one parsed dataset
//   - Person: A single individual record
//   - Family: A husband/wife/children triple
//   - Meta: Record counts and the declared character-set tag
//
// # Canonical Pointers
//
// Every person and family is named by a canonical cross-reference pointer
// of the form "@token@". Canonicalize converts raw identifiers ("I5") into
// this form and is idempotent; graph joins between persons and families
// depend on every call site using the same representation, so all
// identifier handling must route through it.
//
// # Immutability
//
// A ParseResult is built once by a normalizer and never mutated afterward.
// Readers (traversal, search, emission) treat it as read-only, which makes
// concurrent use of a shared ParseResult safe without synchronization.
package gedcom
