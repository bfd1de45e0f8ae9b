package gedcom

// types.go - Canonical model type definitions.
// All parser strategies project their source shapes into these types;
// nothing downstream of a normalizer ever sees a source-specific shape.

// Person represents a single individual record.
type Person struct {
	// ID is the canonical pointer ("@I1@"), unique within a ParseResult.
	ID string `json:"id"`

	// Name is the reconstructed display form ("John Doe").
	Name string `json:"name"`

	// FirstName is the given-name component recovered from the
	// slash-delimited NAME convention, if any.
	FirstName string `json:"firstName,omitempty"`

	// LastName is the surname component, if any.
	LastName string `json:"lastName,omitempty"`

	// BirthDate is the raw date string from BIRT/DATE. Empty when absent,
	// never null.
	BirthDate string `json:"birthDate"`

	// DeathDate is the raw date string from DEAT/DATE. Empty when absent.
	DeathDate string `json:"deathDate"`

	// Famc lists the families in which this person is a child, in source
	// order. Zero or one entry in practice, but not enforced.
	Famc []string `json:"famc"`

	// Fams lists the families in which this person is a spouse, in source
	// order.
	Fams []string `json:"fams"`
}

// Family represents a husband/wife/children record.
type Family struct {
	// ID is the canonical pointer ("@F1@"), unique within a ParseResult.
	ID string `json:"id"`

	// Husband is the canonical person pointer, empty when absent.
	Husband string `json:"husband,omitempty"`

	// Wife is the canonical person pointer, empty when absent.
	Wife string `json:"wife,omitempty"`

	// Children lists canonical person pointers in source order.
	Children []string `json:"children"`
}

// Meta carries dataset-level counts and the declared encoding.
type Meta struct {
	// Individuals is the number of person records. Always equals
	// len(ParseResult.Persons).
	Individuals int `json:"individuals"`

	// Families is the number of family records. Always equals
	// len(ParseResult.Families).
	Families int `json:"families"`

	// EncodingTag is the character set declared by the HEAD/CHAR record,
	// "UTF-8" when the source declares none.
	EncodingTag string `json:"encodingTag"`
}

// ParseResult is the sole unit of exchange between parsing and traversal.
type ParseResult struct {
	Meta Meta `json:"meta"`

	// Persons holds every individual record in source order.
	Persons []Person `json:"persons"`

	// Families holds every family record in source order.
	Families []Family `json:"families"`
}

// PersonIndex builds a pointer-to-person lookup over the result.
// The returned map shares the underlying Person values; callers must not
// mutate them.
func (r *ParseResult) PersonIndex() map[string]*Person {
	idx := make(map[string]*Person, len(r.Persons))
	for i := range r.Persons {
		idx[r.Persons[i].ID] = &r.Persons[i]
	}
	return idx
}

// FamilyIndex builds a pointer-to-family lookup over the result.
func (r *ParseResult) FamilyIndex() map[string]*Family {
	idx := make(map[string]*Family, len(r.Families))
	for i := range r.Families {
		idx[r.Families[i].ID] = &r.Families[i]
	}
	return idx
}
