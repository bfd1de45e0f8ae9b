package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lindenrow/rootline/core/errors"
	"github.com/lindenrow/rootline/core/gedcom"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleResult() *gedcom.ParseResult {
	res := &gedcom.ParseResult{
		Persons: []gedcom.Person{
			{ID: "@I1@", Name: "John Doe", FirstName: "John", LastName: "Doe",
				BirthDate: "1 JAN 1900", Famc: []string{}, Fams: []string{"@F1@"}},
			{ID: "@I2@", Name: "Jimmy Doe", Famc: []string{"@F1@"}, Fams: []string{}},
		},
		Families: []gedcom.Family{
			{ID: "@F1@", Husband: "@I1@", Children: []string{"@I2@"}},
		},
	}
	res.Meta = gedcom.Meta{Individuals: 2, Families: 1, EncodingTag: "UTF-8"}
	return res
}

func TestSaveAndGet(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()
	source := []byte("0 HEAD\n0 TRLR\n")

	ds, err := st.Save(ctx, "family-tree", source, sampleResult())
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if ds.ID == "" {
		t.Fatal("Save() returned no dataset id")
	}
	if ds.Name != "family-tree" || ds.Individuals != 2 || ds.Families != 1 {
		t.Errorf("dataset = %+v", ds)
	}
	if len(ds.SourceHash) != 64 {
		t.Errorf("source hash = %q, want 64 hex chars", ds.SourceHash)
	}

	loaded, res, err := st.Get(ctx, ds.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if loaded.SourceHash != ds.SourceHash {
		t.Errorf("hash changed across load: %q vs %q", ds.SourceHash, loaded.SourceHash)
	}
	if err := res.Validate(); err != nil {
		t.Fatalf("loaded result invalid: %v", err)
	}
	if res.Meta.EncodingTag != "UTF-8" {
		t.Errorf("encoding tag = %q", res.Meta.EncodingTag)
	}

	p := res.Persons[0]
	if p.ID != "@I1@" || p.Name != "John Doe" || p.BirthDate != "1 JAN 1900" {
		t.Errorf("person 0 = %+v", p)
	}
	if len(p.Fams) != 1 || p.Fams[0] != "@F1@" {
		t.Errorf("person 0 fams = %v", p.Fams)
	}
	if p.Famc == nil || len(p.Famc) != 0 {
		t.Errorf("person 0 famc = %#v, want empty non-nil", p.Famc)
	}

	f := res.Families[0]
	if f.ID != "@F1@" || f.Husband != "@I1@" || len(f.Children) != 1 {
		t.Errorf("family 0 = %+v", f)
	}
}

func TestSaveSameSourceSameHash(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()
	source := []byte("0 HEAD\n0 TRLR\n")

	a, err := st.Save(ctx, "a", source, sampleResult())
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	b, err := st.Save(ctx, "b", source, sampleResult())
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if a.ID == b.ID {
		t.Error("datasets should get distinct ids")
	}
	if a.SourceHash != b.SourceHash {
		t.Error("identical sources should hash identically")
	}
}

func TestSaveInvalidResult(t *testing.T) {
	st := openTemp(t)
	res := sampleResult()
	res.Meta.Individuals = 9
	if _, err := st.Save(context.Background(), "bad", nil, res); err == nil {
		t.Fatal("Save() should reject a result that fails validation")
	}
}

func TestGetMissing(t *testing.T) {
	st := openTemp(t)
	_, _, err := st.Get(context.Background(), "no-such-id")
	if err == nil {
		t.Fatal("Get() should fail for an unknown dataset")
	}
	var notFound *errors.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error type = %T, want *errors.NotFoundError", err)
	}
}

func TestList(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()

	datasets, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(datasets) != 0 {
		t.Fatalf("fresh store has %d datasets", len(datasets))
	}

	for _, name := range []string{"one", "two", "three"} {
		if _, err := st.Save(ctx, name, []byte(name), sampleResult()); err != nil {
			t.Fatalf("Save(%s) error: %v", name, err)
		}
	}
	datasets, err = st.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(datasets) != 3 {
		t.Fatalf("List() = %d datasets, want 3", len(datasets))
	}
}

func TestDelete(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()

	ds, err := st.Save(ctx, "doomed", []byte("x"), sampleResult())
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := st.Delete(ctx, ds.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, _, err := st.Get(ctx, ds.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Get() after delete = %v, want not found", err)
	}
	// Deleting again reports not found.
	if err := st.Delete(ctx, ds.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second Delete() = %v, want not found", err)
	}
}

func TestDriverName(t *testing.T) {
	if DriverName() == "" {
		t.Error("DriverName() should name the compiled-in driver")
	}
}
