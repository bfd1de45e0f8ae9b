package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/lindenrow/rootline/core/errors"
	"github.com/lindenrow/rootline/core/gedcom"
)

// Dataset describes one stored parse result.
type Dataset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SourceHash  string `json:"sourceHash"` // BLAKE3 of the raw source buffer
	EncodingTag string `json:"encodingTag"`
	Individuals int    `json:"individuals"`
	Families    int    `json:"families"`
	CreatedAt   string `json:"createdAt"` // RFC 3339
}

// Store is a SQLite-backed dataset repository.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS datasets (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	source_hash  TEXT NOT NULL,
	encoding_tag TEXT NOT NULL,
	individuals  INTEGER NOT NULL,
	families     INTEGER NOT NULL,
	created_at   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS persons (
	dataset_id TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
	seq        INTEGER NOT NULL,
	id         TEXT NOT NULL,
	name       TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name  TEXT NOT NULL,
	birth_date TEXT NOT NULL,
	death_date TEXT NOT NULL,
	famc       TEXT NOT NULL,
	fams       TEXT NOT NULL,
	PRIMARY KEY (dataset_id, id)
);
CREATE TABLE IF NOT EXISTS families (
	dataset_id TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
	seq        INTEGER NOT NULL,
	id         TEXT NOT NULL,
	husband    TEXT NOT NULL,
	wife       TEXT NOT NULL,
	children   TEXT NOT NULL,
	PRIMARY KEY (dataset_id, id)
);
`

// Open opens (creating if necessary) a dataset store at path.
func Open(path string) (*Store, error) {
	db, err := open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.NewIO("configure", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.NewIO("migrate", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists a parse result together with the hash of its raw source
// buffer and returns the new dataset record.
func (s *Store) Save(ctx context.Context, name string, source []byte, res *gedcom.ParseResult) (*Dataset, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}
	sum := blake3.Sum256(source)
	ds := &Dataset{
		ID:          uuid.NewString(),
		Name:        name,
		SourceHash:  hex.EncodeToString(sum[:]),
		EncodingTag: res.Meta.EncodingTag,
		Individuals: res.Meta.Individuals,
		Families:    res.Meta.Families,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewIO("save", ds.ID, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (id, name, source_hash, encoding_tag, individuals, families, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ds.ID, ds.Name, ds.SourceHash, ds.EncodingTag, ds.Individuals, ds.Families, ds.CreatedAt); err != nil {
		return nil, errors.NewIO("save", ds.ID, err)
	}

	for i, p := range res.Persons {
		famc, fams := mustJSON(p.Famc), mustJSON(p.Fams)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO persons (dataset_id, seq, id, name, first_name, last_name, birth_date, death_date, famc, fams)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ds.ID, i, p.ID, p.Name, p.FirstName, p.LastName, p.BirthDate, p.DeathDate, famc, fams); err != nil {
			return nil, errors.NewIO("save", ds.ID, err)
		}
	}
	for i, f := range res.Families {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO families (dataset_id, seq, id, husband, wife, children)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			ds.ID, i, f.ID, f.Husband, f.Wife, mustJSON(f.Children)); err != nil {
			return nil, errors.NewIO("save", ds.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewIO("save", ds.ID, err)
	}
	return ds, nil
}

// Get loads one dataset and reconstructs its ParseResult.
func (s *Store) Get(ctx context.Context, id string) (*Dataset, *gedcom.ParseResult, error) {
	ds := &Dataset{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, source_hash, encoding_tag, individuals, families, created_at
		 FROM datasets WHERE id = ?`, id).
		Scan(&ds.ID, &ds.Name, &ds.SourceHash, &ds.EncodingTag, &ds.Individuals, &ds.Families, &ds.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, errors.NewNotFound("dataset", id)
	}
	if err != nil {
		return nil, nil, errors.NewIO("load", id, err)
	}

	res := &gedcom.ParseResult{
		Meta: gedcom.Meta{
			Individuals: ds.Individuals,
			Families:    ds.Families,
			EncodingTag: ds.EncodingTag,
		},
		Persons:  []gedcom.Person{},
		Families: []gedcom.Family{},
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, first_name, last_name, birth_date, death_date, famc, fams
		 FROM persons WHERE dataset_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, nil, errors.NewIO("load", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var p gedcom.Person
		var famc, fams string
		if err := rows.Scan(&p.ID, &p.Name, &p.FirstName, &p.LastName,
			&p.BirthDate, &p.DeathDate, &famc, &fams); err != nil {
			return nil, nil, errors.NewIO("load", id, err)
		}
		if err := fromJSON(famc, &p.Famc); err != nil {
			return nil, nil, errors.NewIO("load", id, err)
		}
		if err := fromJSON(fams, &p.Fams); err != nil {
			return nil, nil, errors.NewIO("load", id, err)
		}
		res.Persons = append(res.Persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errors.NewIO("load", id, err)
	}

	famRows, err := s.db.QueryContext(ctx,
		`SELECT id, husband, wife, children FROM families WHERE dataset_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, nil, errors.NewIO("load", id, err)
	}
	defer famRows.Close()
	for famRows.Next() {
		var f gedcom.Family
		var children string
		if err := famRows.Scan(&f.ID, &f.Husband, &f.Wife, &children); err != nil {
			return nil, nil, errors.NewIO("load", id, err)
		}
		if err := fromJSON(children, &f.Children); err != nil {
			return nil, nil, errors.NewIO("load", id, err)
		}
		res.Families = append(res.Families, f)
	}
	if err := famRows.Err(); err != nil {
		return nil, nil, errors.NewIO("load", id, err)
	}

	return ds, res, nil
}

// List returns all dataset records, newest first.
func (s *Store) List(ctx context.Context) ([]Dataset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, source_hash, encoding_tag, individuals, families, created_at
		 FROM datasets ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, errors.NewIO("list", "datasets", err)
	}
	defer rows.Close()

	out := []Dataset{}
	for rows.Next() {
		var ds Dataset
		if err := rows.Scan(&ds.ID, &ds.Name, &ds.SourceHash, &ds.EncodingTag,
			&ds.Individuals, &ds.Families, &ds.CreatedAt); err != nil {
			return nil, errors.NewIO("list", "datasets", err)
		}
		out = append(out, ds)
	}
	return out, rows.Err()
}

// Delete removes a dataset and its records. Child rows are deleted
// explicitly; the foreign-key cascade is per-connection and the pool
// gives no guarantee the pragma ran on the connection serving this call.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewIO("delete", id, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM persons WHERE dataset_id = ?`, id); err != nil {
		return errors.NewIO("delete", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM families WHERE dataset_id = ?`, id); err != nil {
		return errors.NewIO("delete", id, err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		return errors.NewIO("delete", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewIO("delete", id, err)
	}
	if n == 0 {
		return errors.NewNotFound("dataset", id)
	}
	return tx.Commit()
}

func mustJSON(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		// []string marshalling cannot fail; guard anyway.
		panic(fmt.Sprintf("store: marshal %v: %v", v, err))
	}
	return string(b)
}

func fromJSON(s string, v *[]string) error {
	return json.Unmarshal([]byte(s), v)
}
