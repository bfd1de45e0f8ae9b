// Package store persists parsed GEDCOM datasets in SQLite.
//
// Build modes mirror the SQLite driver split used across our tooling:
//   - Default (CGO_ENABLED=0): pure Go modernc.org/sqlite
//   - CGO mode (-tags cgo_sqlite, CGO_ENABLED=1): mattn/go-sqlite3
//
// Use Open instead of sql.Open so the right driver name is selected for
// the active build mode.
package store

import (
	"database/sql"
)

// DriverName returns the SQL driver name for the active build mode.
func DriverName() string {
	return driverName
}

// IsCGO returns true if the CGO implementation is being used.
func IsCGO() bool {
	return driverType == "cgo"
}

// open opens a SQLite database using the appropriate driver.
func open(dataSourceName string) (*sql.DB, error) {
	return sql.Open(driverName, dataSourceName)
}
