// Package db opens the embedded SQLite database that backs the
// collection snapshots and the user accounts.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Snapshot writes replace whole collections in one transaction, so the
// connection is tuned for a single writer. WAL keeps the overdue
// sweeper's reads from stalling behind it, and the busy timeout covers
// bulk imports and restores.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

// Open opens the database at path and applies the connection pragmas.
func Open(path string) (*sql.DB, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", path, err)
	}

	// The store serializes all mutations behind its own mutex; a
	// single connection also keeps every :memory: database whole.
	database.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := database.Exec(pragma); err != nil {
			database.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}
	return database, nil
}
