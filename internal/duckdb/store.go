// Package duckdb provides the session table for classified sequences.
// The table lives in an in-memory DuckDB database by default and is
// discarded when the store is closed.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// sequencesTable holds one row per classified record. Substitutions are
// kept as the joined code list so SQL membership tests split on the same
// delimiter the parser does.
const sequencesTable = `CREATE OR REPLACE TABLE sequences (
	row_index BIGINT,
	seq_name VARCHAR,
	clade VARCHAR,
	pango_lineage VARCHAR,
	substitutions VARCHAR,
	mutation_count BIGINT,
	risk_score BIGINT,
	predicted_variant VARCHAR
)`

// Store is a classification session backed by DuckDB.
type Store struct {
	db     *sql.DB
	dbFile string
}

// Open starts a session. An empty dbFile keeps the table in memory; a
// file path keeps it on disk for inspection after the run, replacing any
// sequences table a previous session left there.
func Open(dbFile string) (*Store, error) {
	if dbFile != "" {
		if err := os.MkdirAll(filepath.Dir(dbFile), 0755); err != nil {
			return nil, fmt.Errorf("create session directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", dbFile)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	if _, err := db.Exec(sequencesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sequences table: %w", err)
	}

	return &Store{db: db, dbFile: dbFile}, nil
}

// InMemory reports whether the session table is discarded on Close.
func (s *Store) InMemory() bool {
	return s.dbFile == ""
}

// Close ends the session.
func (s *Store) Close() error {
	return s.db.Close()
}
