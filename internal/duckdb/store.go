// Package duckdb persists per-read classification results to a DuckDB
// database for ad-hoc querying. It is an optional CLI sink; the
// classification engine itself keeps no state between runs.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for classification results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist. One row per read per
// scheme per matched amplicon; no-match reads get a single row with an
// empty amplicon so off-target rates stay queryable.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS classifications (
		read_name VARCHAR,
		scheme VARCHAR,
		pos_start BIGINT,
		pos_end BIGINT,
		amplicon VARCHAR,
		amplicon_id INTEGER
	)`)
	return err
}

// InsertClassification records one read's result against one scheme.
// Pass an empty amplicons slice for a no-match read.
func (s *Store) InsertClassification(readName, schemeName string, start, end int64, amplicons []AmpliconRef) error {
	if len(amplicons) == 0 {
		_, err := s.db.Exec(
			`INSERT INTO classifications VALUES (?, ?, ?, ?, '', -1)`,
			readName, schemeName, start, end)
		return err
	}
	for _, a := range amplicons {
		if _, err := s.db.Exec(
			`INSERT INTO classifications VALUES (?, ?, ?, ?, ?, ?)`,
			readName, schemeName, start, end, a.Name, a.ID); err != nil {
			return err
		}
	}
	return nil
}

// AmpliconRef identifies one matched amplicon in a classification row.
type AmpliconRef struct {
	Name string
	ID   int
}

// AmpliconCounts returns, for one scheme, the number of classified reads
// attributed to each amplicon.
func (s *Store) AmpliconCounts(schemeName string) (map[string]int64, error) {
	rows, err := s.db.Query(
		`SELECT amplicon, COUNT(*) FROM classifications
		 WHERE scheme = ? AND amplicon <> ''
		 GROUP BY amplicon`, schemeName)
	if err != nil {
		return nil, fmt.Errorf("query amplicon counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var name string
		var n int64
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan amplicon count: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

// UnmatchedCount returns the number of no-match reads for one scheme.
func (s *Store) UnmatchedCount(schemeName string) (int64, error) {
	var n int64
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM classifications WHERE scheme = ? AND amplicon = ''`,
		schemeName).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("query unmatched count: %w", err)
	}
	return n, nil
}
