package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migrations upgrade an existing ledger one user_version at a time.
// Entry i moves the database from version i to i+1; a fresh database gets
// the full schema.sql first and then runs every step.
var migrations = []string{
	`CREATE INDEX IF NOT EXISTS idx_revisions_content_hash ON revisions(content_hash)`,
}

var currentSchemaVersion = len(migrations)

// Store is the revision ledger: one row per document path and one
// hash-chained row per write of that path.
type Store struct {
	db *sql.DB
}

// Open opens the ledger at path, creating the file and its parent
// directory when missing. Opening an existing ledger is safe and upgrades
// its schema in place.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}

	// One writer at a time keeps seq allocation race-free.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// dsn carries the connection pragmas as go-sqlite3 query parameters so
// they apply to every pooled connection.
func dsn(path string) string {
	q := url.Values{}
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")
	q.Set("_busy_timeout", "5000")
	q.Set("_foreign_keys", "on")
	return "file:" + path + "?" + q.Encode()
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply ledger schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read ledger version: %w", err)
	}
	for ; version < currentSchemaVersion; version++ {
		if _, err := db.Exec(migrations[version]); err != nil {
			return fmt.Errorf("migrate ledger to v%d: %w", version+1, err)
		}
	}
	// PRAGMA does not take bound parameters.
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("set ledger version: %w", err)
	}
	return nil
}
