// ABOUTME: Database connection management and backend selection
// ABOUTME: Opens the SQLite key/value store with WAL mode or a Badger directory
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Backend names accepted by OpenBackend.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

func OpenDatabase(path string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// OpenBackend opens the named store at path. For badger, path is a
// directory.
func OpenBackend(kind, path string) (Backend, error) {
	switch kind {
	case "", BackendSQLite:
		sqlDB, err := OpenDatabase(path)
		if err != nil {
			return nil, err
		}
		return NewSQLiteBackend(sqlDB), nil
	case BackendBadger:
		return OpenBadgerBackend(path)
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s or %s)", kind, BackendSQLite, BackendBadger)
	}
}
