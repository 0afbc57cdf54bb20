// ABOUTME: Tests for database opening and backend selection
// ABOUTME: Verifies WAL mode, schema creation and unknown backend errors
package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := OpenDatabase(dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = os.Stat(dbPath)
	require.NoError(t, err, "database file was not created")

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpenDatabaseTwice(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	first, err := OpenDatabase(dbPath)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenDatabase(dbPath)
	require.NoError(t, err, "schema initialization must be idempotent")
	defer func() { _ = second.Close() }()
}

func TestOpenBackend(t *testing.T) {
	dir := t.TempDir()

	sqliteBackend, err := OpenBackend(BackendSQLite, filepath.Join(dir, "crm.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteBackend{}, sqliteBackend)
	require.NoError(t, sqliteBackend.Close())

	badgerBackend, err := OpenBackend(BackendBadger, filepath.Join(dir, "badger"))
	require.NoError(t, err)
	assert.IsType(t, &BadgerBackend{}, badgerBackend)
	require.NoError(t, badgerBackend.Close())

	_, err = OpenBackend("postgres", filepath.Join(dir, "x"))
	assert.Error(t, err)
}
