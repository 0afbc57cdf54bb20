// ABOUTME: Tests for database schema creation
// ABOUTME: Uses in-memory SQLite for fast isolated tests
package db

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSchema(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, InitSchema(db))

	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='kv_store'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "kv_store", name)

	var index string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name='idx_kv_store_updated_at'").Scan(&index)
	assert.NoError(t, err)
}
