package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: filepath.Join(t.TempDir(), "inspect.db")})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE test_cards (id INTEGER PRIMARY KEY, title TEXT, timing INTEGER DEFAULT 300)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "test_cards")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}
	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "text", colMap["title"])
	assert.Equal(t, "integer", colMap["timing"])
	require.NotNil(t, columns[2].Default)
	assert.Equal(t, "300", *columns[2].Default)

	// PRAGMA table_info returns an empty result for a missing table
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: filepath.Join(t.TempDir(), "inspect.db")})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE test_cards (id INTEGER PRIMARY KEY, title TEXT)").Error)

	missing, err := MissingColumns(db, "test_cards", []string{"id", "Title", "web_url"})
	require.NoError(t, err)
	assert.Equal(t, []string{"web_url"}, missing)

	missing, err = MissingColumns(db, "absent", []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, missing)
}
