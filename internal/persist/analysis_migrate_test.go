package persist

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/codescore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateAnalysis_NoneBackend(t *testing.T) {
	err := MigrateAnalysis(&bytes.Buffer{}, schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrateAnalysis_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_migration.db")
	var out bytes.Buffer

	require.NoError(t, MigrateAnalysis(&out, schema.SQLiteBackend, dbPath, -1))
	assert.Contains(t, out.String(), "Successfully migrated from version 0 to version 3")

	_, err := os.Stat(dbPath)
	assert.NoError(t, err)

	out.Reset()
	require.NoError(t, MigrateAnalysis(&out, schema.SQLiteBackend, dbPath, -1))
	assert.Contains(t, out.String(), "already at the latest version")

	out.Reset()
	require.NoError(t, MigrateAnalysis(&out, schema.SQLiteBackend, dbPath, 1))
	assert.Contains(t, out.String(), "from version 3 to version 1")
	assert.False(t, hasColumn(t, dbPath, "label"))

	out.Reset()
	require.NoError(t, MigrateAnalysis(&out, schema.SQLiteBackend, dbPath, 0))
	assert.Contains(t, out.String(), "rolled back from version 1 to version 0")

	out.Reset()
	require.NoError(t, MigrateAnalysis(&out, schema.SQLiteBackend, dbPath, 0))
	assert.Contains(t, out.String(), "already at version 0")

	require.NoError(t, MigrateAnalysis(&out, schema.SQLiteBackend, dbPath, LatestVersion))
	assert.True(t, hasColumn(t, dbPath, "label"))
}

func TestMigrateAnalysis_SQLiteInMemory(t *testing.T) {
	require.NoError(t, MigrateAnalysis(&bytes.Buffer{}, schema.SQLiteBackend, ":memory:", -1))
}

func TestNewAnalysisStore_ReusesMigratedFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "existing.db")
	require.NoError(t, MigrateAnalysis(&bytes.Buffer{}, schema.SQLiteBackend, dbPath, -1))

	store, err := NewAnalysisStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus(t.Context())
	require.NoError(t, err)
	assert.Equal(t, uint(LatestVersion), status.SchemaVersion)
}

func hasColumn(t *testing.T, dbPath, column string) bool {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows, err := db.Query("SELECT name FROM pragma_table_info('code_analyses')")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		if name == column {
			return true
		}
	}
	require.NoError(t, rows.Err())
	return false
}
