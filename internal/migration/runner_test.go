package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	sql := `-- indexes
CREATE INDEX a ON t (x);

CREATE INDEX b
    ON t (y);
-- trailing comment`

	assert.Equal(t, []string{
		"CREATE INDEX a ON t (x)",
		"CREATE INDEX b ON t (y)",
	}, SplitStatements(sql))
}

func TestRemoveComments(t *testing.T) {
	sql := "-- header\nSELECT 1;\n  -- indented\nSELECT 2;"
	assert.Equal(t, "SELECT 1;\nSELECT 2;", RemoveComments(sql))
}

func TestSQLFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755))

	files, err := SQLFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql"}, files)

	_, err = SQLFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestSQLFiles_RepositoryMigrations(t *testing.T) {
	files, err := SQLFiles(filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	assert.Equal(t, []string{"001_query_log_indexes.sql", "002_system_health_latest.sql"}, files)
}
