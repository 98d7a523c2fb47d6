package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/hireflow/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add jobs table", "add_jobs_table"},
		{"Add-Jobs-Table", "add_jobs_table"},
		{"add__jobs__table", "add_jobs_table"},
		{"Add Grants 123", "add_grants_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_Sequential(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add jobs table", "Create jobs")
	require.NoError(t, err)
	assert.Equal(t, "000001", first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_jobs_table.up.sql"), first.UpPath)

	second, err := CreateMigration(dir, "add grants", "")
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add jobs table")
	assert.Contains(t, string(up), "Create jobs")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")
	_, err := CreateMigration(nested, "init", "")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_recruiting.up.sql":    {Data: []byte("--")},
		"000002_recruiting.down.sql":  {Data: []byte("--")},
		"000001_init_schema.up.sql":   {Data: []byte("--")},
		"000001_init_schema.down.sql": {Data: []byte("--")},
		"README.md":                   {Data: []byte("docs")},
		"nested.up.sql/file":          {Data: []byte("--")},
	}

	names, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init_schema", "000002_recruiting"}, names)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	names, err := ListMigrations(os.DirFS("/nonexistent/path/to/migrations"))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	names, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, names)
	for _, n := range names {
		_, err := migrations.FS.Open(n + ".down.sql")
		assert.NoError(t, err, "missing down migration for %s", n)
	}
	assert.Equal(t, 3, nextVersion(names))
}
