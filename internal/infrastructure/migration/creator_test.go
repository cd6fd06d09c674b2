package migration

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/ledgerly/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add users table", "add_users_table"},
		{"Add-Invoice-Notes", "add_invoice_notes"},
		{"ADD__ROLE__FLAGS", "add_role_flags"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading and trailing_", "leading_and_trailing"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_NumbersSequentially(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "init", "")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_init.up.sql"), first.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_init.down.sql"), first.DownPath)

	second, err := CreateMigration(dir, "Add invoice notes", "Free text on invoices")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)

	up, err := os.ReadFile(second.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add_invoice_notes")
	assert.Contains(t, string(up), "-- Description: Free text on invoices")

	down, err := os.ReadFile(second.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000002_add_notes.up.sql",
		"000001_init.up.sql",
		"000001_init.down.sql",
		"README.md",
		"notaversion_x.up.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	entries, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Version: 1, Name: "init", HasDown: true},
		{Version: 2, Name: "add_notes", HasDown: false},
	}, entries)

	t.Run("missing directory", func(t *testing.T) {
		entries, err := ListMigrations(filepath.Join(dir, "nope"))
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrations.FS, "*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)
	for _, up := range ups {
		down := up[:len(up)-len(upSuffix)] + downSuffix
		_, err := fs.Stat(migrations.FS, down)
		assert.NoError(t, err, "missing rollback for %s", up)
	}
}
