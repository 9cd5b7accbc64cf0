package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLoadOptions(t *testing.T) {
	resetCLIState(t)

	t.Run("built-in defaults without config", func(t *testing.T) {
		meldConfig = nil

		opts := resolveLoadOptions("", 0, "")
		assert.Equal(t, "DATA", opts.Select)
		assert.Equal(t, 1, opts.HeaderDepth)
		assert.Equal(t, "", opts.Separator)
	})

	t.Run("config fills unset flags", func(t *testing.T) {
		meldConfig = &MeldConfig{}
		meldConfig.Results.Select = "IMAGE"
		meldConfig.Results.HeaderDepth = 2
		meldConfig.Results.Separator = "."

		opts := resolveLoadOptions("", 0, "")
		assert.Equal(t, "IMAGE", opts.Select)
		assert.Equal(t, 2, opts.HeaderDepth)
		assert.Equal(t, ".", opts.Separator)
	})

	t.Run("flags win over config", func(t *testing.T) {
		meldConfig = &MeldConfig{}
		meldConfig.Results.Select = "IMAGE"
		meldConfig.Results.HeaderDepth = 2

		opts := resolveLoadOptions("OBJECTS", 3, "_")
		assert.Equal(t, "OBJECTS", opts.Select)
		assert.Equal(t, 3, opts.HeaderDepth)
		assert.Equal(t, "_", opts.Separator)
	})
}

// TestLoadCommand runs the full load pipeline against a real SQLite file:
// two per-job DATA.csv files end up appended to one DATA table.
func TestLoadCommand(t *testing.T) {
	resetCLIState(t)
	chdir(t, t.TempDir())

	dir := t.TempDir()
	writeResult(t, dir, "run1/DATA.csv",
		"ImageNumber,Cell_Area,Metadata_Well\n1,10,A01\n2,20,B02\n")
	writeResult(t, dir, "run2/DATA.csv",
		"ImageNumber,Cell_Area,Metadata_Well\n3,30,C03\n")

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"load", dir, "--database", "res"})
	require.NoError(t, cmd.Execute())

	dbPath := filepath.Join(dir, "res.sqlite")
	require.FileExists(t, dbPath)

	db, err := sqlx.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var rows int
	require.NoError(t, db.Get(&rows, `SELECT COUNT(*) FROM "DATA"`))
	assert.Equal(t, 3, rows)
}

func TestLoadCommandNoMatches(t *testing.T) {
	resetCLIState(t)
	chdir(t, t.TempDir())

	dir := t.TempDir()
	writeResult(t, dir, "run1/OTHER.csv", "A\n1\n")

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"load", dir, "--select", "DATA", "--database", "res"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files matched")
}

func writeResult(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
