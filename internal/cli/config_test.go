package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMeldConfig(t *testing.T) {
	t.Run("missing config is not an error", func(t *testing.T) {
		dir := t.TempDir()
		chdir(t, dir)

		config, err := LoadMeldConfig("")
		require.NoError(t, err)
		assert.Nil(t, config)
	})

	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "meld.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
version: "1"
project: screen-42
database:
  url: postgres://localhost/results
results:
  select: IMAGE
  header_depth: 2
aggregate:
  on: [Image_ImageNumber, Metadata_Well]
  method: mean
`), 0o644))

		config, err := LoadMeldConfig(path)
		require.NoError(t, err)
		require.NotNil(t, config)

		assert.Equal(t, "screen-42", config.Project)
		assert.Equal(t, "postgres://localhost/results", config.Database.URL)
		assert.Equal(t, "IMAGE", config.Results.Select)
		assert.Equal(t, 2, config.Results.HeaderDepth)
		assert.Equal(t, []string{"Image_ImageNumber", "Metadata_Well"}, config.Aggregate.On)
		assert.Equal(t, "mean", config.Aggregate.Method)
	})

	t.Run("defaults fill unset fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "meld.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: \"1\"\n"), 0o644))

		config, err := LoadMeldConfig(path)
		require.NoError(t, err)
		require.NotNil(t, config)

		assert.Equal(t, "results", config.Database.Name)
		assert.Equal(t, "DATA", config.Results.Select)
		assert.Equal(t, 1, config.Results.HeaderDepth)
		assert.Equal(t, "_", config.Results.Separator)
		assert.Equal(t, []string{"Image_ImageNumber"}, config.Aggregate.On)
		assert.Equal(t, "median", config.Aggregate.Method)
		assert.Equal(t, "Metadata", config.Aggregate.MetadataMarker)
		assert.False(t, config.Aggregate.MetadataPrefix)
	})

	t.Run("search order finds meld.yaml in cwd", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "meld.yaml"), []byte("project: found\n"), 0o644))
		chdir(t, dir)

		config, err := LoadMeldConfig("")
		require.NoError(t, err)
		require.NotNil(t, config)
		assert.Equal(t, "found", config.Project)
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "meld.yaml")
		require.NoError(t, os.WriteFile(path, []byte("results: [not a map"), 0o644))

		_, err := LoadMeldConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestSaveMeldConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "meld.yaml")

	config := &MeldConfig{Version: "1", Project: "round-trip"}
	config.Results.Select = "DATA"
	config.Results.HeaderDepth = 2

	require.NoError(t, SaveMeldConfig(config, path))

	loaded, err := LoadMeldConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "round-trip", loaded.Project)
	assert.Equal(t, 2, loaded.Results.HeaderDepth)
}

func TestGetConfigPath(t *testing.T) {
	t.Run("env override wins", func(t *testing.T) {
		t.Setenv("MELD_CONFIG", "/etc/meld/meld.yaml")
		assert.Equal(t, "/etc/meld/meld.yaml", GetConfigPath())
	})

	t.Run("empty without config", func(t *testing.T) {
		t.Setenv("MELD_CONFIG", "")
		chdir(t, t.TempDir())
		assert.Equal(t, "", GetConfigPath())
	})
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
}
