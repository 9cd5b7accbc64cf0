package discover

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0644))
}

func TestWalk(t *testing.T) {
	t.Run("collects files from nested directories", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "job_1", "DATA.csv"))
		writeFile(t, filepath.Join(dir, "job_1", "IMAGE.csv"))
		writeFile(t, filepath.Join(dir, "job_2", "deep", "DATA.csv"))
		writeFile(t, filepath.Join(dir, "notes.txt"))

		paths, err := Walk(dir)
		require.NoError(t, err)
		assert.Len(t, paths, 4)
		for _, p := range paths {
			assert.True(t, strings.HasPrefix(p, dir))
		}
	})

	t.Run("rejects a path that is not a directory", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "DATA.csv")
		writeFile(t, file)

		_, err := Walk(file)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotDirectory)
	})

	t.Run("rejects an empty directory", func(t *testing.T) {
		_, err := Walk(t.TempDir())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoFiles)
	})

	t.Run("rejects a missing directory", func(t *testing.T) {
		_, err := Walk(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})
}

func TestSelectNaming(t *testing.T) {
	tests := []struct {
		name      string
		selectArg string
		fileName  string
		tableName string
	}{
		{name: "bare select", selectArg: "DATA", fileName: "DATA.csv", tableName: "DATA"},
		{name: "select with extension", selectArg: "DATA.csv", fileName: "DATA.csv", tableName: "DATA"},
		{name: "other extension is left alone", selectArg: "DATA.tsv", fileName: "DATA.tsv.csv", tableName: "DATA.tsv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fileName, FileName(tt.selectArg))
			assert.Equal(t, tt.tableName, TableName(tt.selectArg))
		})
	}
}

func TestMatchSelect(t *testing.T) {
	paths := []string{
		"/results/job_1/DATA.csv",
		"/results/job_1/IMAGE.csv",
		"/results/job_2/DATA.csv",
		"/results/job_2/METADATA.csv",
		"/results/README.md",
	}

	t.Run("matches normalized select against path suffix", func(t *testing.T) {
		matched := MatchSelect(paths, "IMAGE")
		assert.Equal(t, []string{"/results/job_1/IMAGE.csv"}, matched)
	})

	t.Run("suffix matching also catches longer names", func(t *testing.T) {
		matched := MatchSelect(paths, "DATA")
		assert.Equal(t, []string{
			"/results/job_1/DATA.csv",
			"/results/job_2/DATA.csv",
			"/results/job_2/METADATA.csv",
		}, matched)
	})

	t.Run("no matches yields an empty slice", func(t *testing.T) {
		assert.Empty(t, MatchSelect(paths, "CELLS"))
	})
}

func TestCountExtensions(t *testing.T) {
	counts := CountExtensions([]string{
		"/r/a.csv",
		"/r/b.csv",
		"/r/c.txt",
		"/r/Makefile",
	})

	assert.Equal(t, map[string]int{".csv": 2, ".txt": 1, "": 1}, counts)
}
