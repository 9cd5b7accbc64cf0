// Package discover locates result files under a pipeline output directory.
// Distributed runs scatter one CSV per job across nested sub-directories;
// discovery flattens that layout into a path list the collector can filter
// by select target.
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cellops/meld/internal/logger"
)

var (
	// ErrNotDirectory is returned when the results path is not a directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrNoFiles is returned when the results directory holds no files at all.
	ErrNoFiles = errors.New("directory contains no files")
)

// Walk returns the full path of every file under dir, including files in
// nested sub-directories, in lexical walk order.
func Walk(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat results directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoFiles)
	}

	logger.Discover().Debug("walked results directory", "dir", dir, "files", len(paths))

	return paths, nil
}

// FileName normalizes a select target to its on-disk file name, appending
// the .csv extension when missing.
func FileName(selectName string) string {
	if strings.HasSuffix(selectName, ".csv") {
		return selectName
	}
	return selectName + ".csv"
}

// TableName normalizes a select target to a store table name, dropping a
// trailing .csv extension.
func TableName(selectName string) string {
	return strings.TrimSuffix(selectName, ".csv")
}

// MatchSelect filters paths down to those matching the select target,
// preserving order. Matching is a plain suffix test against the normalized
// file name, so a select of "DATA" also catches files like prefixDATA.csv;
// pipelines that need exact names should name their selects fully.
func MatchSelect(paths []string, selectName string) []string {
	want := FileName(selectName)

	var matched []string
	for _, p := range paths {
		if strings.HasSuffix(p, want) {
			matched = append(matched, p)
		}
	}
	return matched
}

// CountExtensions tallies file extensions across paths. Extensions keep
// their leading dot; files without one count under the empty key.
func CountExtensions(paths []string) map[string]int {
	counts := make(map[string]int)
	for _, p := range paths {
		counts[filepath.Ext(p)]++
	}
	return counts
}
