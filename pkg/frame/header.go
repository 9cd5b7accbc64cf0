package frame

import (
	"fmt"
	"strings"
)

// DefaultSeparator joins header levels into collapsed column names.
const DefaultSeparator = "_"

// Collapse folds each column's header tuple into a single delimited name:
// the tuple joined with sep, then stripped of leading and trailing
// whitespace. Whitespace is the only thing stripped; separator characters at
// the ends survive, so a tuple with an empty leading or trailing field keeps
// its separator (and is therefore not recoverable by Inflate, which sees an
// extra empty part).
//
// Names are returned in column order. No uniqueness check is performed;
// distinct tuples can collapse to the same name and callers own the
// consequences.
//
// Fails with ShapeError when the table is not multi-level.
func Collapse(t *Table, sep string) ([]string, error) {
	if t.HeaderDepth() <= 1 {
		return nil, &ShapeError{
			Op:     "collapse",
			Reason: fmt.Sprintf("header depth %d is not multi-level", t.HeaderDepth()),
		}
	}

	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		if len(c.Levels) != t.depth {
			return nil, &ShapeError{
				Op:     "collapse",
				Column: c.Label(),
				Reason: fmt.Sprintf("want %d header levels, got %d", t.depth, len(c.Levels)),
			}
		}
		names[i] = strings.TrimSpace(strings.Join(c.Levels, sep))
	}

	return names, nil
}

// CollapseColumns returns a depth-1 copy of t whose columns carry the
// collapsed names from Collapse. Kinds and values are unchanged.
func CollapseColumns(t *Table, sep string) (*Table, error) {
	names, err := Collapse(t, sep)
	if err != nil {
		return nil, err
	}

	cols := make([]Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = Column{
			Name:   names[i],
			Kind:   c.Kind,
			Values: c.Values,
		}
	}

	return New(1, cols...)
}

// Inflate splits each flat column name on sep into a header tuple and
// transposes the tuples into header rows: level i across all columns forms
// row i of the result.
//
// Every name must split into the same number of parts; a name whose
// informational fields themselves contain sep splits into extra parts and is
// rejected here rather than silently mis-split, unless every column
// mis-splits uniformly, which is undetectable. Fails with ShapeError on a
// part-count mismatch or when the table is already multi-level.
func Inflate(t *Table, sep string) ([][]string, error) {
	if t.HeaderDepth() != 1 {
		return nil, &ShapeError{
			Op:     "inflate",
			Reason: fmt.Sprintf("header depth %d is already multi-level", t.HeaderDepth()),
		}
	}
	if len(t.cols) == 0 {
		return nil, &ShapeError{
			Op:     "inflate",
			Reason: "table has no columns",
		}
	}

	tuples := make([][]string, len(t.cols))
	levels := 0
	for i, c := range t.cols {
		tuples[i] = strings.Split(c.Name, sep)
		if i == 0 {
			levels = len(tuples[i])
			continue
		}
		if len(tuples[i]) != levels {
			return nil, &ShapeError{
				Op:     "inflate",
				Column: c.Name,
				Reason: fmt.Sprintf("want %d header levels, got %d", levels, len(tuples[i])),
			}
		}
	}

	header := make([][]string, levels)
	for level := range header {
		row := make([]string, len(t.cols))
		for i := range t.cols {
			row[i] = tuples[i][level]
		}
		header[level] = row
	}

	return header, nil
}

// InflateColumns returns a multi-level copy of t whose columns carry the
// header tuples from Inflate. The new depth is the shared part count; flat
// names are cleared. Kinds and values are unchanged.
func InflateColumns(t *Table, sep string) (*Table, error) {
	header, err := Inflate(t, sep)
	if err != nil {
		return nil, err
	}

	depth := len(header)
	if depth == 1 {
		return New(1, t.Columns()...)
	}

	cols := make([]Column, len(t.cols))
	for i, c := range t.cols {
		tuple := make([]string, depth)
		for level := range header {
			tuple[level] = header[level][i]
		}
		cols[i] = Column{
			Levels: tuple,
			Kind:   c.Kind,
			Values: c.Values,
		}
	}

	return New(depth, cols...)
}
