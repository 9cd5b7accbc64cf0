// Package frame holds the in-memory table model for pipeline result files
// and the three operations at the heart of collation: collapsing multi-row
// headers into flat column names (and inflating them back), partitioning
// columns into metadata and feature sets by a naming convention, and
// aggregating replicate rows per group key.
//
// Tables are immutable as far as the package is concerned. Every operation
// reads its input and returns fresh values; none mutates a table in place.
package frame

import (
	"fmt"
	"strings"
)

// Kind identifies the scalar type carried by a column.
type Kind int

const (
	// String columns hold text values (Go string).
	String Kind = iota
	// Int columns hold 64-bit integers (Go int64).
	Int
	// Float columns hold 64-bit floating point values (Go float64).
	Float
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Numeric reports whether columns of this kind can be aggregated.
func (k Kind) Numeric() bool {
	return k == Int || k == Float
}

// Column is one named, typed value sequence of a Table.
//
// Name is the flat column name and is authoritative when the owning table
// has header depth 1. At depth > 1 the header tuple in Levels identifies the
// column instead, one entry per header row, and Name is left empty until the
// header is collapsed.
//
// Values holds one entry per row: int64 for Int columns, float64 for Float
// columns, string for String columns, and nil for a missing value.
type Column struct {
	Name   string
	Levels []string
	Kind   Kind
	Values []any
}

// Label returns the column's display name for messages: the flat name when
// present, otherwise the header tuple rendered tuple-style.
func (c Column) Label() string {
	if c.Name != "" || len(c.Levels) == 0 {
		return c.Name
	}
	return "(" + strings.Join(c.Levels, ", ") + ")"
}

// Table is an ordered collection of equal-length columns tagged with the
// header depth recorded at ingestion. Depth 1 tables carry flat names;
// deeper tables carry header tuples of exactly depth levels per column.
//
// Column names are expected to be unique. Uniqueness is not enforced here
// (collapsing a header may legitimately produce duplicates, which callers
// own), but duplicate names make name-based operations resolve to the first
// match and cause Aggregate to fail its merge integrity check.
type Table struct {
	cols  []Column
	depth int
}

// New assembles a table from columns, validating the structural invariants:
// depth at least 1, all columns the same length, and header tuples of
// exactly depth levels on every column when depth exceeds 1.
func New(depth int, cols ...Column) (*Table, error) {
	if depth < 1 {
		return nil, &InvalidArgumentError{
			Op:       "new table",
			Argument: "header depth",
			Value:    fmt.Sprintf("%d", depth),
			Reason:   "must be at least 1",
		}
	}

	rows := -1
	for _, c := range cols {
		if rows == -1 {
			rows = len(c.Values)
		} else if len(c.Values) != rows {
			return nil, &ShapeError{
				Op:     "new table",
				Column: c.Label(),
				Reason: fmt.Sprintf("want %d rows, got %d", rows, len(c.Values)),
			}
		}
		if depth > 1 && len(c.Levels) != depth {
			return nil, &ShapeError{
				Op:     "new table",
				Column: c.Label(),
				Reason: fmt.Sprintf("want %d header levels, got %d", depth, len(c.Levels)),
			}
		}
	}

	t := &Table{
		cols:  make([]Column, len(cols)),
		depth: depth,
	}
	copy(t.cols, cols)

	return t, nil
}

// HeaderDepth returns the number of header rows the table was read with.
func (t *Table) HeaderDepth() int {
	return t.depth
}

// Rows returns the row count.
func (t *Table) Rows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0].Values)
}

// Width returns the column count.
func (t *Table) Width() int {
	return len(t.cols)
}

// Columns returns the table's columns in order. The slice is a copy; the
// value slices inside are shared and must not be mutated.
func (t *Table) Columns() []Column {
	cols := make([]Column, len(t.cols))
	copy(cols, t.cols)
	return cols
}

// Names returns the flat column names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the first column with the given flat name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.cols {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn reports whether a column with the given flat name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Row returns the values of row i across all columns, in column order.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.cols))
	for j, c := range t.cols {
		row[j] = c.Values[i]
	}
	return row
}
