package frame

import (
	"fmt"
	"strings"
)

// ShapeError reports a header structure an operation cannot accept: a table
// that is not multi-level where one is required, ragged header tuples, or
// collapsed names that split into differing part counts.
type ShapeError struct {
	Op     string // operation that failed
	Column string // offending column label, when known
	Reason string
}

func (e *ShapeError) Error() string {
	parts := []string{fmt.Sprintf("frame: %s", e.Op)}

	if e.Column != "" {
		parts = append(parts, fmt.Sprintf("column %q", e.Column))
	}

	parts = append(parts, e.Reason)

	return strings.Join(parts, ": ")
}

// InvalidArgumentError reports a caller-supplied argument an operation cannot
// accept, such as an unknown statistic or a group key naming no column.
type InvalidArgumentError struct {
	Op       string // operation that failed
	Argument string // argument name
	Value    string // offending value
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("frame: %s: invalid %s %q: %s", e.Op, e.Argument, e.Value, e.Reason)
}

// NonNumericFeatureError reports feature columns whose kind is not numeric.
// Columns carries every offender, not just the first, so one failure names
// everything that needs fixing.
type NonNumericFeatureError struct {
	Columns []string
}

func (e *NonNumericFeatureError) Error() string {
	return fmt.Sprintf("frame: non-numeric feature columns: %s", strings.Join(e.Columns, ", "))
}

// MergeIntegrityError reports a structural invariant broken while merging
// reduced features with their metadata. It signals a programming error or a
// malformed input table (duplicate column names), never ordinary bad data.
type MergeIntegrityError struct {
	Detail string
}

func (e *MergeIntegrityError) Error() string {
	return "frame: merge integrity: " + e.Detail
}
