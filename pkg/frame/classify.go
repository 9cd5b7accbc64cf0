package frame

import "strings"

// DefaultMarker tags metadata columns in CellProfiler-style exports.
const DefaultMarker = "Metadata"

// Classifier partitions a table's columns into metadata and feature sets by
// a naming convention. A column is metadata when Marker appears anywhere in
// its name, or only at the start of the name when Prefix is set. Every other
// column is a feature column, so the two sets always partition the table
// exactly: disjoint, exhaustive, in table order.
//
// A marker matching zero columns is legal and makes every column a feature
// column. The zero value matches nothing useful; use DefaultClassifier for
// the conventional "Metadata" substring rule.
type Classifier struct {
	Marker string
	Prefix bool
}

// DefaultClassifier returns the conventional substring rule on "Metadata".
func DefaultClassifier() Classifier {
	return Classifier{Marker: DefaultMarker}
}

// Metadata reports whether name belongs to the metadata set.
func (c Classifier) Metadata(name string) bool {
	if c.Prefix {
		return strings.HasPrefix(name, c.Marker)
	}
	return strings.Contains(name, c.Marker)
}

// FeatureColumns returns, in table order, the column names outside the
// metadata set.
func (c Classifier) FeatureColumns(t *Table) []string {
	names := make([]string, 0, t.Width())
	for _, col := range t.cols {
		if !c.Metadata(col.Name) {
			names = append(names, col.Name)
		}
	}
	return names
}

// MetadataColumns returns, in table order, the column names matching the
// marker rule.
func (c Classifier) MetadataColumns(t *Table) []string {
	names := make([]string, 0, t.Width())
	for _, col := range t.cols {
		if c.Metadata(col.Name) {
			names = append(names, col.Name)
		}
	}
	return names
}

// CheckNumericFeatures verifies that every feature column outside the key
// columns has a numeric kind. All offending columns are collected into a
// single NonNumericFeatureError so one failure reports everything that
// blocks aggregation.
func (c Classifier) CheckNumericFeatures(t *Table, on []string) error {
	keys := make(map[string]struct{}, len(on))
	for _, k := range on {
		keys[k] = struct{}{}
	}

	var offenders []string
	for _, col := range t.cols {
		if _, isKey := keys[col.Name]; isKey {
			continue
		}
		if c.Metadata(col.Name) {
			continue
		}
		if !col.Kind.Numeric() {
			offenders = append(offenders, col.Name)
		}
	}

	if len(offenders) > 0 {
		return &NonNumericFeatureError{Columns: offenders}
	}

	return nil
}
