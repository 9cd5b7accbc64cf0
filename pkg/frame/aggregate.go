package frame

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Aggregate reduces replicate rows to one summary row per distinct value of
// the group key. Key equality is row-wise tuple equality over the key
// columns, so multi-key grouping works the obvious way. Feature columns
// (per cls, excluding the keys) are reduced with method; metadata columns
// carry the first row encountered for each group, on the documented
// precondition that metadata is constant within a replicate group. The
// output has exactly the input's column count, names, and order, with one
// row per distinct key tuple in ascending key order. Numeric keys compare
// numerically, string keys lexically, multi-key tuples left to right, and a
// missing key value forms its own group sorted first.
//
// Fails with InvalidArgumentError for an unknown statistic or a key naming
// no column, NonNumericFeatureError listing every non-numeric feature
// column, and MergeIntegrityError when the merged output would not match the
// input's column structure (the usual cause is duplicate column names). On
// error no table is returned.
func Aggregate(t *Table, on []string, method Statistic, cls Classifier) (*Table, error) {
	if t.HeaderDepth() != 1 {
		return nil, &ShapeError{
			Op:     "aggregate",
			Reason: fmt.Sprintf("header depth %d: collapse the header before aggregating", t.HeaderDepth()),
		}
	}
	if len(on) == 0 {
		return nil, &InvalidArgumentError{
			Op:       "aggregate",
			Argument: "group key",
			Value:    "",
			Reason:   "at least one key column is required",
		}
	}
	for _, key := range on {
		if !t.HasColumn(key) {
			return nil, &InvalidArgumentError{
				Op:       "aggregate",
				Argument: "group key",
				Value:    key,
				Reason:   "no such column",
			}
		}
	}
	if !method.valid() {
		return nil, &InvalidArgumentError{
			Op:       "aggregate",
			Argument: "statistic",
			Value:    string(method),
			Reason:   "want mean, median, or sum",
		}
	}

	if err := cls.CheckNumericFeatures(t, on); err != nil {
		return nil, err
	}

	// The input's column order is authoritative for the output.
	order := t.Names()

	groups := groupRows(t, on)

	keyIndex := make(map[string]int, len(on))
	for i, name := range on {
		if _, ok := keyIndex[name]; !ok {
			keyIndex[name] = i
		}
	}

	// Reduced features (with the keys as carrier) on one side, first-row
	// metadata on the other. The sides are disjoint by construction, so the
	// merge is a plain reassembly; the width check below is the integrity
	// assertion that nothing was lost or doubled on the way.
	type sideCol struct {
		kind   Kind
		values []any
	}
	featureSide := make(map[string]sideCol)
	metaSide := make(map[string]sideCol)

	for _, c := range t.cols {
		switch {
		case hasKey(keyIndex, c.Name):
			ki := keyIndex[c.Name]
			values := make([]any, len(groups))
			for gi, g := range groups {
				values[gi] = g.key[ki]
			}
			featureSide[c.Name] = sideCol{kind: c.Kind, values: values}

		case cls.Metadata(c.Name):
			values := make([]any, len(groups))
			for gi, g := range groups {
				values[gi] = c.Values[g.rows[0]]
			}
			metaSide[c.Name] = sideCol{kind: c.Kind, values: values}

		default:
			values := make([]any, len(groups))
			for gi, g := range groups {
				values[gi] = method.reduce(c.Kind, gather(c.Values, g.rows))
			}
			featureSide[c.Name] = sideCol{kind: method.resultKind(c.Kind), values: values}
		}
	}

	if merged := len(featureSide) + len(metaSide); merged != t.Width() {
		return nil, &MergeIntegrityError{
			Detail: fmt.Sprintf("merged %d columns, want %d", merged, t.Width()),
		}
	}

	cols := make([]Column, 0, len(order))
	for _, name := range order {
		side, ok := featureSide[name]
		if !ok {
			side, ok = metaSide[name]
		}
		if !ok {
			return nil, &MergeIntegrityError{
				Detail: fmt.Sprintf("column %q lost during merge", name),
			}
		}
		cols = append(cols, Column{Name: name, Kind: side.kind, Values: side.values})
	}

	return New(1, cols...)
}

func hasKey(keyIndex map[string]int, name string) bool {
	_, ok := keyIndex[name]
	return ok
}

// group collects the input row indices sharing one key tuple. rows is in
// input order, so rows[0] is the first occurrence.
type group struct {
	key  []any
	rows []int
}

func groupRows(t *Table, on []string) []*group {
	keyCols := make([]Column, len(on))
	kinds := make([]Kind, len(on))
	for i, name := range on {
		keyCols[i], _ = t.Column(name)
		kinds[i] = keyCols[i].Kind
	}

	index := make(map[string]*group)
	var groups []*group
	for r := 0; r < t.Rows(); r++ {
		key := make([]any, len(keyCols))
		for i := range keyCols {
			key[i] = keyCols[i].Values[r]
		}
		ks := keyString(key)
		g, ok := index[ks]
		if !ok {
			g = &group{key: key}
			index[ks] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, r)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return compareKeys(kinds, groups[a].key, groups[b].key) < 0
	})

	return groups
}

func gather(values []any, rows []int) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = values[r]
	}
	return out
}

// keyString encodes a key tuple for map lookup. The unit separator keeps
// multi-key tuples unambiguous and the type prefix keeps int64(1) distinct
// from "1". All NaNs encode alike and so fall into one group.
func keyString(key []any) string {
	var b strings.Builder
	for i, v := range key {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		switch n := v.(type) {
		case nil:
			b.WriteByte(0x00)
		case int64:
			fmt.Fprintf(&b, "i%d", n)
		case float64:
			fmt.Fprintf(&b, "f%g", n)
		case string:
			b.WriteString("s")
			b.WriteString(n)
		default:
			fmt.Fprintf(&b, "?%v", n)
		}
	}
	return b.String()
}

func compareKeys(kinds []Kind, a, b []any) int {
	for i, k := range kinds {
		if c := compareValue(k, a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// compareValue orders two key values of one column: missing first, then NaN,
// then numeric or lexical order per the column kind.
func compareValue(k Kind, a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if k == String {
		as, _ := a.(string)
		bs, _ := b.(string)
		return strings.Compare(as, bs)
	}

	af := rawFloat(a)
	bf := rawFloat(b)
	switch {
	case math.IsNaN(af) && math.IsNaN(bf):
		return 0
	case math.IsNaN(af):
		return -1
	case math.IsNaN(bf):
		return 1
	case af < bf:
		return -1
	case af > bf:
		return 1
	}
	return 0
}

func rawFloat(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return math.NaN()
}
