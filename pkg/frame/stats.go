package frame

import (
	"math"
	"sort"
	"strings"
)

// Statistic selects the per-group reduction applied to feature columns.
type Statistic string

const (
	Mean   Statistic = "mean"
	Median Statistic = "median"
	Sum    Statistic = "sum"
)

// ParseStatistic maps a user-supplied name onto a Statistic, ignoring case
// and surrounding whitespace.
func ParseStatistic(s string) (Statistic, error) {
	switch Statistic(strings.ToLower(strings.TrimSpace(s))) {
	case Mean:
		return Mean, nil
	case Median:
		return Median, nil
	case Sum:
		return Sum, nil
	}
	return "", &InvalidArgumentError{
		Op:       "parse statistic",
		Argument: "statistic",
		Value:    s,
		Reason:   "want mean, median, or sum",
	}
}

func (s Statistic) valid() bool {
	switch s {
	case Mean, Median, Sum:
		return true
	}
	return false
}

// resultKind is the kind of a column reduced by s. Sums of integer columns
// stay integral; everything else becomes a float.
func (s Statistic) resultKind(k Kind) Kind {
	if s == Sum && k == Int {
		return Int
	}
	return Float
}

// reduce applies the statistic to one group's values for one column.
// Missing values are skipped and NaN counts as missing; a group with no
// present values reduces to missing.
func (s Statistic) reduce(k Kind, values []any) any {
	switch s {
	case Sum:
		if k == Int {
			return sumInts(values)
		}
		return sumFloats(values)
	case Mean:
		return meanFloats(values)
	case Median:
		return medianFloats(values)
	}
	return nil
}

func sumInts(values []any) any {
	var total int64
	seen := false
	for _, v := range values {
		if n, ok := v.(int64); ok {
			total += n
			seen = true
		}
	}
	if !seen {
		return nil
	}
	return total
}

func sumFloats(values []any) any {
	var total float64
	seen := false
	for _, v := range values {
		if f, ok := asFloat(v); ok {
			total += f
			seen = true
		}
	}
	if !seen {
		return nil
	}
	return total
}

func meanFloats(values []any) any {
	var total float64
	var n int
	for _, v := range values {
		if f, ok := asFloat(v); ok {
			total += f
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return total / float64(n)
}

func medianFloats(values []any) any {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := asFloat(v); ok {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}

	sort.Float64s(present)
	mid := len(present) / 2
	if len(present)%2 == 1 {
		return present[mid]
	}
	return (present[mid-1] + present[mid]) / 2
}

// asFloat converts a present numeric value to float64. Missing values and
// NaN report false.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
