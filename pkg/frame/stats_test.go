package frame

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatistic(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Statistic
		wantErr  bool
	}{
		{name: "mean", input: "mean", expected: Mean},
		{name: "median", input: "median", expected: Median},
		{name: "sum", input: "sum", expected: Sum},
		{name: "case and whitespace tolerant", input: "  Median ", expected: Median},
		{name: "mode is not supported", input: "mode", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatistic(tt.input)
			if tt.wantErr {
				require.Error(t, err)

				var argErr *InvalidArgumentError
				require.ErrorAs(t, err, &argErr)
				assert.Equal(t, tt.input, argErr.Value)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestReduce(t *testing.T) {
	tests := []struct {
		name     string
		stat     Statistic
		kind     Kind
		values   []any
		expected any
	}{
		{
			name:     "median of odd count",
			stat:     Median,
			kind:     Float,
			values:   []any{3.0, 1.0, 2.0},
			expected: 2.0,
		},
		{
			name:     "median of even count is the central midpoint",
			stat:     Median,
			kind:     Float,
			values:   []any{10.0, 20.0},
			expected: 15.0,
		},
		{
			name:     "median skips missing values",
			stat:     Median,
			kind:     Float,
			values:   []any{nil, 5.0, nil},
			expected: 5.0,
		},
		{
			name:     "mean over ints",
			stat:     Mean,
			kind:     Int,
			values:   []any{int64(1), int64(2)},
			expected: 1.5,
		},
		{
			name:     "mean treats NaN as missing",
			stat:     Mean,
			kind:     Float,
			values:   []any{math.NaN(), 4.0},
			expected: 4.0,
		},
		{
			name:     "sum keeps integer columns integral",
			stat:     Sum,
			kind:     Int,
			values:   []any{int64(2), nil, int64(3)},
			expected: int64(5),
		},
		{
			name:     "sum over floats",
			stat:     Sum,
			kind:     Float,
			values:   []any{1.5, 2.5},
			expected: 4.0,
		},
		{
			name:     "all values missing reduces to missing",
			stat:     Mean,
			kind:     Float,
			values:   []any{nil, nil},
			expected: nil,
		},
		{
			name:     "sum of nothing is missing, not zero",
			stat:     Sum,
			kind:     Int,
			values:   []any{nil},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.stat.reduce(tt.kind, tt.values))
		})
	}
}

func TestResultKind(t *testing.T) {
	assert.Equal(t, Int, Sum.resultKind(Int))
	assert.Equal(t, Float, Sum.resultKind(Float))
	assert.Equal(t, Float, Mean.resultKind(Int))
	assert.Equal(t, Float, Median.resultKind(Int))
}
