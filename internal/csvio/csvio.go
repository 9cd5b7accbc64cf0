// Package csvio reads pipeline result files into frame tables and writes
// tables back out as flat CSV. Reading owns the two ingestion decisions the
// rest of the system builds on: how many rows form the header, and what
// scalar kind each column carries.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cellops/meld/internal/logger"
	"github.com/cellops/meld/pkg/frame"
)

// ReadOptions control how a result file is interpreted.
type ReadOptions struct {
	// HeaderDepth is the number of header rows. Values above 1 produce a
	// multi-level table whose header must be collapsed before aggregation
	// or persistence. Zero means 1.
	HeaderDepth int
	// Comma overrides the field delimiter. Zero means ','.
	Comma rune
}

func (o ReadOptions) depth() int {
	if o.HeaderDepth < 1 {
		return 1
	}
	return o.HeaderDepth
}

// ReadTable parses one result file into a table. The first HeaderDepth
// records form the header: depth 1 gives flat names, deeper files give one
// header tuple entry per row. Every record must have the same field count;
// the csv reader reports the offending line otherwise.
//
// Column kinds are inferred from the data: Int when every present cell
// parses as an integer, Float when every present cell parses as a number,
// String otherwise. Empty cells and NaN tokens count as missing and never
// vote; a column with no present cells at all defaults to Float, matching
// how an all-blank measurement column behaves downstream.
func ReadTable(r io.Reader, opts ReadOptions) (*frame.Table, error) {
	depth := opts.depth()

	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	header := make([][]string, 0, depth)
	for len(header) < depth {
		record, err := cr.Read()
		if err == io.EOF {
			return nil, fmt.Errorf("want %d header rows, file has %d", depth, len(header))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		header = append(header, record)
	}

	width := len(header[0])
	cells := make([][]string, width)
	rows := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		for i, cell := range record {
			cells[i] = append(cells[i], cell)
		}
		rows++
	}

	cols := make([]frame.Column, width)
	for i := range cols {
		kind := inferKind(cells[i])
		col := frame.Column{
			Kind:   kind,
			Values: convert(cells[i], kind),
		}
		if depth == 1 {
			col.Name = header[0][i]
		} else {
			tuple := make([]string, depth)
			for level := range header {
				tuple[level] = header[level][i]
			}
			col.Levels = tuple
		}
		cols[i] = col
	}

	return frame.New(depth, cols...)
}

// ReadTableFile opens and parses one result file.
func ReadTableFile(path string, opts ReadOptions) (*frame.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open result file: %w", err)
	}
	defer f.Close()

	t, err := ReadTable(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger.CSV().Debug("read result file",
		"path", path,
		"rows", t.Rows(),
		"columns", t.Width(),
	)

	return t, nil
}

// WriteTable writes t as CSV: the header rows first (one per header level),
// then one record per table row. Missing values become empty cells.
func WriteTable(w io.Writer, t *frame.Table) error {
	cw := csv.NewWriter(w)
	cols := t.Columns()

	if t.HeaderDepth() == 1 {
		if err := cw.Write(t.Names()); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	} else {
		for level := 0; level < t.HeaderDepth(); level++ {
			record := make([]string, len(cols))
			for i, c := range cols {
				record[i] = c.Levels[level]
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write header: %w", err)
			}
		}
	}

	record := make([]string, len(cols))
	for r := 0; r < t.Rows(); r++ {
		for i, c := range cols {
			record[i] = formatCell(c.Values[r])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTableFile writes t as CSV at path, truncating any existing file.
func WriteTableFile(path string, t *frame.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := WriteTable(f, t); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	logger.CSV().Debug("wrote table",
		"path", path,
		"rows", t.Rows(),
		"columns", t.Width(),
	)

	return nil
}

// missing reports whether a raw cell counts as a missing value.
func missing(cell string) bool {
	trimmed := strings.TrimSpace(cell)
	return trimmed == "" || strings.EqualFold(trimmed, "nan")
}

func inferKind(cells []string) frame.Kind {
	sawPresent := false
	isInt := true
	isFloat := true

	for _, cell := range cells {
		if missing(cell) {
			continue
		}
		sawPresent = true
		trimmed := strings.TrimSpace(cell)
		if isInt {
			if _, err := strconv.ParseInt(trimmed, 10, 64); err != nil {
				isInt = false
			}
		}
		if !isInt && isFloat {
			if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
				isFloat = false
				break
			}
		}
	}

	switch {
	case !sawPresent:
		return frame.Float
	case isInt:
		return frame.Int
	case isFloat:
		return frame.Float
	default:
		return frame.String
	}
}

func convert(cells []string, kind frame.Kind) []any {
	values := make([]any, len(cells))
	for i, cell := range cells {
		if missing(cell) {
			continue
		}
		switch kind {
		case frame.Int:
			n, _ := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
			values[i] = n
		case frame.Float:
			f, _ := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			values[i] = f
		default:
			values[i] = cell
		}
	}
	return values
}

func formatCell(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		s := strconv.FormatFloat(n, 'g', -1, 64)
		// Keep whole floats readable back as floats.
		if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") {
			s += ".0"
		}
		return s
	case string:
		return n
	default:
		return fmt.Sprintf("%v", n)
	}
}
