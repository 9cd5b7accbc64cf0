// Package collector drives the collation pipeline: discover the result
// files a distributed run scattered over a directory tree, read and
// normalize each matching file, optionally aggregate replicate rows, and
// append the outcome to the table store or a flat CSV.
//
// The store handle is an argument to each call rather than collector state,
// so there is no ordering between opening a database and loading into it.
package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cellops/meld/internal/csvio"
	"github.com/cellops/meld/internal/discover"
	"github.com/cellops/meld/internal/logger"
	"github.com/cellops/meld/internal/store"
	"github.com/cellops/meld/pkg/frame"
)

var (
	// ErrNoMatches means no discovered file matched the select target.
	ErrNoMatches = errors.New("no files matched the select target")
	// ErrSchemaMismatch means result files disagreed on their column schema
	// where an identical one is required.
	ErrSchemaMismatch = errors.New("result files disagree on columns")
)

// DefaultSelect is the result file CellProfiler pipelines conventionally
// emit per job.
const DefaultSelect = "DATA"

// DefaultGroupKey is the conventional replicate key after header collapsing.
const DefaultGroupKey = "Image_ImageNumber"

// LoadOptions configure how matching result files are read and normalized.
type LoadOptions struct {
	// Select names the per-job result file, with or without the .csv
	// extension. Empty means DATA. The select also names the store table.
	Select string
	// HeaderDepth is the number of header rows in each file. Depths above 1
	// are collapsed into flat names before anything else happens.
	HeaderDepth int
	// Separator joins header levels during collapsing. Empty means "_".
	Separator string
}

func (o LoadOptions) selectName() string {
	if o.Select == "" {
		return DefaultSelect
	}
	return o.Select
}

func (o LoadOptions) separator() string {
	if o.Separator == "" {
		return frame.DefaultSeparator
	}
	return o.Separator
}

// AggregateOptions extend LoadOptions with replicate aggregation settings.
type AggregateOptions struct {
	LoadOptions

	// On is the grouping key; empty means Image_ImageNumber. With collapsed
	// headers the key must be the collapsed name.
	On []string
	// Method is the per-group statistic; empty means median.
	Method frame.Statistic
	// Marker tags metadata columns; empty means Metadata.
	Marker string
	// MarkerPrefix restricts marker matching to the start of the name.
	MarkerPrefix bool
}

func (o AggregateOptions) on() []string {
	if len(o.On) == 0 {
		return []string{DefaultGroupKey}
	}
	return o.On
}

func (o AggregateOptions) method() frame.Statistic {
	if o.Method == "" {
		return frame.Median
	}
	return o.Method
}

func (o AggregateOptions) classifier() frame.Classifier {
	cls := frame.DefaultClassifier()
	if o.Marker != "" {
		cls.Marker = o.Marker
	}
	cls.Prefix = o.MarkerPrefix
	return cls
}

// Collector holds the file paths discovered under one results directory. A
// run ID correlates everything one collection run logs.
type Collector struct {
	dir   string
	paths []string
	runID string
	log   logger.Logger
}

// New walks dir and returns a collector over every file found beneath it.
func New(dir string) (*Collector, error) {
	paths, err := discover.Walk(dir)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	return &Collector{
		dir:   dir,
		paths: paths,
		runID: runID,
		log:   logger.Collector().WithField("run_id", runID),
	}, nil
}

// RunID identifies this collection run in logs.
func (c *Collector) RunID() string {
	return c.runID
}

// Paths returns the discovered file paths in walk order.
func (c *Collector) Paths() []string {
	paths := make([]string, len(c.paths))
	copy(paths, c.paths)
	return paths
}

// Report summarizes a results directory for inspection.
type Report struct {
	Dir        string
	Files      int
	Extensions map[string]int
	Matches    []string
}

// Scan reports what discovery found and which files a select would collect.
func (c *Collector) Scan(selectName string) Report {
	if selectName == "" {
		selectName = DefaultSelect
	}
	return Report{
		Dir:        c.dir,
		Files:      len(c.paths),
		Extensions: discover.CountExtensions(c.paths),
		Matches:    discover.MatchSelect(c.paths, selectName),
	}
}

// Load reads every file matching the select target and appends it to the
// store table named after the select. Files load sequentially in walk order;
// the first failure stops the run.
func (c *Collector) Load(ctx context.Context, st *store.Store, opts LoadOptions) error {
	files, table, err := c.matches(opts)
	if err != nil {
		return err
	}

	for _, path := range files {
		tbl, err := c.readNormalized(path, opts)
		if err != nil {
			return err
		}
		if err := st.Append(ctx, tbl, table); err != nil {
			return err
		}
	}

	c.log.Info("load complete", "table", table, "files", len(files))
	return nil
}

// LoadAggregated reads, aggregates, and appends every matching file to the
// "<select>_agg" table. The statistic is validated before any file is read,
// so an unsupported one never touches the store.
func (c *Collector) LoadAggregated(ctx context.Context, st *store.Store, opts AggregateOptions) error {
	if _, err := frame.ParseStatistic(string(opts.method())); err != nil {
		return err
	}

	files, table, err := c.matches(opts.LoadOptions)
	if err != nil {
		return err
	}
	table += "_agg"

	for _, path := range files {
		agg, err := c.readAggregated(path, opts)
		if err != nil {
			return err
		}
		if err := st.Append(ctx, agg, table); err != nil {
			return err
		}
	}

	c.log.Info("aggregated load complete",
		"table", table,
		"files", len(files),
		"method", string(opts.method()),
	)
	return nil
}

// ExportAggregated aggregates every matching file and writes the combined
// rows to one CSV at path. This is the escape hatch for tables too wide for
// the store's bind budget. Every file must aggregate to an identical column
// schema; a mismatch aborts before anything is written.
func (c *Collector) ExportAggregated(path string, opts AggregateOptions) error {
	if _, err := frame.ParseStatistic(string(opts.method())); err != nil {
		return err
	}

	files, _, err := c.matches(opts.LoadOptions)
	if err != nil {
		return err
	}

	parts := make([]*frame.Table, 0, len(files))
	for _, p := range files {
		agg, err := c.readAggregated(p, opts)
		if err != nil {
			return err
		}
		parts = append(parts, agg)
	}

	combined, err := concatTables(parts)
	if err != nil {
		return err
	}

	if err := csvio.WriteTableFile(path, combined); err != nil {
		return err
	}

	c.log.Info("aggregated export complete",
		"path", path,
		"files", len(files),
		"rows", combined.Rows(),
	)
	return nil
}

func (c *Collector) matches(opts LoadOptions) (files []string, table string, err error) {
	sel := opts.selectName()
	files = discover.MatchSelect(c.paths, sel)
	if len(files) == 0 {
		return nil, "", fmt.Errorf("%q under %s: %w", discover.FileName(sel), c.dir, ErrNoMatches)
	}
	return files, discover.TableName(sel), nil
}

// readNormalized reads one result file and collapses its header when the
// file was read with more than one header row.
func (c *Collector) readNormalized(path string, opts LoadOptions) (*frame.Table, error) {
	tbl, err := csvio.ReadTableFile(path, csvio.ReadOptions{HeaderDepth: opts.HeaderDepth})
	if err != nil {
		return nil, err
	}

	if tbl.HeaderDepth() > 1 {
		tbl, err = frame.CollapseColumns(tbl, opts.separator())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	return tbl, nil
}

func (c *Collector) readAggregated(path string, opts AggregateOptions) (*frame.Table, error) {
	tbl, err := c.readNormalized(path, opts.LoadOptions)
	if err != nil {
		return nil, err
	}

	agg, err := frame.Aggregate(tbl, opts.on(), opts.method(), opts.classifier())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return agg, nil
}

// concatTables stacks aggregated tables that share a column schema. Numeric
// kinds may disagree between files (a column of whole numbers reads as Int);
// those widen to Float. Any other disagreement, including column names or
// order, is a schema mismatch.
func concatTables(parts []*frame.Table) (*frame.Table, error) {
	if len(parts) == 1 {
		return parts[0], nil
	}

	names := parts[0].Names()
	kinds := make([]frame.Kind, len(names))
	for i, c := range parts[0].Columns() {
		kinds[i] = c.Kind
	}

	for _, part := range parts[1:] {
		other := part.Names()
		if len(other) != len(names) {
			return nil, fmt.Errorf("want %d columns, got %d: %w", len(names), len(other), ErrSchemaMismatch)
		}
		for i, name := range other {
			if name != names[i] {
				return nil, fmt.Errorf("column %d is %q, want %q: %w", i, name, names[i], ErrSchemaMismatch)
			}
		}
		for i, c := range part.Columns() {
			if c.Kind == kinds[i] {
				continue
			}
			if c.Kind.Numeric() && kinds[i].Numeric() {
				kinds[i] = frame.Float
				continue
			}
			return nil, fmt.Errorf("column %q is %s, want %s: %w", names[i], c.Kind, kinds[i], ErrSchemaMismatch)
		}
	}

	cols := make([]frame.Column, len(names))
	for i := range names {
		var values []any
		for _, part := range parts {
			for _, v := range part.Columns()[i].Values {
				values = append(values, widen(v, kinds[i]))
			}
		}
		cols[i] = frame.Column{Name: names[i], Kind: kinds[i], Values: values}
	}

	return frame.New(1, cols...)
}

func widen(v any, kind frame.Kind) any {
	if kind != frame.Float {
		return v
	}
	if n, ok := v.(int64); ok {
		return float64(n)
	}
	return v
}
