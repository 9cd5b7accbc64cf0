package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/cellops/meld/internal/collector"
	"github.com/cellops/meld/pkg/frame"
)

var (
	aggSelect      string
	aggHeaderDepth int
	aggSeparator   string
	aggDatabase    string
	aggOn          []string
	aggMethod      string
	aggMarker      string
	aggPrefix      bool
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate <directory>",
	Short: "Aggregate replicate rows and load the summaries",
	Long: `Collects every result file matching the select target, reduces replicate
rows to one summary row per group key (median, mean, or sum over feature
columns; first-seen values for metadata columns), and appends the result to
the "<select>_agg" table.`,
	Args: cobra.ExactArgs(1),
	RunE: runAggregate,
}

func init() {
	aggregateCmd.Flags().StringVar(&aggSelect, "select", "", "Per-job result file to collect (default from meld.yaml or DATA)")
	aggregateCmd.Flags().IntVar(&aggHeaderDepth, "header-depth", 0, "Number of header rows in each file (default from meld.yaml or 1)")
	aggregateCmd.Flags().StringVar(&aggSeparator, "separator", "", "Separator joining header levels (default from meld.yaml or _)")
	aggregateCmd.Flags().StringVar(&aggDatabase, "database", "", "SQLite database name when --url is not given")
	aggregateCmd.Flags().StringSliceVar(&aggOn, "on", nil, "Group key column(s) (default from meld.yaml or Image_ImageNumber)")
	aggregateCmd.Flags().StringVar(&aggMethod, "method", "", "Aggregation statistic: mean, median, or sum (default from meld.yaml or median)")
	aggregateCmd.Flags().StringVar(&aggMarker, "metadata-marker", "", "Marker string tagging metadata columns (default from meld.yaml or Metadata)")
	aggregateCmd.Flags().BoolVar(&aggPrefix, "metadata-prefix", false, "Match the marker only at the start of column names")
}

// resolveAggregateOptions layers the aggregation flags over meld.yaml the
// same way resolveLoadOptions does for the shared load settings. The
// statistic name is validated here so a bad --method fails before any file
// or database is touched.
func resolveAggregateOptions(cmd *cobra.Command, selectName string, headerDepth int, separator string,
	on []string, method, marker string, prefix bool) (collector.AggregateOptions, error) {

	opts := collector.AggregateOptions{
		LoadOptions:  resolveLoadOptions(selectName, headerDepth, separator),
		On:           on,
		Marker:       marker,
		MarkerPrefix: prefix,
	}

	if meldConfig != nil {
		if len(opts.On) == 0 {
			opts.On = meldConfig.Aggregate.On
		}
		if method == "" {
			method = meldConfig.Aggregate.Method
		}
		if opts.Marker == "" {
			opts.Marker = meldConfig.Aggregate.MetadataMarker
		}
		if !cmd.Flags().Changed("metadata-prefix") {
			opts.MarkerPrefix = meldConfig.Aggregate.MetadataPrefix
		}
	}

	if method != "" {
		stat, err := frame.ParseStatistic(method)
		if err != nil {
			return collector.AggregateOptions{}, err
		}
		opts.Method = stat
	}

	return opts, nil
}

func runAggregate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	dir := args[0]
	opts, err := resolveAggregateOptions(cmd, aggSelect, aggHeaderDepth, aggSeparator,
		aggOn, aggMethod, aggMarker, aggPrefix)
	if err != nil {
		return err
	}

	if verbose {
		cmd.Printf("Results directory: %s\n", dir)
		cmd.Printf("Select target: %s\n", opts.Select)
		cmd.Printf("Group key: %v\n", opts.On)
		cmd.Printf("Statistic: %s\n", opts.Method)
	}

	c, err := collector.New(dir)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, dir, aggDatabase)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := c.LoadAggregated(ctx, st, opts); err != nil {
		return err
	}

	cmd.Printf("Loaded aggregated %q files into the table store\n", opts.Select)
	return nil
}
