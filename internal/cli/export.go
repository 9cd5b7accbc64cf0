package cli

import (
	"github.com/spf13/cobra"

	"github.com/cellops/meld/internal/collector"
	"github.com/cellops/meld/internal/discover"
)

var (
	exportSelect      string
	exportHeaderDepth int
	exportSeparator   string
	exportOn          []string
	exportMethod      string
	exportMarker      string
	exportPrefix      bool
	exportOut         string
)

var exportCmd = &cobra.Command{
	Use:   "export <directory>",
	Short: "Aggregate replicate rows and write one flat CSV",
	Long: `Collects and aggregates every result file matching the select target, then
writes all the summary rows to a single CSV file instead of the table store.
This is the path for tables too wide for batched database inserts.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportSelect, "select", "", "Per-job result file to collect (default from meld.yaml or DATA)")
	exportCmd.Flags().IntVar(&exportHeaderDepth, "header-depth", 0, "Number of header rows in each file (default from meld.yaml or 1)")
	exportCmd.Flags().StringVar(&exportSeparator, "separator", "", "Separator joining header levels (default from meld.yaml or _)")
	exportCmd.Flags().StringSliceVar(&exportOn, "on", nil, "Group key column(s) (default from meld.yaml or Image_ImageNumber)")
	exportCmd.Flags().StringVar(&exportMethod, "method", "", "Aggregation statistic: mean, median, or sum (default from meld.yaml or median)")
	exportCmd.Flags().StringVar(&exportMarker, "metadata-marker", "", "Marker string tagging metadata columns (default from meld.yaml or Metadata)")
	exportCmd.Flags().BoolVar(&exportPrefix, "metadata-prefix", false, "Match the marker only at the start of column names")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output CSV path (default: <select>_agg.csv)")
}

func runExport(cmd *cobra.Command, args []string) error {
	dir := args[0]
	opts, err := resolveAggregateOptions(cmd, exportSelect, exportHeaderDepth, exportSeparator,
		exportOn, exportMethod, exportMarker, exportPrefix)
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = discover.TableName(opts.Select) + "_agg.csv"
	}

	if verbose {
		cmd.Printf("Results directory: %s\n", dir)
		cmd.Printf("Select target: %s\n", opts.Select)
		cmd.Printf("Output file: %s\n", out)
	}

	c, err := collector.New(dir)
	if err != nil {
		return err
	}

	if err := c.ExportAggregated(out, opts); err != nil {
		return err
	}

	cmd.Printf("Exported aggregated %q files to %s\n", opts.Select, out)
	return nil
}
