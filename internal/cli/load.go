package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/cellops/meld/internal/collector"
)

var (
	loadSelect      string
	loadHeaderDepth int
	loadSeparator   string
	loadDatabase    string
)

var loadCmd = &cobra.Command{
	Use:   "load <directory>",
	Short: "Load result files into the table store",
	Long: `Collects every result file matching the select target under a results
directory and appends it to the table store, one table per select. Files
with multi-row headers have their headers collapsed into flat column names
before loading.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadSelect, "select", "", "Per-job result file to collect (default from meld.yaml or DATA)")
	loadCmd.Flags().IntVar(&loadHeaderDepth, "header-depth", 0, "Number of header rows in each file (default from meld.yaml or 1)")
	loadCmd.Flags().StringVar(&loadSeparator, "separator", "", "Separator joining header levels (default from meld.yaml or _)")
	loadCmd.Flags().StringVar(&loadDatabase, "database", "", "SQLite database name when --url is not given")
}

// resolveLoadOptions applies the flag > meld.yaml > built-in default
// precedence shared by load, aggregate, and export.
func resolveLoadOptions(selectName string, headerDepth int, separator string) collector.LoadOptions {
	opts := collector.LoadOptions{
		Select:      selectName,
		HeaderDepth: headerDepth,
		Separator:   separator,
	}

	if meldConfig != nil {
		if opts.Select == "" {
			opts.Select = meldConfig.Results.Select
		}
		if opts.HeaderDepth == 0 {
			opts.HeaderDepth = meldConfig.Results.HeaderDepth
		}
		if opts.Separator == "" {
			opts.Separator = meldConfig.Results.Separator
		}
	}

	if opts.Select == "" {
		opts.Select = collector.DefaultSelect
	}
	if opts.HeaderDepth == 0 {
		opts.HeaderDepth = 1
	}

	return opts
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	dir := args[0]
	opts := resolveLoadOptions(loadSelect, loadHeaderDepth, loadSeparator)

	if verbose {
		cmd.Printf("Results directory: %s\n", dir)
		cmd.Printf("Select target: %s\n", opts.Select)
		cmd.Printf("Header depth: %d\n", opts.HeaderDepth)
	}

	c, err := collector.New(dir)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, dir, loadDatabase)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := c.Load(ctx, st, opts); err != nil {
		return err
	}

	cmd.Printf("Loaded %q files into the table store\n", opts.Select)
	return nil
}
