package cli

import (
	"github.com/spf13/cobra"

	"github.com/cellops/meld/internal/logger"
	"github.com/cellops/meld/pkg/meld"
)

// Global configuration variables
var (
	configFile  string
	meldConfig  *MeldConfig
	databaseURL string
	debug       bool
	verbose     bool
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "meld",
		Short: "Meld - Pipeline Result Collation",
		Long: `Meld collects the per-job result files a distributed image-analysis
pipeline scatters over a directory tree and loads them into one table store.

Meld provides tools for:
- Scanning a results directory for per-job output files
- Collapsing multi-row CSV headers into flat column names
- Aggregating replicate rows per image with median, mean, or sum
- Loading results into SQLite or PostgreSQL, or a flat CSV for wide tables`,
		Version: meld.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetVerbose(verbose)
			logger.SetDebug(debug)

			var err error
			meldConfig, err = LoadMeldConfig(configFile)
			if err != nil {
				if verbose {
					cmd.Printf("Warning: Failed to load config file: %v\n", err)
				}
			}

			if meldConfig != nil && databaseURL == "" && meldConfig.Database.URL != "" {
				databaseURL = meldConfig.Database.URL
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: meld.yaml)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "url", "", "table store connection URL (sqlite:// or postgres://)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(aggregateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}
