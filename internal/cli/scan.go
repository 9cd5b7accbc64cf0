package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/cellops/meld/internal/collector"
)

var scanSelect string

var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "Report what a results directory contains",
	Long: `Walks a pipeline results directory and reports the files found: a total
count, a histogram of file extensions, and the files the select target
would collect. Nothing is read or loaded.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanSelect, "select", "", "Per-job result file to match (default from meld.yaml or DATA)")
}

func runScan(cmd *cobra.Command, args []string) error {
	selectName := scanSelect
	if selectName == "" && meldConfig != nil {
		selectName = meldConfig.Results.Select
	}

	c, err := collector.New(args[0])
	if err != nil {
		return err
	}

	report := c.Scan(selectName)

	cmd.Printf("Results directory: %s\n", report.Dir)
	cmd.Printf("Files found: %d\n", report.Files)

	cmd.Printf("\nExtensions:\n")
	exts := make([]string, 0, len(report.Extensions))
	for ext := range report.Extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		label := ext
		if label == "" {
			label = "(none)"
		}
		cmd.Printf("  %-10s %d\n", label, report.Extensions[ext])
	}

	cmd.Printf("\nMatching files (%d):\n", len(report.Matches))
	for _, path := range report.Matches {
		cmd.Printf("  %s\n", path)
	}

	return nil
}
