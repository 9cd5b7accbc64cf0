package cli

import (
	"github.com/spf13/cobra"

	"github.com/cellops/meld/pkg/meld"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display Meld version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Print(meld.FullVersionInfo())
	},
}
