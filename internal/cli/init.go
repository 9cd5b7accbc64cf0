package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cellops/meld/pkg/frame"
)

var (
	initProject string
	initSelect  string
	initForce   bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new Meld configuration file",
	Long: `Creates a meld.yaml configuration file with default settings.
This helps you get started with Meld by creating a template configuration
that you can customize for your pipeline's output layout.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initProject, "project", "", "Project name")
	initCmd.Flags().StringVar(&initSelect, "select", "DATA", "Per-job result file to collect")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing configuration file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := "meld.yaml"
	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("meld.yaml already exists. Use --force to overwrite")
	}

	if initProject == "" {
		dir, err := os.Getwd()
		if err == nil {
			initProject = filepath.Base(dir)
		} else {
			initProject = "my-experiment"
		}
	}

	config := &MeldConfig{
		Version: "1",
		Project: initProject,
	}

	config.Database.Name = "results"

	config.Results.Select = initSelect
	config.Results.HeaderDepth = 1
	config.Results.Separator = frame.DefaultSeparator

	config.Aggregate.On = []string{"Image_ImageNumber"}
	config.Aggregate.Method = string(frame.Median)
	config.Aggregate.MetadataMarker = frame.DefaultMarker
	config.Aggregate.MetadataPrefix = false

	if err := SaveMeldConfig(config, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Created meld.yaml configuration file\n")
	cmd.Printf("\nNext steps:\n")
	cmd.Printf("1. Set results.header_depth to the number of header rows your files carry\n")
	cmd.Printf("2. Run 'meld scan <directory>' to see what would be collected\n")
	cmd.Printf("3. Run 'meld load <directory>' to load results into the table store\n")
	cmd.Printf("4. Run 'meld aggregate <directory>' to load one summary row per image\n")

	return nil
}
