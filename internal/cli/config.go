package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cellops/meld/pkg/frame"
)

// MeldConfig represents the meld.yaml configuration structure
type MeldConfig struct {
	Version string `yaml:"version"`
	Project string `yaml:"project"`

	Database struct {
		URL      string `yaml:"url"`
		Location string `yaml:"location"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Results struct {
		Select      string `yaml:"select"`
		HeaderDepth int    `yaml:"header_depth"`
		Separator   string `yaml:"separator"`
	} `yaml:"results"`

	Aggregate struct {
		On             []string `yaml:"on"`
		Method         string   `yaml:"method"`
		MetadataMarker string   `yaml:"metadata_marker"`
		MetadataPrefix bool     `yaml:"metadata_prefix"`
	} `yaml:"aggregate"`
}

func LoadMeldConfig(path string) (*MeldConfig, error) {
	if path == "" {
		locations := []string{"meld.yaml", "meld.yml", ".meld.yaml", ".meld.yml"}
		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
		if path == "" {
			return nil, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MeldConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Database.Name == "" {
		config.Database.Name = "results"
	}
	if config.Results.Select == "" {
		config.Results.Select = "DATA"
	}
	if config.Results.HeaderDepth == 0 {
		config.Results.HeaderDepth = 1
	}
	if config.Results.Separator == "" {
		config.Results.Separator = frame.DefaultSeparator
	}
	if len(config.Aggregate.On) == 0 {
		config.Aggregate.On = []string{"Image_ImageNumber"}
	}
	if config.Aggregate.Method == "" {
		config.Aggregate.Method = string(frame.Median)
	}
	if config.Aggregate.MetadataMarker == "" {
		config.Aggregate.MetadataMarker = frame.DefaultMarker
	}

	return &config, nil
}

func GetConfigPath() string {
	if path := os.Getenv("MELD_CONFIG"); path != "" {
		return path
	}

	locations := []string{"meld.yaml", "meld.yml", ".meld.yaml", ".meld.yml"}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

func SaveMeldConfig(config *MeldConfig, path string) error {
	if path == "" {
		path = "meld.yaml"
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
