package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultOutputPath is the bundle file written when none is configured.
const DefaultOutputPath = "graph.txt"

// Config holds the settings of a bundle run
type Config struct {
	// InputDir is the directory whose filenames are bundled
	InputDir string `yaml:"input_dir"`

	// OutputPath is the bundle file, overwritten on every run
	OutputPath string `yaml:"output_path"`

	// DBPath is an optional catalog database recording each run
	DBPath string `yaml:"db_path"`

	// Label tags catalog runs
	Label string `yaml:"label"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		OutputPath: DefaultOutputPath,
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
// Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.OutputPath == "" {
		cfg.OutputPath = DefaultOutputPath
	}
	return cfg, nil
}

// ApplyOverrides replaces config values with the non-empty arguments.
func (c *Config) ApplyOverrides(inputDir, outputPath, dbPath, label string) {
	if inputDir != "" {
		c.InputDir = inputDir
	}
	if outputPath != "" {
		c.OutputPath = outputPath
	}
	if dbPath != "" {
		c.DBPath = dbPath
	}
	if label != "" {
		c.Label = label
	}
}

// Validate reports missing required settings
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return errors.New("input directory is required")
	}
	if c.OutputPath == "" {
		return errors.New("output path is required")
	}
	return nil
}
