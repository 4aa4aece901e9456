// Package config handles workgraph configuration from YAML files and
// environment variables.
//
// Configuration is loaded from an optional YAML file via Load() or from
// environment variables prefixed with WORKGRAPH_ via LoadFromEnv();
// environment values override file values when both are present. Validate()
// checks the result before use.
//
// Environment Variables:
//   - WORKGRAPH_DATA_DIR="./data"
//   - WORKGRAPH_IN_MEMORY=true
//   - WORKGRAPH_MAX_DEPTH=20
//   - WORKGRAPH_MAX_RESULTS=100
//   - WORKGRAPH_MAX_CYCLE_LENGTH=10
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all workgraph settings.
//
// Traversal bounds are structural termination limits: MaxDepth caps hop
// counts, MaxResults caps path enumeration, MaxCycleLength caps cycle
// detection. Zero values mean "use the built-in default" downstream.
type Config struct {
	// Traversal bounds.
	MaxDepth       int `yaml:"max_depth"`
	MaxResults     int `yaml:"max_results"`
	MaxCycleLength int `yaml:"max_cycle_length"`

	// Storage settings.
	DataDir  string `yaml:"data_dir"`
	InMemory bool   `yaml:"in_memory"`
}

// Default returns the stock configuration: in-memory storage with the
// standard traversal bounds.
func Default() *Config {
	return &Config{
		MaxDepth:       20,
		MaxResults:     100,
		MaxCycleLength: 10,
		DataDir:        "./data",
		InMemory:       true,
	}
}

// Load reads a YAML config file, applies environment overrides, and
// validates. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv builds a config from defaults plus WORKGRAPH_* environment
// variables, skipping the file step entirely.
func LoadFromEnv() *Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv("WORKGRAPH_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("WORKGRAPH_IN_MEMORY"); v != "" {
		c.InMemory = parseBool(v, c.InMemory)
	}
	if v := os.Getenv("WORKGRAPH_MAX_DEPTH"); v != "" {
		c.MaxDepth = parseInt(v, c.MaxDepth)
	}
	if v := os.Getenv("WORKGRAPH_MAX_RESULTS"); v != "" {
		c.MaxResults = parseInt(v, c.MaxResults)
	}
	if v := os.Getenv("WORKGRAPH_MAX_CYCLE_LENGTH"); v != "" {
		c.MaxCycleLength = parseInt(v, c.MaxCycleLength)
	}
}

// Validate checks the configuration for invalid combinations.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth)
	}
	if c.MaxResults < 0 {
		return fmt.Errorf("max_results must be >= 0, got %d", c.MaxResults)
	}
	if c.MaxCycleLength < 0 {
		return fmt.Errorf("max_cycle_length must be >= 0, got %d", c.MaxCycleLength)
	}
	if !c.InMemory && c.DataDir == "" {
		return fmt.Errorf("data_dir is required when in_memory is false")
	}
	return nil
}

// String returns a one-line summary suitable for startup logging.
func (c *Config) String() string {
	storage := c.DataDir
	if c.InMemory {
		storage = "in-memory"
	}
	return fmt.Sprintf("storage=%s max_depth=%d max_results=%d max_cycle_length=%d",
		storage, c.MaxDepth, c.MaxResults, c.MaxCycleLength)
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func parseInt(v string, fallback int) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
