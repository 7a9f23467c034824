// Package pipeline drives the multi-stage frontmatter aggregation run as
// an explicit state machine: one command per legal transition, failures
// carried as states rather than raised as errors.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default execution limits.
const (
	DefaultMaxExecutionTime  = 5 * time.Minute
	DefaultParallelThreshold = 4
	DefaultWorkers           = 8
)

// Config is the full pipeline configuration, passed explicitly to the
// executor. No hidden global instance holds it.
type Config struct {
	SchemaPath   string `json:"schema_path" yaml:"schema_path"`
	OutputPath   string `json:"output_path" yaml:"output_path"`
	InputPattern string `json:"input_pattern" yaml:"input_pattern"`

	// OutputFormat is json, yaml, toml, or markdown. Empty means infer
	// from the output path extension.
	OutputFormat string `json:"output_format,omitempty" yaml:"output_format,omitempty"`

	// Parallel fans document processing out across workers once the file
	// count reaches ParallelThreshold.
	Parallel          bool `json:"parallel,omitempty" yaml:"parallel,omitempty"`
	ParallelThreshold int  `json:"parallel_threshold,omitempty" yaml:"parallel_threshold,omitempty"`
	Workers           int  `json:"workers,omitempty" yaml:"workers,omitempty"`

	// MaxExecutionTime bounds the whole run; checked between command
	// boundaries, never mid-command.
	MaxExecutionTime time.Duration `json:"max_execution_time,omitempty" yaml:"max_execution_time,omitempty"`

	// MaxRefDepth, when positive, bounds schema ref recursion on top of
	// cycle detection.
	MaxRefDepth int `json:"max_ref_depth,omitempty" yaml:"max_ref_depth,omitempty"`
}

// Validate checks the required fields and fills defaults.
func (c *Config) Validate() error {
	if c.SchemaPath == "" {
		return &ConfigError{Reason: "schema path is required"}
	}
	if c.OutputPath == "" {
		return &ConfigError{Reason: "output path is required"}
	}
	if c.InputPattern == "" {
		return &ConfigError{Reason: "input pattern is required"}
	}
	if c.MaxExecutionTime <= 0 {
		c.MaxExecutionTime = DefaultMaxExecutionTime
	}
	if c.ParallelThreshold <= 0 {
		c.ParallelThreshold = DefaultParallelThreshold
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.OutputFormat == "" {
		c.OutputFormat = FormatFromPath(c.OutputPath)
	}
	return nil
}

// FormatFromPath infers the output format from a file extension,
// defaulting to json.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".md", ".markdown":
		return "markdown"
	default:
		return "json"
	}
}

// LoadConfig reads a pipeline config file (YAML or JSON, detected by
// extension then content) and returns the parsed Config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: read config: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yml" {
		ext = ".yaml"
	}
	var cfg Config
	switch {
	case ext == ".yaml":
		err = yaml.Unmarshal(data, &cfg)
	case ext == ".json", strings.HasPrefix(strings.TrimSpace(string(data)), "{"):
		err = json.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("pipeline: parse config: %w", err)
	}
	return &cfg, nil
}
