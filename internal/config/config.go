package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fwtools/fgt-export/internal/export"
	"github.com/fwtools/fgt-export/internal/logging"
	"github.com/fwtools/fgt-export/internal/parser"
	"github.com/fwtools/fgt-export/internal/source"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for an export run.
type Config struct {
	Blocks         BlocksConfig  `yaml:"blocks"`
	DefaultContext string        `yaml:"default_context"`
	Input          InputConfig   `yaml:"input"`
	Output         OutputConfig  `yaml:"output"`
	Strict         bool          `yaml:"strict"` // Reject attributes missed by the discovery pass
	Logging        LoggingConfig `yaml:"logging"`
	Metrics        MetricsConfig `yaml:"metrics"`
}

// BlocksConfig names the config blocks the parser looks for.
type BlocksConfig struct {
	Partition string `yaml:"partition"` // Block listing the vdoms
	Target    string `yaml:"target"`    // Block whose objects become rows
}

// InputConfig describes the backup file.
type InputConfig struct {
	Encoding string `yaml:"encoding"` // Charset of the backup, empty for raw bytes
}

// OutputConfig configures the tabular writer.
type OutputConfig struct {
	Format            string  `yaml:"format"`
	Delimiter         string  `yaml:"delimiter"`
	TrailingDelimiter *bool   `yaml:"trailing_delimiter"` // Pointer to tell unset from false
	Blank             *string `yaml:"blank"`              // Unset: a space for csv, empty otherwise
	Table             string  `yaml:"table"`
}

// LoggingConfig configures diagnostics on stderr.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	File string `yaml:"file"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	trailing := true
	return &Config{
		Blocks: BlocksConfig{
			Partition: parser.DefaultPartitionHeader,
			Target:    parser.DefaultTargetHeader,
		},
		DefaultContext: parser.DefaultContext,
		Output: OutputConfig{
			Format:            export.FormatCSV,
			Delimiter:         ",",
			TrailingDelimiter: &trailing,
			Table:             "services",
		},
		Logging: LoggingConfig{Level: logging.DefaultLevel},
	}
}

// Load reads a config file from the given path. Keys missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for required fields and consistency.
func (c *Config) Validate() error {
	if err := validateHeader(c.Blocks.Partition, "blocks.partition"); err != nil {
		return err
	}
	if err := validateHeader(c.Blocks.Target, "blocks.target"); err != nil {
		return err
	}

	if c.DefaultContext == "" {
		return fmt.Errorf("default_context is required")
	}
	if strings.ContainsAny(c.DefaultContext, " \t") {
		return fmt.Errorf("default_context must be a single word: %q", c.DefaultContext)
	}

	if _, err := source.LookupEncoding(c.Input.Encoding); err != nil {
		return fmt.Errorf("input.encoding: %w", err)
	}

	if strings.ContainsAny(c.Output.Delimiter, "\r\n") {
		return fmt.Errorf("output.delimiter must not contain line breaks")
	}
	if strings.ContainsAny(c.blankCell(), "\r\n") {
		return fmt.Errorf("output.blank must not contain line breaks")
	}
	if err := c.ExportOptions().Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level is invalid: %q", c.Logging.Level)
	}

	return nil
}

// validateHeader checks that a block header looks like "config <path>".
func validateHeader(header, name string) error {
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return fmt.Errorf("%s is required", name)
	}
	if fields[0] != "config" || len(fields) < 2 {
		return fmt.Errorf("%s must look like \"config <section>\": %q", name, header)
	}
	return nil
}

// ParserOptions returns the parser settings of this configuration.
func (c *Config) ParserOptions() parser.Options {
	return parser.Options{
		PartitionHeader: c.Blocks.Partition,
		TargetHeader:    c.Blocks.Target,
		DefaultContext:  c.DefaultContext,
		Strict:          c.Strict,
		BlankCell:       c.blankCell(),
	}
}

// blankCell returns the configured placeholder for unset attributes.
func (c *Config) blankCell() string {
	if c.Output.Blank != nil {
		return *c.Output.Blank
	}
	if c.Output.Format == export.FormatCSV {
		return export.CSVBlank
	}
	return ""
}

// ExportOptions returns the writer settings of this configuration.
func (c *Config) ExportOptions() export.Options {
	trailing := true
	if c.Output.TrailingDelimiter != nil {
		trailing = *c.Output.TrailingDelimiter
	}
	return export.Options{
		Format:            c.Output.Format,
		Delimiter:         c.Output.Delimiter,
		TrailingDelimiter: trailing,
		Table:             c.Output.Table,
	}
}
