// Package config loads the optional CLI configuration file. Flags always
// win over file values; the file only supplies defaults.
package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds investigation defaults the CLI falls back to.
type Config struct {
	// Region is the default AWS region for problem statements.
	Region string `yaml:"region"`

	// Output is the default output format (human, json, yaml, markdown).
	Output string `yaml:"output"`

	// Parallelism caps concurrent independent checks; 1 = sequential.
	Parallelism int `yaml:"parallelism"`

	// Fixture is the default replay fixture path, if investigations
	// should run from recorded data.
	Fixture string `yaml:"fixture"`

	// ReportPath, when set, is where the Markdown report gets written in
	// addition to terminal output.
	ReportPath string `yaml:"report_path"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Region:      "us-east-1",
		Output:      "human",
		Parallelism: 1,
	}
}

// Load reads and validates a YAML config file, layered over Default.
func Load(path string) (Config, error) {
	cfg := Default()

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return cfg, fmt.Errorf("failed to load config from %q: %w", path, err)
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return cfg, fmt.Errorf("failed to parse config from %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed for %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	switch c.Output {
	case "", "human", "json", "yaml", "markdown":
	default:
		return fmt.Errorf("unsupported output format %q", c.Output)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative, got %d", c.Parallelism)
	}
	return nil
}
