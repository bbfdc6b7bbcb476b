package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "diaggroups.yaml"

type Config struct {
	// IncludeDirs are searched for `include` targets after the including file's directory.
	IncludeDirs []string `yaml:"include_dirs"`
	Report      struct {
		TopLevel bool   `yaml:"top_level"`
		Unique   bool   `yaml:"unique"`
		Format   string `yaml:"format"` // text, json, yaml or mermaid
	} `yaml:"report"`
	Policy struct {
		OnCycle      string `yaml:"on_cycle"`      // error or truncate
		OnUnresolved string `yaml:"on_unresolved"` // error, skip or mark
	} `yaml:"policy"`
	Log struct {
		Level string `yaml:"level"` // debug, info, warn or error
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Report.Format = "text"
	cfg.Policy.OnCycle = "error"
	cfg.Policy.OnUnresolved = "error"
	cfg.Log.Level = "warn"
	return cfg
}

// LoadConfig reads path on top of the defaults. A missing file is not an
// error; a malformed one is.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// 3. Override with Environment Variables if present
	if dirs := os.Getenv("DIAGGROUPS_INCLUDE_DIRS"); dirs != "" {
		cfg.IncludeDirs = filepath.SplitList(dirs)
	}
	if format := os.Getenv("DIAGGROUPS_FORMAT"); format != "" {
		cfg.Report.Format = format
	}
	if policy := os.Getenv("DIAGGROUPS_ON_CYCLE"); policy != "" {
		cfg.Policy.OnCycle = policy
	}
	if policy := os.Getenv("DIAGGROUPS_ON_UNRESOLVED"); policy != "" {
		cfg.Policy.OnUnresolved = policy
	}
	if level := os.Getenv("DIAGGROUPS_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown format, policy and log level names.
func (c *Config) Validate() error {
	if !slices.Contains([]string{"text", "json", "yaml", "mermaid"}, c.Report.Format) {
		return fmt.Errorf("config: invalid report format %q", c.Report.Format)
	}
	if !slices.Contains([]string{"error", "truncate"}, c.Policy.OnCycle) {
		return fmt.Errorf("config: invalid cycle policy %q", c.Policy.OnCycle)
	}
	if !slices.Contains([]string{"error", "skip", "mark"}, c.Policy.OnUnresolved) {
		return fmt.Errorf("config: invalid unresolved policy %q", c.Policy.OnUnresolved)
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Log.Level) {
		return fmt.Errorf("config: invalid log level %q", c.Log.Level)
	}
	return nil
}
