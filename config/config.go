package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all tunable limits of the engine plus CLI concerns.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig mirrors the session options.
type EngineConfig struct {
	HistoryDepth      int      `yaml:"history_depth"`
	MaxCandidates     int      `yaml:"max_candidates"`
	DefaultFuzzyLimit int      `yaml:"default_fuzzy_limit"`
	PreviewListCap    int      `yaml:"preview_list_cap"`
	PreviewStringCap  int      `yaml:"preview_string_cap"`
	GrepDefaultFlags  []string `yaml:"grep_default_flags"`
}

// grep flags the engine supports; v1 always runs with all three on.
var grepFlags = map[string]bool{"global": true, "multiline": true, "case-insensitive": true}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			HistoryDepth:      32,
			MaxCandidates:     100,
			DefaultFuzzyLimit: 10,
			PreviewListCap:    20,
			PreviewStringCap:  4096,
			GrepDefaultFlags:  []string{"global", "multiline", "case-insensitive"},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a yaml config file. Missing fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir looks for nucleus.yaml in dir; absent files yield defaults.
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "nucleus.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// validate resets fields below their documented minimums to the defaults and
// rejects grep flag sets the engine cannot honor.
func (c *Config) validate() error {
	d := DefaultConfig()
	if c.Engine.HistoryDepth < 1 {
		c.Engine.HistoryDepth = d.Engine.HistoryDepth
	}
	if c.Engine.MaxCandidates < 1 {
		c.Engine.MaxCandidates = d.Engine.MaxCandidates
	}
	if c.Engine.DefaultFuzzyLimit < 1 {
		c.Engine.DefaultFuzzyLimit = d.Engine.DefaultFuzzyLimit
	}
	if c.Engine.PreviewListCap < 1 {
		c.Engine.PreviewListCap = d.Engine.PreviewListCap
	}
	if c.Engine.PreviewStringCap < 64 {
		c.Engine.PreviewStringCap = d.Engine.PreviewStringCap
	}
	if len(c.Engine.GrepDefaultFlags) == 0 {
		c.Engine.GrepDefaultFlags = d.Engine.GrepDefaultFlags
	}
	for _, f := range c.Engine.GrepDefaultFlags {
		if !grepFlags[f] {
			return fmt.Errorf("unsupported grep flag: %s", f)
		}
	}
	if len(c.Engine.GrepDefaultFlags) != len(grepFlags) {
		return fmt.Errorf("grep flags cannot be disabled in this version")
	}
	return nil
}
