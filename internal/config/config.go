// Package config loads framework configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the framework configuration.
type Config struct {
	// LogLevel is the minimum level the default sink emits
	// (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// Metrics enables the dispatch metrics collector.
	Metrics bool `yaml:"metrics"`

	// PrefsDir is the remote preference group directory. Empty
	// disables the preference collaborator.
	PrefsDir string `yaml:"prefs_dir"`

	// FilesDir is the remote shared-file directory. Empty disables
	// the file collaborator.
	FilesDir string `yaml:"files_dir"`

	// Modules lists module directories to load at startup.
	Modules []string `yaml:"modules"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Metrics:  true,
	}
}

// Load reads a YAML configuration file and applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err != nil && os.IsNotExist(err):
			// Defaults apply.
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("config: %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides fields from HOOKCHAIN_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("HOOKCHAIN_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("HOOKCHAIN_METRICS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Metrics = b
		}
	}
	if v := os.Getenv("HOOKCHAIN_PREFS_DIR"); v != "" {
		c.PrefsDir = v
	}
	if v := os.Getenv("HOOKCHAIN_FILES_DIR"); v != "" {
		c.FilesDir = v
	}
}
