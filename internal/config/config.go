package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents dommx application configuration options
type Config struct {
	// DataDir is the directory holding flow/orchestration/domain YAML files
	DataDir string `yaml:"data_dir"`

	// DBPath is the path to the results database
	DBPath string `yaml:"db_path"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// Locale selects the Domains/<locale> directory for decision trees and
	// action catalogs
	Locale string `yaml:"locale"`

	// DefaultLocale is used when a domain document is missing for Locale
	DefaultLocale string `yaml:"default_locale"`

	// StaleSaveAfter is how long unsaved changes may sit before the session
	// starts warning about them
	StaleSaveAfter time.Duration `yaml:"stale_save_after"`

	// LogoutDelay is how long the completion screen is shown before the
	// session ends
	LogoutDelay time.Duration `yaml:"logout_delay"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		DataDir:        "data",
		DBPath:         ".dommx/results.db",
		LogLevel:       "info",
		Locale:         "en",
		DefaultLocale:  "en",
		StaleSaveAfter: 3 * time.Minute,
		LogoutDelay:    5 * time.Second,
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations arrive as strings; parse them after the structural decode
	type yamlConfig struct {
		DataDir        string `yaml:"data_dir"`
		DBPath         string `yaml:"db_path"`
		LogLevel       string `yaml:"log_level"`
		Locale         string `yaml:"locale"`
		DefaultLocale  string `yaml:"default_locale"`
		StaleSaveAfter string `yaml:"stale_save_after"`
		LogoutDelay    string `yaml:"logout_delay"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.DataDir != "" {
		cfg.DataDir = yamlCfg.DataDir
	}
	if yamlCfg.DBPath != "" {
		cfg.DBPath = yamlCfg.DBPath
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.Locale != "" {
		cfg.Locale = yamlCfg.Locale
	}
	if yamlCfg.DefaultLocale != "" {
		cfg.DefaultLocale = yamlCfg.DefaultLocale
	}
	if yamlCfg.StaleSaveAfter != "" {
		d, err := time.ParseDuration(yamlCfg.StaleSaveAfter)
		if err != nil {
			return nil, fmt.Errorf("invalid stale_save_after format %q: %w", yamlCfg.StaleSaveAfter, err)
		}
		cfg.StaleSaveAfter = d
	}
	if yamlCfg.LogoutDelay != "" {
		d, err := time.ParseDuration(yamlCfg.LogoutDelay)
		if err != nil {
			return nil, fmt.Errorf("invalid logout_delay format %q: %w", yamlCfg.LogoutDelay, err)
		}
		cfg.LogoutDelay = d
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .dommx/config.yaml in the
// specified directory. Missing directory or file yields the defaults.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".dommx", "config.yaml"))
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path cannot be empty")
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.Locale == "" {
		return fmt.Errorf("locale cannot be empty")
	}
	if c.DefaultLocale == "" {
		return fmt.Errorf("default_locale cannot be empty")
	}

	if c.StaleSaveAfter < 0 {
		return fmt.Errorf("stale_save_after must be >= 0, got %v", c.StaleSaveAfter)
	}
	if c.LogoutDelay < 0 {
		return fmt.Errorf("logout_delay must be >= 0, got %v", c.LogoutDelay)
	}

	return nil
}
