// Package config loads the sync tool's configuration: a YAML file with
// environment overrides for everything secret-bearing. Missing files fall
// back to defaults so the tool works out of the box with just the two API
// keys exported.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full tool configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Oracle  OracleConfig  `yaml:"oracle"`
	Sync    SyncConfig    `yaml:"sync"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig points at the management API.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

// OracleConfig configures the merge model.
type OracleConfig struct {
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

// SyncConfig tunes the sync engine.
type SyncConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	// VolatilePaths are extra field names treated as volatile during
	// comparison, in addition to the API's audit timestamps.
	VolatilePaths []string `yaml:"volatile_paths"`
	// StateDir holds the run journal; relative paths resolve against the
	// project root.
	StateDir string `yaml:"state_dir"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "https://api.inkeep.com",
			Timeout: "30s",
		},
		Oracle: OracleConfig{
			Model:   "gemini-2.5-flash",
			Timeout: "120s",
		},
		Sync: SyncConfig{
			MaxAttempts: 3,
			StateDir:    ".inkeep",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides. Keys from the
// environment always win over the file, so secrets never need to live on
// disk.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("INKEEP_API_KEY"); key != "" {
		c.API.APIKey = key
	}
	if url := os.Getenv("INKEEP_API_URL"); url != "" {
		c.API.BaseURL = url
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Oracle.APIKey = key
	}
}

// GetAPITimeout returns the management API timeout as a duration.
func (c *Config) GetAPITimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetOracleTimeout returns the merge oracle timeout as a duration.
func (c *Config) GetOracleTimeout() time.Duration {
	d, err := time.ParseDuration(c.Oracle.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}
