// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents settings that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided
// via CLI flags or environment variables.
type Config struct {
	Port        int    `json:"port,omitempty"`         // HTTP listen port
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key (empty disables AI drafts)
	Model       string `json:"model,omitempty"`        // Gemini model override
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables. Values present in the
// receiver win; the environment only fills gaps.
func (c *Config) FromEnv() Config {
	result := *c
	if result.DatabaseURL == "" {
		result.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if result.APIKey == "" {
		result.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if result.Model == "" {
		result.Model = os.Getenv("GEMINI_MODEL")
	}
	return result
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
