// Package config loads ghapp settings from ~/.ghapp/config.yaml with
// GHAPP_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds token issuance settings. PrivateKey may be a literal
// PEM string, a path, or a secret reference (env://, file://,
// keyring://, awssm://, op://); the CLI resolves it.
type Config struct {
	AppID          string      `yaml:"app_id"`
	InstallationID string      `yaml:"installation_id"`
	PrivateKey     string      `yaml:"private_key"`
	APIURL         string      `yaml:"api_url,omitempty"`
	TimeoutSeconds int         `yaml:"timeout_seconds,omitempty"`
	Debug          DebugConfig `yaml:"debug,omitempty"`
}

// DebugConfig holds diagnostic settings.
type DebugConfig struct {
	// LogKeyMaterial enables logging key prefixes on signing failures.
	// Leave off outside of secret-pipeline debugging sessions.
	LogKeyMaterial bool `yaml:"log_key_material"`
	// RetentionDays is how many days of debug log files to keep.
	RetentionDays int `yaml:"retention_days"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		TimeoutSeconds: 10,
		Debug:          DebugConfig{RetentionDays: 7},
	}
}

// Load reads ~/.ghapp/config.yaml and applies environment overrides.
// A missing file is not an error; defaults apply.
func Load() (*Config, error) {
	cfg := Default()

	path := filepath.Join(Dir(), "config.yaml")
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GHAPP_APP_ID"); v != "" {
		cfg.AppID = v
	}
	if v := os.Getenv("GHAPP_INSTALLATION_ID"); v != "" {
		cfg.InstallationID = v
	}
	if v := os.Getenv("GHAPP_PRIVATE_KEY"); v != "" {
		cfg.PrivateKey = v
	}
	if v := os.Getenv("GHAPP_API_URL"); v != "" {
		cfg.APIURL = v
	}
}

// Timeout returns the HTTP timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Dir returns the path to ~/.ghapp.
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".ghapp")
	}
	return filepath.Join(homeDir, ".ghapp")
}
