// Package config loads the taskdash client configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"taskdash/internal/store"
)

const FileName = "config.yaml"

type Config struct {
	API     APIConfig     `yaml:"api" json:"api"`
	Session SessionConfig `yaml:"session" json:"session"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Output  OutputConfig  `yaml:"output" json:"output"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url" json:"baseUrl"`
	// Timeout is a duration string; "0" disables the client timeout.
	Timeout string `yaml:"timeout" json:"timeout"`
}

type SessionConfig struct {
	Store string `yaml:"store" json:"store"` // file, sqlite
}

type LoggingConfig struct {
	Level string `yaml:"level" json:"level"` // debug, info, warn, error
	File  string `yaml:"file,omitempty" json:"file,omitempty"`
}

type OutputConfig struct {
	Format string `yaml:"format" json:"format"` // json, table
	Pretty bool   `yaml:"pretty" json:"pretty"`
}

var (
	ValidSessionStores = []string{"file", "sqlite"}
	ValidFormats       = []string{"json", "table"}
	ValidLogLevels     = []string{"debug", "info", "warn", "error"}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:3000",
			Timeout: "15s",
		},
		Session: SessionConfig{Store: "file"},
		Logging: LoggingConfig{Level: "info"},
		Output:  OutputConfig{Format: "json"},
	}
}

// DefaultPath is config.yaml inside the store directory.
func DefaultPath() (string, error) {
	dir, err := store.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads path (defaults when missing) and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML (temp file + rename).
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := store.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("TASKDASH_API_URL")); v != "" {
		c.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKDASH_API_TIMEOUT")); v != "" {
		c.API.Timeout = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKDASH_SESSION_STORE")); v != "" {
		c.Session.Store = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKDASH_LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKDASH_LOG_FILE")); v != "" {
		c.Logging.File = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKDASH_FORMAT")); v != "" {
		c.Output.Format = v
	}
}

// APITimeout parses api.timeout. Zero means no client timeout.
func (c *Config) APITimeout() (time.Duration, error) {
	s := strings.TrimSpace(c.API.Timeout)
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid api.timeout %q: %w", c.API.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid api.timeout %q: must not be negative", c.API.Timeout)
	}
	return d, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.API.BaseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q (want e.g. http://localhost:3000)", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api.base_url scheme %q (want http or https)", u.Scheme)
	}
	if _, err := c.APITimeout(); err != nil {
		return err
	}
	if !oneOf(c.Session.Store, ValidSessionStores) {
		return fmt.Errorf("invalid session.store: %s (valid: %v)", c.Session.Store, ValidSessionStores)
	}
	if !oneOf(c.Output.Format, ValidFormats) {
		return fmt.Errorf("invalid output.format: %s (valid: %v)", c.Output.Format, ValidFormats)
	}
	if !oneOf(c.Logging.Level, ValidLogLevels) {
		return fmt.Errorf("invalid logging.level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	return nil
}

func oneOf(v string, valid []string) bool {
	for _, s := range valid {
		if v == s {
			return true
		}
	}
	return false
}
