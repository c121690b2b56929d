// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable [Load] reads the config path
// from.
const EnvVar = "TASKBOARD_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for taskboard.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// API configures the remote task service.
	API APIConfig `yaml:"api"`

	// State configures where local state (the filter preset) is kept.
	State StateConfig `yaml:"state"`

	// Bulk configures bulk operations.
	Bulk BulkConfig `yaml:"bulk"`

	// Log configures logging.
	Log LogConfig `yaml:"log"`

	// Per-environment overrides, applied after the base config is
	// loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	API   *APIConfig   `yaml:"api,omitempty"`
	State *StateConfig `yaml:"state,omitempty"`
	Bulk  *BulkConfig  `yaml:"bulk,omitempty"`
	Log   *LogConfig   `yaml:"log,omitempty"`
}

// APIConfig configures the task service connection.
type APIConfig struct {
	// BaseURL is the root of the task service, for example
	// https://tasks.example.com/api.
	BaseURL string `yaml:"base_url"`

	// TokenFile holds the bearer token. "-" reads it from stdin.
	// Empty means prompt on the terminal.
	TokenFile string `yaml:"token_file"`

	// Username is the signed-in user's name, shown in the viewer.
	Username string `yaml:"username"`

	// Admin enables restricted filter presets.
	Admin bool `yaml:"admin"`

	// RequestTimeout bounds each HTTP request.
	// Default: 30s
	RequestTimeout string `yaml:"request_timeout"`
}

// StateConfig configures local state storage.
type StateConfig struct {
	// Root is the base directory for taskboard state.
	Root string `yaml:"root"`

	// Database is the SQLite file holding persisted settings.
	// Default: ${TASKBOARD_ROOT}/state.db
	Database string `yaml:"database"`
}

// BulkConfig configures bulk operations.
type BulkConfig struct {
	// MaxInFlight caps concurrent requests per bulk operation.
	// 0 means unlimited.
	MaxInFlight int `yaml:"max_in_flight"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
// They exist primarily to ensure all fields have sensible zero-values,
// not as a fallback - the config file is required.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".local", "state", "taskboard")

	return &Config{
		Environment: Development,
		API: APIConfig{
			RequestTimeout: "30s",
		},
		State: StateConfig{
			Root:     defaultRoot,
			Database: "${TASKBOARD_ROOT}/state.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the TASKBOARD_CONFIG environment
// variable. There are no fallbacks: if it is not set, this fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your taskboard.yaml config file, or use --config flag", EnvVar)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables
// do not override config values; they are only substituted where a
// path or URL references them with ${VAR} or ${VAR:-default}.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production defaults: quieter logs and bounded fan-out.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Bulk: &BulkConfig{MaxInFlight: 8},
				Log:  &LogConfig{Level: "warn"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.API != nil {
		if overrides.API.BaseURL != "" {
			c.API.BaseURL = overrides.API.BaseURL
		}
		if overrides.API.TokenFile != "" {
			c.API.TokenFile = overrides.API.TokenFile
		}
		if overrides.API.Username != "" {
			c.API.Username = overrides.API.Username
		}
		// Admin is a bool, so we always apply it from overrides.
		c.API.Admin = overrides.API.Admin
		if overrides.API.RequestTimeout != "" {
			c.API.RequestTimeout = overrides.API.RequestTimeout
		}
	}

	if overrides.State != nil {
		if overrides.State.Root != "" {
			c.State.Root = overrides.State.Root
		}
		if overrides.State.Database != "" {
			c.State.Database = overrides.State.Database
		}
	}

	if overrides.Bulk != nil && overrides.Bulk.MaxInFlight != 0 {
		c.Bulk.MaxInFlight = overrides.Bulk.MaxInFlight
	}

	if overrides.Log != nil && overrides.Log.Level != "" {
		c.Log.Level = overrides.Log.Level
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"TASKBOARD_ROOT": c.State.Root,
		"HOME":           os.Getenv("HOME"),
	}

	c.State.Root = expandVars(c.State.Root, vars)
	vars["TASKBOARD_ROOT"] = c.State.Root // Update for dependent paths.

	c.State.Database = expandVars(c.State.Database, vars)
	c.API.TokenFile = expandVars(c.API.TokenFile, vars)
	c.API.BaseURL = expandVars(c.API.BaseURL, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns. vars is
// consulted before the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.API.BaseURL == "" {
		errs = append(errs, fmt.Errorf("api.base_url is required"))
	} else if parsed, err := url.Parse(c.API.BaseURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		errs = append(errs, fmt.Errorf("api.base_url must be an http or https URL, got %q", c.API.BaseURL))
	}

	if timeout, err := time.ParseDuration(c.API.RequestTimeout); err != nil || timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.request_timeout must be a positive duration, got %q", c.API.RequestTimeout))
	}

	if c.State.Database == "" {
		errs = append(errs, fmt.Errorf("state.database is required"))
	}

	if c.Bulk.MaxInFlight < 0 {
		errs = append(errs, fmt.Errorf("bulk.max_in_flight must not be negative"))
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// RequestTimeout returns api.request_timeout as a duration. Call after
// Validate; an unparseable value yields zero.
func (c *Config) RequestTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.API.RequestTimeout)
	return timeout
}

// LogLevel returns log.level as a slog level, or info when invalid.
func (c *Config) LogLevel() slog.Level {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", name)
	}
	return level, nil
}

// EnsurePaths creates the state directory if it does not exist.
func (c *Config) EnsurePaths() error {
	paths := []string{
		c.State.Root,
		filepath.Dir(c.State.Database),
	}

	for _, path := range paths {
		if path == "" || path == "." {
			continue
		}
		if err := os.MkdirAll(path, 0700); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}

	return nil
}
