// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// loreline.
//
// Configuration is TOML with sensible defaults and environment
// variable overrides, loaded from ~/.loreline/config.toml.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/loreline-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete loreline configuration.
type Config struct {
	Version string `toml:"version"`

	Server ServerConfig `toml:"server"`
	Auth   AuthConfig   `toml:"auth"`
	Speech SpeechConfig `toml:"speech"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig locates the backend.
type ServerConfig struct {
	// APIURL is the REST base URL, including the version prefix.
	APIURL string `toml:"api_url"`
	// WSURL is the WebSocket endpoint. The access token is appended
	// as a query parameter at dial time.
	WSURL string `toml:"ws_url"`
	// RequestTimeoutSecs bounds individual REST calls. The WebSocket
	// is not subject to it.
	RequestTimeoutSecs int `toml:"request_timeout_secs"`
}

// AuthConfig controls credential upkeep.
type AuthConfig struct {
	// RefreshIntervalMins is how often the background refresher
	// renews the access token.
	RefreshIntervalMins int `toml:"refresh_interval_mins"`
}

// SpeechConfig controls the optional voice features. Both commands
// default to "auto", which probes a list of known binaries; an empty
// string disables the capability outright.
type SpeechConfig struct {
	Synthesizer string `toml:"synthesizer"`
	Recognizer  string `toml:"recognizer"`
}

// LogConfig controls the file logger. The TUI owns stdout, so logs
// always go to a file.
type LogConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `toml:"level"`
	// Path overrides the default ~/.loreline/loreline.log.
	Path string `toml:"path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Server: ServerConfig{
			APIURL:             "http://localhost:8000/api/v1",
			WSURL:              "ws://localhost:8000/ws",
			RequestTimeoutSecs: 30,
		},
		Auth: AuthConfig{
			RefreshIntervalMins: 15,
		},
		Speech: SpeechConfig{
			Synthesizer: "auto",
			Recognizer:  "auto",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the loreline state directory (~/.loreline).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".loreline"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file, applies environment overrides, fills
// defaults, and validates. A missing file is not an error; defaults
// are used.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath is Load for an explicit file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default config path with owner
// only permissions.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to path atomically.
func SaveToPath(cfg *Config, path string) error {
	var sb strings.Builder
	sb.WriteString("# loreline configuration file\n")
	sb.WriteString("# Generated by loreline - edit with care\n\n")

	enc := toml.NewEncoder(&sb)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(sb.String()), 0600)
}

// fillDefaults fills in any missing values with defaults.
func (c *Config) fillDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Server.APIURL == "" {
		c.Server.APIURL = d.Server.APIURL
	}
	if c.Server.WSURL == "" {
		c.Server.WSURL = d.Server.WSURL
	}
	if c.Server.RequestTimeoutSecs == 0 {
		c.Server.RequestTimeoutSecs = d.Server.RequestTimeoutSecs
	}
	if c.Auth.RefreshIntervalMins == 0 {
		c.Auth.RefreshIntervalMins = d.Auth.RefreshIntervalMins
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - LORELINE_API_URL: overrides server.api_url
//   - LORELINE_WS_URL: overrides server.ws_url
//   - LORELINE_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("LORELINE_API_URL"); v != "" {
		c.Server.APIURL = v
	}
	if v := os.Getenv("LORELINE_WS_URL"); v != "" {
		c.Server.WSURL = v
	}
	if v := os.Getenv("LORELINE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ValidationError{Field: "server.api_url", Message: fmt.Sprintf("invalid URL %q", c.Server.APIURL)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ValidationError{Field: "server.api_url", Message: fmt.Sprintf("scheme must be http or https, got %q", u.Scheme)}
	}

	w, err := url.Parse(c.Server.WSURL)
	if err != nil || w.Scheme == "" || w.Host == "" {
		return ValidationError{Field: "server.ws_url", Message: fmt.Sprintf("invalid URL %q", c.Server.WSURL)}
	}
	if w.Scheme != "ws" && w.Scheme != "wss" {
		return ValidationError{Field: "server.ws_url", Message: fmt.Sprintf("scheme must be ws or wss, got %q", w.Scheme)}
	}

	if c.Server.RequestTimeoutSecs < 1 || c.Server.RequestTimeoutSecs > 300 {
		return ValidationError{Field: "server.request_timeout_secs", Message: fmt.Sprintf("must be 1-300, got %d", c.Server.RequestTimeoutSecs)}
	}
	if c.Auth.RefreshIntervalMins < 1 || c.Auth.RefreshIntervalMins > 120 {
		return ValidationError{Field: "auth.refresh_interval_mins", Message: fmt.Sprintf("must be 1-120, got %d", c.Auth.RefreshIntervalMins)}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return ValidationError{Field: "log.level", Message: fmt.Sprintf("invalid level %q, must be one of: debug, info, warn, error", c.Log.Level)}
	}

	return nil
}
