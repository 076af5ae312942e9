// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() should validate: %v", err)
	}
}

func TestLoadFromPathMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Server.APIURL != Default().Server.APIURL {
		t.Errorf("APIURL = %q, want default", cfg.Server.APIURL)
	}
}

func TestLoadFromPathPartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "[server]\napi_url = \"https://example.com/api/v1\"\n"
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Server.APIURL != "https://example.com/api/v1" {
		t.Errorf("APIURL = %q", cfg.Server.APIURL)
	}
	if cfg.Server.RequestTimeoutSecs != 30 {
		t.Errorf("RequestTimeoutSecs = %d, want filled default 30", cfg.Server.RequestTimeoutSecs)
	}
	if cfg.Auth.RefreshIntervalMins != 15 {
		t.Errorf("RefreshIntervalMins = %d, want 15", cfg.Auth.RefreshIntervalMins)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Server.APIURL = "https://api.example.com/v1"
	cfg.Log.Level = "debug"

	if err := SaveToPath(cfg, path); err != nil {
		t.Fatalf("SaveToPath failed: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.Server.APIURL != cfg.Server.APIURL {
		t.Errorf("APIURL = %q, want %q", loaded.Server.APIURL, cfg.Server.APIURL)
	}
	if loaded.Log.Level != "debug" {
		t.Errorf("Level = %q, want debug", loaded.Log.Level)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LORELINE_API_URL", "https://override.example.com/api")
	t.Setenv("LORELINE_LOG_LEVEL", "warn")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Server.APIURL != "https://override.example.com/api" {
		t.Errorf("APIURL = %q", cfg.Server.APIURL)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Level = %q", cfg.Log.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad api scheme", func(c *Config) { c.Server.APIURL = "ftp://x.com" }},
		{"bad ws scheme", func(c *Config) { c.Server.WSURL = "http://x.com/ws" }},
		{"empty api url", func(c *Config) { c.Server.APIURL = "not a url" }},
		{"timeout too big", func(c *Config) { c.Server.RequestTimeoutSecs = 9999 }},
		{"refresh zero range", func(c *Config) { c.Auth.RefreshIntervalMins = 500 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
