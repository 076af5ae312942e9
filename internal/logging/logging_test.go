// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/loreline-tui/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWritesToConfiguredPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	log, _ := New(config.LogConfig{Level: "debug", Path: path})
	log.Info("hello", zap.String("component", "test"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log output missing entry: %q", data)
	}
}

func TestAtomicLevelRetunesLiveLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	log, level := New(config.LogConfig{Level: "info", Path: path})

	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug enabled at info level")
	}

	level.SetLevel(zapcore.DebugLevel)
	log.Debug("tuned down", zap.String("component", "test"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "tuned down") {
		t.Errorf("debug entry missing after level change: %q", data)
	}

	level.SetLevel(zapcore.ErrorLevel)
	if log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info still enabled after raising level to error")
	}
}
