// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the shared zap logger. The TUI owns stdout,
// so all logging goes to a rotated file under ~/.loreline/.
package logging

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jeranaias/loreline-tui/internal/config"
)

// New constructs a file-backed logger from the log config. It never
// fails: on any setup problem it falls back to a no-op logger so the
// client keeps working without observability rather than dying for it.
//
// The returned AtomicLevel gates the core, so callers can retune the
// verbosity of a live logger (config hot reload does this).
func New(cfg config.LogConfig) (*zap.Logger, zap.AtomicLevel) {
	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	path := cfg.Path
	if path == "" {
		dir, err := config.Dir()
		if err != nil {
			return zap.NewNop(), level
		}
		path = filepath.Join(dir, "loreline.log")
	}

	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
	})

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		sink,
		level,
	)
	return zap.New(core), level
}

// ParseLevel maps a config level string to a zap level, defaulting to
// info on anything unrecognized.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
