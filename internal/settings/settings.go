// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings stores per-user preferences: voice selection,
// autoplay, and the two accent colors that drive the theme. Settings
// are keyed by user ID so switching accounts on one machine keeps each
// user's choices separate.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeranaias/loreline-tui/internal/util"
)

// Default accent colors.
const (
	DefaultPrimaryColor   = "#722ed1"
	DefaultSecondaryColor = "#1890ff"
)

// Settings are one user's preferences.
type Settings struct {
	Voice          string `json:"voice"`
	Autoplay       bool   `json:"autoplay"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
}

// Default returns the out-of-the-box preferences.
func Default() Settings {
	return Settings{
		PrimaryColor:   DefaultPrimaryColor,
		SecondaryColor: DefaultSecondaryColor,
	}
}

// fillDefaults backfills fields missing from an older settings file.
func (s *Settings) fillDefaults() {
	if s.PrimaryColor == "" {
		s.PrimaryColor = DefaultPrimaryColor
	}
	if s.SecondaryColor == "" {
		s.SecondaryColor = DefaultSecondaryColor
	}
}

// Store reads and writes per-user settings files under a base
// directory, one subdirectory per user.
type Store struct {
	baseDir string
}

// NewStore creates a store rooted at baseDir
// (typically ~/.loreline/users).
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// path returns the settings file for a user.
func (st *Store) path(userID string) string {
	return filepath.Join(st.baseDir, userID, "settings.json")
}

// Load returns the user's settings, falling back to defaults when no
// file exists yet.
func (st *Store) Load(userID string) (Settings, error) {
	if userID == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(st.path(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("read settings: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("parse settings: %w", err)
	}
	s.fillDefaults()
	return s, nil
}

// Save persists the user's settings atomically.
func (st *Store) Save(userID string, s Settings) error {
	if userID == "" {
		return fmt.Errorf("save settings: empty user id")
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := util.AtomicWriteFile(st.path(userID), data, 0o600); err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}
	return nil
}
