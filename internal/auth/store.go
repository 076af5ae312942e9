// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/loreline-tui/internal/util"
)

// credentialsFileMode keeps the token file readable by the owner only.
const credentialsFileMode = 0o600

// ErrNotAuthenticated indicates no credential pair is available.
var ErrNotAuthenticated = errors.New("not authenticated")

// Credentials is the access/refresh token pair returned by the login,
// signup, and refresh endpoints.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Valid reports whether both halves of the pair are present.
func (c Credentials) Valid() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// Store holds the current credential pair and mirrors it to disk.
//
// All methods are safe for concurrent use. The pair is updated
// atomically: Set replaces both tokens together, and the on-disk copy
// is written with an atomic rename so readers never observe a torn file.
type Store struct {
	mu    sync.RWMutex
	path  string
	creds Credentials
	log   *zap.Logger
}

// NewStore creates a credential store backed by the file at path.
// Call Load to pick up credentials persisted by a previous run.
func NewStore(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{path: path, log: log}
}

// Load reads the persisted credential pair, if any. A missing file is
// not an error: it simply means no one is signed in.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("parse credentials: %w", err)
	}
	if !creds.Valid() {
		// A file with only one token is unusable; treat as signed out.
		s.log.Warn("discarding incomplete credential pair", zap.String("path", s.path))
		return nil
	}

	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()

	s.log.Debug("credentials loaded",
		zap.String("access", fingerprint(creds.AccessToken)))
	return nil
}

// Set replaces the credential pair and persists it. Both tokens must be
// non-empty.
func (s *Store) Set(access, refresh string) error {
	creds := Credentials{AccessToken: access, RefreshToken: refresh}
	if !creds.Valid() {
		return errors.New("both access and refresh tokens are required")
	}

	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := util.AtomicWriteFile(s.path, data, credentialsFileMode); err != nil {
		return fmt.Errorf("persist credentials: %w", err)
	}

	s.log.Debug("credentials updated",
		zap.String("access", fingerprint(access)))
	return nil
}

// Clear drops the in-memory pair and removes the on-disk copy.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.creds = Credentials{}
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// Access returns the current access token, or "" if signed out.
func (s *Store) Access() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.AccessToken
}

// Refresh returns the current refresh token, or "" if signed out.
func (s *Store) Refresh() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.RefreshToken
}

// Authenticated reports whether a complete credential pair is held.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Valid()
}

// fingerprint returns a short hash of a token for logging. Tokens are
// never logged directly.
func fingerprint(token string) string {
	if token == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:4])
}
