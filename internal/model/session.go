// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session is a chat session with a canonical string identifier.
// Sessions arrive from the server newest-first; that order is
// preserved everywhere.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// =============================================================================
// WIRE RECORD
// =============================================================================

// SessionRecord is the raw server representation of a session. The
// backend is inconsistent about the identifier field: depending on the
// code path it serializes "id", "_id", or both, and occasionally the
// literal string "undefined". Records resolve through ResolveID before
// use; normalization and filtering live in the workspace package.
type SessionRecord struct {
	ID        string    `json:"id"`
	AltID     string    `json:"_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ResolveID returns the canonical identifier for the record: "id" when
// present, otherwise "_id". Returns "" when neither is usable; the
// placeholder string "undefined" counts as unusable.
func (r SessionRecord) ResolveID() string {
	id := r.ID
	if id == "" {
		id = r.AltID
	}
	if id == "undefined" {
		return ""
	}
	// A record carrying the placeholder in either field is malformed
	// regardless of what the other field holds.
	if r.ID == "undefined" || r.AltID == "undefined" {
		return ""
	}
	return id
}

// UnmarshalJSON tolerates non-string identifier values (numeric IDs
// from older backend versions) by coercing them to strings.
func (r *SessionRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        json.RawMessage `json:"id"`
		AltID     json.RawMessage `json:"_id"`
		Title     string          `json:"title"`
		CreatedAt time.Time       `json:"created_at"`
		UpdatedAt time.Time       `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.ID = coerceString(raw.ID)
	r.AltID = coerceString(raw.AltID)
	r.Title = raw.Title
	r.CreatedAt = raw.CreatedAt
	r.UpdatedAt = raw.UpdatedAt
	return nil
}

// coerceString renders a raw JSON value as a plain string: strings are
// unquoted, null and absent values become "", anything else keeps its
// JSON text form.
func coerceString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}
