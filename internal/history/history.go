// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history keeps a local archive of completed exchanges.
//
// The archive is a convenience layer over the server transcript: it
// survives offline and lets the status command report activity without
// a network round trip. It is strictly best-effort: every write
// failure is logged and swallowed, because losing an archive row must
// never break a live conversation.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	_ "modernc.org/sqlite"

	"github.com/jeranaias/loreline-tui/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(id)
);

CREATE INDEX IF NOT EXISTS idx_messages_session
	ON messages(session_id, created_at);
`

// Archive is the local exchange archive. Safe for concurrent use; the
// underlying *sql.DB serializes access.
type Archive struct {
	db  *sql.DB
	log *zap.Logger
}

// Open creates or opens the archive database at path.
func Open(path string, log *zap.Logger) (*Archive, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	// A single writer avoids SQLITE_BUSY churn on concurrent exchanges.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}
	return &Archive{db: db, log: log}, nil
}

// Close releases the database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}

// RecordExchange archives one settled prompt/response pair. Failures
// are logged, never returned.
func (a *Archive) RecordExchange(ctx context.Context, sessionID, title, prompt, reply string) {
	if sessionID == "" {
		return
	}

	now := time.Now().UTC()
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		a.log.Warn("archive write failed", zap.Error(err))
		return
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, title, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at`,
		sessionID, title, now)
	if err != nil {
		a.log.Warn("archive write failed", zap.Error(err))
		return
	}

	for _, m := range []struct {
		role    model.Role
		content string
	}{
		{model.RoleUser, prompt},
		{model.RoleAssistant, reply},
	} {
		if m.content == "" {
			continue
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO messages (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
			sessionID, m.role.String(), m.content, now)
		if err != nil {
			a.log.Warn("archive write failed", zap.Error(err))
			return
		}
	}

	if err := tx.Commit(); err != nil {
		a.log.Warn("archive write failed", zap.Error(err))
	}
}

// Messages returns the archived transcript for a session, oldest first.
func (a *Archive) Messages(ctx context.Context, sessionID string) ([]model.Message, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT role, content, created_at FROM messages
		WHERE session_id = ? ORDER BY created_at, id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var (
			role, content string
			createdAt     time.Time
		)
		if err := rows.Scan(&role, &content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		msg := model.NewMessage(model.Role(role), content)
		msg.CreatedAt = createdAt
		out = append(out, msg)
	}
	return out, rows.Err()
}

// SessionCount returns how many sessions have archived exchanges.
func (a *Archive) SessionCount(ctx context.Context) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n)
	return n, err
}

// MessageCount returns the total number of archived messages.
func (a *Archive) MessageCount(ctx context.Context) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n)
	return n, err
}
