// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/jeranaias/loreline-tui/internal/model"
)

// historyItem is one message as the history endpoint serializes it.
type historyItem struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ListSessions fetches the user's sessions, newest first. Records are
// returned raw; identifier normalization is the workspace's job.
func (c *Client) ListSessions(ctx context.Context) ([]model.SessionRecord, error) {
	var records []model.SessionRecord
	if err := c.getJSON(ctx, "/chats", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CreateSession creates a fresh session. The server assigns the
// identifier and the default title.
func (c *Client) CreateSession(ctx context.Context) (*model.SessionRecord, error) {
	var record model.SessionRecord
	if err := c.postJSON(ctx, "/chats", nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteSession removes a session and its messages.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/chats/"+url.PathEscape(id), nil, "", nil)
}

// SessionHistory fetches the ordered transcript for a session.
func (c *Client) SessionHistory(ctx context.Context, id string) ([]model.Message, error) {
	var items []historyItem
	if err := c.getJSON(ctx, "/chats/"+url.PathEscape(id)+"/history", &items); err != nil {
		return nil, err
	}

	messages := make([]model.Message, 0, len(items))
	for _, item := range items {
		role := model.RoleAssistant
		if item.Role == string(model.RoleUser) {
			role = model.RoleUser
		}
		msg := model.NewMessage(role, item.Content)
		if !item.Timestamp.IsZero() {
			msg.CreatedAt = item.Timestamp
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
