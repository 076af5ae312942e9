// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/jeranaias/loreline-tui/internal/model"
)

// ListDocuments fetches the user's ingested documents.
func (c *Client) ListDocuments(ctx context.Context) ([]model.Document, error) {
	var docs []model.Document
	if err := c.getJSON(ctx, "/ingestion/documents", &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteDocument removes a document and its indexed content.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/ingestion/documents/"+url.PathEscape(id), nil, "", nil)
}

// UploadDocument submits a file for ingestion. The returned document
// starts in the pending state; progress arrives over the WebSocket as
// ingestion status frames.
func (c *Client) UploadDocument(ctx context.Context, filename string, r io.Reader) (*model.Document, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finish upload: %w", err)
	}

	var doc model.Document
	if err := c.do(ctx, http.MethodPost, "/ingestion/upload", buf.Bytes(), w.FormDataContentType(), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ScrapeURL submits a web page for ingestion. The URL doubles as the
// document's filename in listings.
func (c *Client) ScrapeURL(ctx context.Context, pageURL string) (*model.Document, error) {
	payload := map[string]string{"url": pageURL}
	var doc model.Document
	if err := c.postJSON(ctx, "/ingestion/scrape", payload, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
