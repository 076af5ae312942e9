// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/loreline-tui/internal/auth"
)

// =============================================================================
// CONSTANTS AND ERRORS
// =============================================================================

const (
	// DefaultTimeout bounds a single REST request end to end.
	DefaultTimeout = 30 * time.Second

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 10 * 1024 * 1024 // 10MB

	userAgent = "loreline/0.1.0"
)

// Error is an error response from the backend. The server reports
// failures as {"detail": "..."}; when the body is not in that shape the
// raw text is carried instead.
type Error struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error (HTTP %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api error (HTTP %d)", e.Status)
}

// Unauthorized reports whether the error is a credential rejection.
func (e *Error) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the Loreline REST API.
//
// All request methods take a context and are safe for concurrent use.
// The client never stores tokens itself; it reads and writes them
// through the auth store so every consumer sees one consistent pair.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *auth.Store
	limiter    *rate.Limiter
	log        *zap.Logger

	// refreshMu serializes the 401 recovery path so concurrent requests
	// hitting an expired token perform a single refresh between them.
	refreshMu sync.Mutex
}

// NewClient creates a client for the API rooted at baseURL
// (e.g. "http://localhost:8000/api/v1").
func NewClient(baseURL string, store *auth.Store, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
		},
		store:   store,
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		log:     log,
	}
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// BaseURL returns the API root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUEST CORE
// =============================================================================

// noRetryPaths are exempt from the 401 refresh-and-replay path.
var noRetryPaths = map[string]bool{
	"/auth/login":   true,
	"/auth/signup":  true,
	"/auth/refresh": true,
}

// do performs one API request, decoding a 2xx JSON body into out when
// out is non-nil. The body is passed as bytes so the request can be
// replayed after a token refresh.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	used := c.store.Access()
	resp, err := c.send(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}

	// One-shot recovery for an expired access token. Auth endpoints are
	// exempt, as is a client with no refresh token to trade in.
	if resp.StatusCode == http.StatusUnauthorized && !noRetryPaths[path] && c.store.Refresh() != "" {
		// Keep the server's own 401 before consuming the body; a failed
		// refresh reports that rejection, not a synthetic one.
		firstBody, _ := readBody(resp)
		resp.Body.Close()
		c.log.Debug("access token rejected, refreshing", zap.String("path", path))

		if err := c.refreshIfStale(ctx, used); err != nil {
			c.log.Warn("token refresh failed", zap.Error(err))
			return decodeError(http.StatusUnauthorized, firstBody)
		}

		resp, err = c.send(ctx, method, path, body, contentType)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	respBody, err := readBody(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

// send issues a single HTTP request without any retry handling.
func (c *Client) send(ctx context.Context, method, path string, body []byte, contentType string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.store.Access(); tok != "" && !noRetryPaths[path] {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.log.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))
	return resp, nil
}

// getJSON issues a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

// postJSON issues a POST with a JSON body and decodes the response.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	return c.do(ctx, http.MethodPost, path, body, "application/json", out)
}

// readBody reads a response body with a size cap.
func readBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) == maxResponseSize {
		return nil, fmt.Errorf("response exceeded %d bytes", maxResponseSize)
	}
	return body, nil
}

// decodeError converts an error-status body to an *Error. Bodies that
// are not the expected {"detail": ...} shape are carried as raw text.
func decodeError(status int, body []byte) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return &Error{Status: status, Detail: payload.Detail}
	}

	detail := strings.TrimSpace(string(body))
	if len(detail) > 200 {
		detail = detail[:200]
	}
	return &Error{Status: status, Detail: detail}
}
