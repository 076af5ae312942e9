// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
)

// =============================================================================
// AUTH TYPES
// =============================================================================

// User is the account profile returned by signup and /auth/me.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// tokenResponse is the credential pair issued by login and refresh.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// =============================================================================
// AUTH ENDPOINTS
// =============================================================================

// Login exchanges a username and password for a credential pair and
// stores it. The endpoint takes an OAuth2 password form, so the body is
// form-encoded rather than JSON.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var tokens tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login",
		[]byte(form.Encode()), "application/x-www-form-urlencoded", &tokens)
	if err != nil {
		return err
	}
	return c.store.Set(tokens.AccessToken, tokens.RefreshToken)
}

// Signup registers a new account. It does not sign the user in; call
// Login afterwards.
func (c *Client) Signup(ctx context.Context, email, password, fullName string) (*User, error) {
	payload := map[string]string{
		"email":     email,
		"password":  password,
		"full_name": fullName,
	}
	var user User
	if err := c.postJSON(ctx, "/auth/signup", payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RefreshTokens trades the stored refresh token for a new credential
// pair and stores it. The server rotates the refresh token on every
// exchange, so a successful call invalidates the old pair.
func (c *Client) RefreshTokens(ctx context.Context) error {
	refresh := c.store.Refresh()
	if refresh == "" {
		return &Error{Status: http.StatusUnauthorized, Detail: "no refresh token"}
	}

	payload := map[string]string{"refresh_token": refresh}
	var tokens tokenResponse
	if err := c.postJSON(ctx, "/auth/refresh", payload, &tokens); err != nil {
		return err
	}
	return c.store.Set(tokens.AccessToken, tokens.RefreshToken)
}

// refreshIfStale refreshes the credential pair unless another request
// already did. Concurrent 401s funnel through here so only the first
// spends the (single-use) refresh token; the rest see a changed access
// token and replay with it directly.
func (c *Client) refreshIfStale(ctx context.Context, usedAccess string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if c.store.Access() != usedAccess {
		return nil
	}
	return c.RefreshTokens(ctx)
}

// Me fetches the profile for the signed-in user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout drops the stored credential pair. The backend keeps no session
// state, so signing out is purely local.
func (c *Client) Logout() error {
	return c.store.Clear()
}
