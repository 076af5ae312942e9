// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the REST client for the Loreline backend.
//
// The client wraps a pooled HTTP transport with bearer authentication,
// client-side rate limiting, and a single transparent recovery path for
// expired access tokens: when an authenticated request comes back 401,
// the client exchanges the refresh token for a new pair and replays the
// request exactly once. A second 401 surfaces to the caller as an
// *Error, which is the signal to return to the sign-in flow.
//
// Auth endpoints themselves (login, signup, refresh) are exempt from
// that recovery path, since retrying them with a refreshed token is
// either meaningless or a loop.
package api
