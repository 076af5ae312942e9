// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth manages the access/refresh token pair for a signed-in user.
//
// The Store holds both tokens in memory behind a mutex and mirrors them to
// a credentials file under the state directory so that a restart picks up
// the previous session. The two tokens are always written together: a
// half-updated pair on disk would leave the client able to talk to the API
// but unable to renew, which is worse than being signed out.
//
// The Refresher exchanges the refresh token for a fresh pair on a fixed
// interval so the access token never expires mid-session.
package auth
