// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ws maintains the realtime WebSocket link to the Loreline
// backend.
//
// A single Manager owns the connection for the whole application.
// Inbound frames fan out to every registered subscriber in registration
// order; subscribers are decoupled from each other, so a panic in one
// listener never takes down the read loop or starves the rest.
//
// The link self-heals: any close, including a policy-violation close
// for a rejected token, schedules a reconnect with exponential backoff
// capped at thirty seconds. The token is re-read from the credential
// store on every dial, so a reconnect after a refresh automatically
// carries the new token.
package ws
