// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package workspace orchestrates the signed-in user's sessions and
// documents.
//
// It is the one place that looks at raw session records from the
// server: records resolve to canonical string identifiers here, and
// records with no usable identifier are dropped before any other layer
// sees them. The active-session policy also lives here, including the
// guarantee that a placeholder identifier is never activated and that
// an empty account gets exactly one automatically created session.
package workspace
