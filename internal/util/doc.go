// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across loreline packages:
// crash-safe file writes for durable client state and string utilities
// for the TUI.
package util
