// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui owns the Bubble Tea program: the root model switching
// between the auth form, the main workspace, and the preferences
// screen, and the bridge that feeds realtime frames into the running
// program via Program.Send.
//
// Subpackages hold the pieces: styles (theme), components (stateless
// render helpers), authview, chatview, and settingsview.
package ui
