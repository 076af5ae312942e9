// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable rendered pieces of the
// loreline TUI: the status bar, the sidebar, and transient toasts.
// Components are pure render functions over explicit state so they can
// be tested without a terminal.
package components
