// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared across loreline:
// chat sessions, messages, ingested documents, and the wire records
// they are decoded from.
package model
