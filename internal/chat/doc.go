// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat holds the conversation state machine for a streaming
// exchange.
//
// An exchange moves through three states: settled, awaiting the first
// token, and streaming. Tokens accumulate in a buffer that is the
// single source of truth for the assistant's reply; the trailing
// assistant message in the transcript is overwritten from the buffer on
// every token so a redraw always shows the full partial reply, and the
// end-of-stream frame commits the trimmed buffer as the final content.
package chat
