// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ws

// Frame types carried over the realtime link.
const (
	// FrameIngestionStatus reports progress on a document's ingestion.
	FrameIngestionStatus = "ingestion_status"

	// FrameChatStart opens an assistant response.
	FrameChatStart = "chat_start"

	// FrameChatToken carries one incremental piece of the response.
	FrameChatToken = "chat_token"

	// FrameChatEnd closes the response.
	FrameChatEnd = "chat_end"
)

// Frame is a single inbound message. The backend sends one flat JSON
// object per frame; fields beyond Type are populated per frame type.
type Frame struct {
	Type string `json:"type"`

	// Chat streaming.
	Token     string `json:"token,omitempty"`
	SessionID string `json:"session_id,omitempty"`

	// Ingestion progress.
	DocID    string `json:"doc_id,omitempty"`
	Status   string `json:"status,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// ChatMessage is the outbound frame that submits a user prompt.
type ChatMessage struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
}

// NewChatMessage builds an outbound chat frame for a session.
func NewChatMessage(text, sessionID string) ChatMessage {
	return ChatMessage{Type: "chat_message", Text: text, SessionID: sessionID}
}
