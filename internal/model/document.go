// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// DOCUMENT TYPE
// =============================================================================

// DocumentStatus is the ingestion state of a document. Status only
// moves forward (pending → processing → completed|failed); a re-upload
// creates a fresh document with a new identifier rather than rewinding
// an existing one.
type DocumentStatus string

const (
	DocPending    DocumentStatus = "pending"
	DocProcessing DocumentStatus = "processing"
	DocCompleted  DocumentStatus = "completed"
	DocFailed     DocumentStatus = "failed"
)

// Terminal reports whether the status is a final state.
func (s DocumentStatus) Terminal() bool {
	return s == DocCompleted || s == DocFailed
}

// Document is an ingested document (file upload or scraped URL).
type Document struct {
	ID       string         `json:"id"`
	Filename string         `json:"filename"`
	Status   DocumentStatus `json:"status"`
}
