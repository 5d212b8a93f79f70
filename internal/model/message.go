// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions, messages,
// and resolved citations.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a session's history.
type Message struct {
	// Identity
	ID   string `json:"id"`
	Role Role   `json:"role"`

	// Content. Markdown is the raw source; HTML is the rendered form
	// produced by the markdown renderer. Both are empty for an assistant
	// placeholder that has not yet received any content.
	Markdown string `json:"markdown,omitempty"`
	HTML     string `json:"html,omitempty"`

	// AnchorIDs is the set of citation indices this message references
	// (assistant messages only).
	AnchorIDs []int `json:"anchor_ids,omitempty"`

	// Timestamp is set when the message content is finalized or errors.
	// It stays zero while the message is in flight.
	Timestamp time.Time `json:"timestamp,omitempty"`

	// SkipAPI marks synthetic messages (e.g. the greeting) that must never
	// be sent to the backend.
	SkipAPI bool `json:"skip_api,omitempty"`

	// HasError is set when generating or merging content for this message
	// failed. Content already applied before the failure is kept.
	HasError bool `json:"has_error,omitempty"`
}

// NewUserMessage creates a user message with rendered content.
func NewUserMessage(markdown, html string) *Message {
	return &Message{
		ID:       generateID(),
		Role:     RoleUser,
		Markdown: markdown,
		HTML:     html,
	}
}

// NewAssistantPlaceholder creates the empty assistant message that receives
// the turn's streamed content. The timestamp stays zero until the turn ends.
func NewAssistantPlaceholder() *Message {
	return &Message{
		ID:   generateID(),
		Role: RoleAssistant,
	}
}

// NewGreeting creates the synthetic assistant greeting. It is flagged
// SkipAPI so it is never serialized into a backend request.
func NewGreeting(markdown, html string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      RoleAssistant,
		Markdown:  markdown,
		HTML:      html,
		Timestamp: time.Now(),
		SkipAPI:   true,
	}
}

// IsEmpty returns true if the message has no content yet.
func (m *Message) IsEmpty() bool {
	return m.Markdown == "" && m.HTML == ""
}

// Preview returns a truncated preview of the raw message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Markdown)
	if len(runes) <= maxLen {
		return m.Markdown
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// CITATION TYPE
// =============================================================================

// Citation is a resolved, indexed reference to a source document excerpt
// backing part of an assistant answer.
type Citation struct {
	// Index is unique and strictly increasing across the whole session
	// lifetime. Indices are never reused, even if the owning message
	// later errors.
	Index int `json:"index"`

	// MessageID is the assistant message the citation was produced for.
	MessageID string `json:"message_id"`

	// Title is the display name derived from citation metadata. May be
	// empty when the source provides neither a title nor a document name.
	Title string `json:"title"`

	// SourceURL may be empty if the source provides none.
	SourceURL string `json:"source_url,omitempty"`

	// ContentHTML is the sanitized, markdown-rendered excerpt.
	ContentHTML string `json:"content_html"`
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
