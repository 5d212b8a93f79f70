// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the document-grounded
// question-answering backend.
package backend

import (
	"encoding/json"

	"github.com/jeranaias/ragchat-tui/internal/model"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// HistoryMessage is one prior turn message as the backend expects it.
type HistoryMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Message string `json:"message"`
}

// History wraps the prior messages of a conversation.
type History struct {
	Messages []HistoryMessage `json:"messages"`
}

// ChatRequest is the request body for POST /chat/{sessionID}.
type ChatRequest struct {
	Message string         `json:"message"`
	History History        `json:"history"`
	Filters map[string]any `json:"filters,omitempty"`
}

// NewChatRequest builds the request for a turn. The history excludes any
// message flagged SkipAPI or HasError.
func NewChatRequest(prompt string, history []*model.Message, filters map[string]any) *ChatRequest {
	msgs := make([]HistoryMessage, 0, len(history))
	for _, m := range history {
		if m.SkipAPI || m.HasError {
			continue
		}
		msgs = append(msgs, HistoryMessage{
			Role:    m.Role.String(),
			Message: m.Markdown,
		})
	}
	return &ChatRequest{
		Message: prompt,
		History: History{Messages: msgs},
		Filters: filters,
	}
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ChatResponse is the (possibly partial) turn state returned by the backend.
// In the streaming variant, each fragment unmarshals into this shape with
// only a subset of fields present.
type ChatResponse struct {
	Answer       string             `json:"answer"`
	FinishReason string             `json:"finish_reason"`
	Citations    []InformationPiece `json:"citations"`
}

// KeyValuePair is one metadata entry of a citation record.
type KeyValuePair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// InformationPiece is one raw citation record: a source document excerpt
// plus its metadata.
type InformationPiece struct {
	Content  string         `json:"content"`
	Metadata []KeyValuePair `json:"metadata"`
}

// informationPieceWire mirrors InformationPiece but accepts both field names
// emitted by the deployed backend variants ("content" and "page_content").
type informationPieceWire struct {
	Content     string         `json:"content"`
	PageContent string         `json:"page_content"`
	Metadata    []KeyValuePair `json:"metadata"`
}

// UnmarshalJSON decodes a citation record. A record arrives either as a
// structured object or as a JSON-encoded string holding that object, which
// needs one extra parse step before the structured form is available.
func (p *InformationPiece) UnmarshalJSON(data []byte) error {
	// Double-encoded variant: unwrap the string, then decode the object.
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return err
		}
		data = []byte(inner)
	}

	var wire informationPieceWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	p.Content = wire.Content
	if p.Content == "" {
		p.Content = wire.PageContent
	}
	p.Metadata = wire.Metadata
	return nil
}

// MetadataValue returns the first metadata value for a key, case-sensitive.
// The second return reports whether the key was present.
func (p *InformationPiece) MetadataValue(key string) (string, bool) {
	for _, kv := range p.Metadata {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}
