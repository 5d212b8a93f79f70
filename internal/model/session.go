// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions, messages,
// and resolved citations.
package model

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session holds one conversation: the ordered message history and the
// append-only citation list, plus the turn-state flags read by the UI.
//
// The session is mutated only by the orchestrator, under its lock; the UI
// layer reads it through the orchestrator's Read method. History keeps
// insertion order and is never reordered or deduplicated.
type Session struct {
	// ID is the opaque session identifier, supplied at conversation start
	// and immutable thereafter.
	ID string `json:"id"`

	// History is the ordered message sequence.
	History []*Message `json:"history"`

	// Citations is append-only; indices are assigned session-wide.
	Citations []*Citation `json:"citations"`

	// IsLoading is true exactly while a turn is in flight.
	IsLoading bool `json:"is_loading"`

	// HasTurnError reflects the most recent turn's outcome.
	HasTurnError bool `json:"has_turn_error"`
}

// NewSession creates an empty session. The id is assigned later by
// InitiateConversation.
func NewSession() *Session {
	return &Session{
		History:   make([]*Message, 0),
		Citations: make([]*Citation, 0),
	}
}

// LastMessage returns the most recent message, or nil if empty.
func (s *Session) LastMessage() *Message {
	if len(s.History) == 0 {
		return nil
	}
	return s.History[len(s.History)-1]
}

// AddMessage appends a message to the history.
func (s *Session) AddMessage(msg *Message) {
	s.History = append(s.History, msg)
}

// AddCitations appends resolved citations in the order produced. Citations
// are never removed, even if the owning message subsequently errors.
func (s *Session) AddCitations(citations []*Citation) {
	s.Citations = append(s.Citations, citations...)
}

// CitationsFor returns the citations owned by a message, in index order.
func (s *Session) CitationsFor(messageID string) []*Citation {
	var out []*Citation
	for _, c := range s.Citations {
		if c.MessageID == messageID {
			out = append(out, c)
		}
	}
	return out
}

// MessageCount returns the number of messages.
func (s *Session) MessageCount() int {
	return len(s.History)
}

// IsEmpty returns true if there are no messages.
func (s *Session) IsEmpty() bool {
	return len(s.History) == 0
}
