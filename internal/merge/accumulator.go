// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package merge folds streamed JSON fragments into one cumulative turn
// state.
package merge

import (
	"encoding/json"

	"github.com/jeranaias/ragchat-tui/internal/backend"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ParseError reports a fragment that is not a valid JSON turn-state object.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// =============================================================================
// ACCUMULATOR
// =============================================================================

// fragmentWire is the partial turn-state shape of one fragment. Pointer
// fields distinguish absent (or null) keys from present ones.
type fragmentWire struct {
	Answer       *string                    `json:"answer"`
	FinishReason *string                    `json:"finish_reason"`
	Citations    []backend.InformationPiece `json:"citations"`
}

// Accumulator maintains the single cumulative turn state across a stream.
//
// Merge rule, per key present in an incoming fragment: keep the current
// value if the accumulator already holds a non-absent value for that key;
// otherwise adopt the incoming value. First-seen-wins, not last-seen-wins.
type Accumulator struct {
	answer       *string
	finishReason *string
	citations    []backend.InformationPiece
}

// NewAccumulator creates an empty accumulator for one turn.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Apply merges one fragment and returns the current cumulative snapshot.
func (a *Accumulator) Apply(fragment []byte) (*backend.ChatResponse, error) {
	var wire fragmentWire
	if err := json.Unmarshal(fragment, &wire); err != nil {
		return nil, &ParseError{Message: "malformed stream fragment", Cause: err}
	}

	if a.answer == nil && wire.Answer != nil {
		a.answer = wire.Answer
	}
	if a.finishReason == nil && wire.FinishReason != nil {
		a.finishReason = wire.FinishReason
	}
	if a.citations == nil && wire.Citations != nil {
		a.citations = wire.Citations
	}

	return a.Snapshot(), nil
}

// Snapshot returns a value copy of the current cumulative state, safe to
// hand to rendering while the stream continues.
func (a *Accumulator) Snapshot() *backend.ChatResponse {
	snap := &backend.ChatResponse{}
	if a.answer != nil {
		snap.Answer = *a.answer
	}
	if a.finishReason != nil {
		snap.FinishReason = *a.finishReason
	}
	if a.citations != nil {
		snap.Citations = append([]backend.InformationPiece(nil), a.citations...)
	}
	return snap
}

// Final returns the authoritative turn result at stream end.
func (a *Accumulator) Final() *backend.ChatResponse {
	return a.Snapshot()
}

// HasAnswer reports whether any fragment has carried an answer yet.
func (a *Accumulator) HasAnswer() bool {
	return a.answer != nil
}
