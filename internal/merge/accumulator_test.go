// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package merge folds streamed JSON fragments into one cumulative turn
// state.
package merge

import (
	"errors"
	"testing"
)

func TestAccumulator_FirstSeenWins(t *testing.T) {
	a := NewAccumulator()

	state, err := a.Apply([]byte(`{"answer":"first"}`))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if state.Answer != "first" {
		t.Errorf("Answer = %q, want 'first'", state.Answer)
	}

	// A later fragment carrying the same key does not replace the value.
	state, err = a.Apply([]byte(`{"answer":"second","finish_reason":"stop"}`))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if state.Answer != "first" {
		t.Errorf("Answer = %q, want first value kept", state.Answer)
	}
	if state.FinishReason != "stop" {
		t.Errorf("FinishReason = %q, want 'stop'", state.FinishReason)
	}
}

func TestAccumulator_NullAndAbsentAreIgnored(t *testing.T) {
	a := NewAccumulator()

	// Absent key, then explicit null: neither counts as a value.
	if _, err := a.Apply([]byte(`{}`)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, err := a.Apply([]byte(`{"answer":null}`)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if a.HasAnswer() {
		t.Error("HasAnswer = true after null/absent fragments")
	}

	// The empty string IS a value and blocks later answers.
	state, err := a.Apply([]byte(`{"answer":""}`))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !a.HasAnswer() {
		t.Error("HasAnswer = false after empty-string answer")
	}
	state, err = a.Apply([]byte(`{"answer":"late"}`))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if state.Answer != "" {
		t.Errorf("Answer = %q, want empty string kept", state.Answer)
	}
}

func TestAccumulator_Citations(t *testing.T) {
	a := NewAccumulator()

	state, err := a.Apply([]byte(`{"citations":[{"content":"one"},{"content":"two"}]}`))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(state.Citations) != 2 {
		t.Fatalf("citations = %d, want 2", len(state.Citations))
	}

	// First citations list wins; a later list is dropped whole.
	state, err = a.Apply([]byte(`{"citations":[{"content":"other"}]}`))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(state.Citations) != 2 || state.Citations[0].Content != "one" {
		t.Errorf("citations = %+v, want original list kept", state.Citations)
	}
}

func TestAccumulator_SnapshotIsACopy(t *testing.T) {
	a := NewAccumulator()
	if _, err := a.Apply([]byte(`{"citations":[{"content":"one"}]}`)); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	snap := a.Snapshot()
	snap.Citations[0].Content = "mutated"

	if a.Final().Citations[0].Content != "one" {
		t.Error("mutating a snapshot leaked into the accumulator")
	}
}

func TestAccumulator_MalformedFragment(t *testing.T) {
	a := NewAccumulator()
	if _, err := a.Apply([]byte(`{"answer":"ok"}`)); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	_, err := a.Apply([]byte(`not json`))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want ParseError", err)
	}

	// Accumulated state survives a bad fragment.
	if a.Final().Answer != "ok" {
		t.Error("state lost after malformed fragment")
	}
}

func TestAccumulator_EmptyFinal(t *testing.T) {
	a := NewAccumulator()
	final := a.Final()

	if final.Answer != "" || final.FinishReason != "" || final.Citations != nil {
		t.Errorf("empty accumulator Final() = %+v", final)
	}
}
