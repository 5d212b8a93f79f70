// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions, messages,
// and resolved citations.
package model

import (
	"strings"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Hello", "<p>Hello</p>")

	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want user", msg.Role)
	}
	if msg.Markdown != "Hello" || msg.HTML != "<p>Hello</p>" {
		t.Errorf("content = %q / %q", msg.Markdown, msg.HTML)
	}
	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("ID = %q, want msg_ prefix", msg.ID)
	}
}

func TestNewAssistantPlaceholder(t *testing.T) {
	msg := NewAssistantPlaceholder()

	if msg.Role != RoleAssistant {
		t.Errorf("Role = %q, want assistant", msg.Role)
	}
	if !msg.IsEmpty() {
		t.Error("placeholder should start empty")
	}
	if !msg.Timestamp.IsZero() {
		t.Error("placeholder timestamp should stay zero until the turn ends")
	}
}

func TestNewGreeting(t *testing.T) {
	msg := NewGreeting("Hi!", "<p>Hi!</p>")

	if !msg.SkipAPI {
		t.Error("greeting must be flagged SkipAPI")
	}
	if msg.Timestamp.IsZero() {
		t.Error("greeting should be timestamped immediately")
	}
}

func TestMessageIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewAssistantPlaceholder().ID
		if seen[id] {
			t.Fatalf("duplicate ID %q", id)
		}
		seen[id] = true
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := &Message{Markdown: "héllo wörld, this runs long"}

	if got := msg.Preview(100); got != msg.Markdown {
		t.Errorf("short preview = %q", got)
	}
	got := msg.Preview(10)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Preview(10) = %q, want ellipsis", got)
	}
	if len([]rune(got)) != 10 {
		t.Errorf("Preview(10) rune length = %d", len([]rune(got)))
	}
}

func TestRole_DisplayName(t *testing.T) {
	if RoleUser.DisplayName() != "You" {
		t.Errorf("user display = %q", RoleUser.DisplayName())
	}
	if RoleAssistant.DisplayName() != "Assistant" {
		t.Errorf("assistant display = %q", RoleAssistant.DisplayName())
	}
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestSession_Messages(t *testing.T) {
	s := NewSession()

	if !s.IsEmpty() || s.LastMessage() != nil {
		t.Error("new session should be empty")
	}

	first := NewUserMessage("a", "")
	second := NewUserMessage("b", "")
	s.AddMessage(first)
	s.AddMessage(second)

	if s.MessageCount() != 2 {
		t.Errorf("count = %d", s.MessageCount())
	}
	if s.LastMessage() != second {
		t.Error("LastMessage returned wrong message")
	}
	if s.History[0] != first {
		t.Error("history order changed")
	}
}

func TestSession_CitationsFor(t *testing.T) {
	s := NewSession()
	s.AddCitations([]*Citation{
		{Index: 0, MessageID: "msg_a"},
		{Index: 1, MessageID: "msg_b"},
		{Index: 2, MessageID: "msg_a"},
	})

	got := s.CitationsFor("msg_a")
	if len(got) != 2 || got[0].Index != 0 || got[1].Index != 2 {
		t.Errorf("CitationsFor(msg_a) = %+v", got)
	}
	if len(s.CitationsFor("msg_c")) != 0 {
		t.Error("unknown message returned citations")
	}
}
