// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package citation normalizes raw citation records into typed, indexed
// citation entries.
package citation

import (
	"errors"
	"testing"

	"github.com/jeranaias/ragchat-tui/internal/backend"
)

// passthroughRenderer wraps the source so tests can see it went through.
type passthroughRenderer struct{}

func (passthroughRenderer) Render(source string) (string, error) {
	return "<p>" + source + "</p>", nil
}

// failingRenderer always errors.
type failingRenderer struct{}

func (failingRenderer) Render(string) (string, error) {
	return "", errors.New("render broke")
}

func record(content string, meta ...backend.KeyValuePair) backend.InformationPiece {
	return backend.InformationPiece{Content: content, Metadata: meta}
}

func TestResolve(t *testing.T) {
	r := NewResolver(passthroughRenderer{})

	records := []backend.InformationPiece{
		record("excerpt one",
			backend.KeyValuePair{Key: "title", Value: "Doc One"},
			backend.KeyValuePair{Key: "document_url", Value: "https://example.com/one"},
		),
		record("excerpt two",
			backend.KeyValuePair{Key: "document", Value: "two.pdf"},
		),
	}

	citations, err := r.Resolve(records, 3, "msg_abc")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(citations) != 2 {
		t.Fatalf("citations = %d, want 2", len(citations))
	}

	first := citations[0]
	if first.Index != 3 {
		t.Errorf("Index = %d, want start value 3", first.Index)
	}
	if first.MessageID != "msg_abc" {
		t.Errorf("MessageID = %q", first.MessageID)
	}
	if first.Title != "Doc One" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.SourceURL != "https://example.com/one" {
		t.Errorf("SourceURL = %q", first.SourceURL)
	}
	if first.ContentHTML != "<p>excerpt one</p>" {
		t.Errorf("ContentHTML = %q, want rendered excerpt", first.ContentHTML)
	}

	second := citations[1]
	if second.Index != 4 {
		t.Errorf("Index = %d, want 4", second.Index)
	}
	if second.Title != "two.pdf" {
		t.Errorf("Title = %q, want document fallback", second.Title)
	}
	if second.SourceURL != "" {
		t.Errorf("SourceURL = %q, want empty", second.SourceURL)
	}
}

func TestResolve_TitleFallbacks(t *testing.T) {
	r := NewResolver(passthroughRenderer{})

	tests := []struct {
		name string
		meta []backend.KeyValuePair
		want string
	}{
		{"title preferred", []backend.KeyValuePair{
			{Key: "document", Value: "file.pdf"},
			{Key: "title", Value: "Real Title"},
		}, "Real Title"},
		{"document fallback", []backend.KeyValuePair{
			{Key: "document", Value: "file.pdf"},
		}, "file.pdf"},
		{"neither present", nil, ""},
		{"case-sensitive keys", []backend.KeyValuePair{
			{Key: "Title", Value: "Wrong Case"},
		}, ""},
		{"quoted value unwrapped", []backend.KeyValuePair{
			{Key: "title", Value: `"Quoted Title"`},
		}, "Quoted Title"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			citations, err := r.Resolve([]backend.InformationPiece{record("x", tc.meta...)}, 0, "msg_1")
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if citations[0].Title != tc.want {
				t.Errorf("Title = %q, want %q", citations[0].Title, tc.want)
			}
		})
	}
}

func TestResolve_QuotedURLUnwrapped(t *testing.T) {
	r := NewResolver(passthroughRenderer{})

	citations, err := r.Resolve([]backend.InformationPiece{
		record("x", backend.KeyValuePair{Key: "document_url", Value: `"https://example.com"`}),
	}, 0, "msg_1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if citations[0].SourceURL != "https://example.com" {
		t.Errorf("SourceURL = %q, want quotes stripped", citations[0].SourceURL)
	}
}

func TestResolve_EmptyRecords(t *testing.T) {
	r := NewResolver(passthroughRenderer{})

	citations, err := r.Resolve(nil, 10, "msg_1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(citations) != 0 {
		t.Errorf("citations = %d, want 0", len(citations))
	}
}

func TestResolve_RenderFailure(t *testing.T) {
	r := NewResolver(failingRenderer{})

	_, err := r.Resolve([]backend.InformationPiece{record("x")}, 0, "msg_1")
	var resolveErr *ResolveError
	if !errors.As(err, &resolveErr) {
		t.Fatalf("error = %v, want ResolveError", err)
	}
	if resolveErr.Unwrap() == nil {
		t.Error("ResolveError did not wrap the renderer error")
	}
}
