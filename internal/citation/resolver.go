// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package citation normalizes raw citation records into typed, indexed
// citation entries.
package citation

import (
	"strings"

	"github.com/jeranaias/ragchat-tui/internal/backend"
	"github.com/jeranaias/ragchat-tui/internal/model"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ResolveError reports a citation record that could not be normalized
// beyond the documented fallback rules.
type ResolveError struct {
	Message string
	Cause   error
}

func (e *ResolveError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ResolveError) Unwrap() error {
	return e.Cause
}

// =============================================================================
// METADATA KEYS
// =============================================================================

// Known citation metadata keys. Lookup is case-sensitive, first match wins.
const (
	keyTitle       = "title"
	keyDocument    = "document"
	keyDocumentURL = "document_url"
)

// =============================================================================
// RESOLVER
// =============================================================================

// Renderer renders a markdown excerpt to sanitized HTML.
type Renderer interface {
	Render(source string) (string, error)
}

// Resolver turns raw citation records into session citations.
type Resolver struct {
	renderer Renderer
}

// NewResolver creates a resolver that renders excerpts through the given
// renderer.
func NewResolver(renderer Renderer) *Resolver {
	return &Resolver{renderer: renderer}
}

// Resolve normalizes records in array order. start seeds the index counter
// with the session's current citation total; messageID associates every
// entry with the current turn's assistant message.
func (r *Resolver) Resolve(records []backend.InformationPiece, start int, messageID string) ([]*model.Citation, error) {
	citations := make([]*model.Citation, 0, len(records))

	for i, record := range records {
		contentHTML, err := r.renderer.Render(record.Content)
		if err != nil {
			return nil, &ResolveError{Message: "failed to render citation excerpt", Cause: err}
		}

		citations = append(citations, &model.Citation{
			Index:       start + i,
			MessageID:   messageID,
			Title:       displayName(&record),
			SourceURL:   sourceURL(&record),
			ContentHTML: contentHTML,
		})
	}

	return citations, nil
}

// displayName derives the citation title: "title" falls back to "document";
// neither present yields the empty string, not an error.
func displayName(record *backend.InformationPiece) string {
	if v, ok := record.MetadataValue(keyTitle); ok {
		return unwrapQuotes(v)
	}
	if v, ok := record.MetadataValue(keyDocument); ok {
		return unwrapQuotes(v)
	}
	return ""
}

// sourceURL derives the citation source URL, empty when absent.
func sourceURL(record *backend.InformationPiece) string {
	if v, ok := record.MetadataValue(keyDocumentURL); ok {
		return unwrapQuotes(v)
	}
	return ""
}

// unwrapQuotes strips leading/trailing literal quote characters from a
// metadata value. Upstream double-encodes some values; this is that unwrap,
// not a general trim.
func unwrapQuotes(v string) string {
	return strings.Trim(v, `"`)
}
