// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown converts raw chat text into sanitized HTML.
package markdown

import (
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

// =============================================================================
// LANGUAGE SET
// =============================================================================

// supportedLanguages is the fixed set of languages highlighted by name.
// Anything else goes through auto-detection.
var supportedLanguages = map[string]bool{
	"bash":       true,
	"diff":       true,
	"ini":        true,
	"javascript": true,
	"typescript": true,
	"json":       true,
	"sql":        true,
	"xml":        true,
	"yaml":       true,
}

// languageAliases maps common fence tags onto the supported set.
var languageAliases = map[string]string{
	"js":    "javascript",
	"ts":    "typescript",
	"sh":    "bash",
	"shell": "bash",
	"zsh":   "bash",
	"yml":   "yaml",
	"html":  "xml",
}

// NormalizeLanguage resolves a fenced-code-block language tag to its
// canonical name. Returns "" for an empty tag.
func NormalizeLanguage(language string) string {
	normalized := strings.ToLower(strings.TrimSpace(language))
	if normalized == "" {
		return ""
	}
	if canonical, ok := languageAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// highlightStyle is only used to derive the stylesheet; the formatter emits
// classes, not inline styles, so sanitized output keeps its highlighting.
const highlightStyle = "github"

// newHTMLFormatter builds the classes-mode chroma formatter. The surrounding
// <pre><code> wrapper is ours, so chroma must not emit its own.
func newHTMLFormatter() *chromahtml.Formatter {
	return chromahtml.New(
		chromahtml.WithClasses(true),
		chromahtml.PreventSurroundingPre(true),
	)
}

// highlightCode highlights code for a fence tag. Fallback chain: named
// lexer for supported languages, content auto-detection, plain escaped text.
func highlightCode(code, language string) string {
	normalized := NormalizeLanguage(language)

	var lexer chroma.Lexer
	if supportedLanguages[normalized] {
		lexer = lexers.Get(normalized)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		return html.EscapeString(code)
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return html.EscapeString(code)
	}

	style := chromaStyles.Get(highlightStyle)
	if style == nil {
		style = chromaStyles.Fallback
	}

	var buf strings.Builder
	if err := newHTMLFormatter().Format(&buf, style, iterator); err != nil {
		return html.EscapeString(code)
	}
	return buf.String()
}

// HighlightCSS returns the stylesheet for the class-based highlighting,
// for surfaces that embed the rendered HTML (e.g. the session export).
func HighlightCSS() string {
	style := chromaStyles.Get(highlightStyle)
	if style == nil {
		style = chromaStyles.Fallback
	}

	var buf strings.Builder
	if err := newHTMLFormatter().WriteCSS(&buf, style); err != nil {
		return ""
	}
	return buf.String()
}
