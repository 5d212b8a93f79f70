// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the ragchat TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME PROBE
// =============================================================================

// DarkBackground reports whether the terminal background is dark. The
// "auto" theme resolves through this probe; explicit themes bypass it.
func DarkBackground() bool {
	return termenv.HasDarkBackground()
}

// ResolveTheme maps a configured theme name to the effective one.
func ResolveTheme(theme string) string {
	switch theme {
	case "light", "dark":
		return theme
	default:
		if DarkBackground() {
			return "dark"
		}
		return "light"
	}
}

// =============================================================================
// COMPONENT STYLES
// =============================================================================

// Header is the title bar at the top of the chat view.
var Header = lipgloss.NewStyle().
	Foreground(Purple).
	Bold(true).
	Padding(0, 1)

// HeaderInfo is the session info next to the title.
var HeaderInfo = lipgloss.NewStyle().
	Foreground(TextMuted).
	Padding(0, 1)

// UserLabel marks user messages in the transcript.
var UserLabel = lipgloss.NewStyle().
	Foreground(Cyan).
	Bold(true)

// AssistantLabel marks assistant messages in the transcript.
var AssistantLabel = lipgloss.NewStyle().
	Foreground(Purple).
	Bold(true)

// Timestamp renders per-message timestamps.
var Timestamp = lipgloss.NewStyle().
	Foreground(TextMuted)

// UserText renders the raw user prompt in the transcript.
var UserText = lipgloss.NewStyle().
	Foreground(TextPrimary)

// CitationLine renders one "[n] title" source line under an answer.
var CitationLine = lipgloss.NewStyle().
	Foreground(TextSecondary)

// CitationURL renders the source link of a citation line.
var CitationURL = lipgloss.NewStyle().
	Foreground(Cyan).
	Underline(true)

// ErrorBanner is the full-width banner shown while HasTurnError is set.
var ErrorBanner = lipgloss.NewStyle().
	Foreground(Rose).
	Bold(true).
	Border(lipgloss.NormalBorder()).
	BorderForeground(Rose).
	Padding(0, 1)

// InputBox frames the prompt input line.
var InputBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Overlay).
	Padding(0, 1)

// InputBoxActive frames the input while a turn may be submitted.
var InputBoxActive = InputBox.
	BorderForeground(Cyan)

// StatusBar is the hint line at the bottom.
var StatusBar = lipgloss.NewStyle().
	Foreground(TextMuted).
	Padding(0, 1)

// Spinner styles the in-flight indicator.
var Spinner = lipgloss.NewStyle().
	Foreground(Amber)
