// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
	"github.com/jeranaias/ragchat-tui/internal/util"
)

// View implements tea.Model. The session is mutated on the turn goroutine,
// so the render runs under the orchestrator's lock.
func (m *Model) View() string {
	if !m.ready {
		return "Starting ragchat..."
	}

	var page string
	m.orchestrator.Read(func() { page = m.renderPage() })
	return page
}

func (m *Model) renderPage() string {
	var sb strings.Builder
	sb.WriteString(m.headerView())
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	if m.session.HasTurnError {
		banner := styles.ErrorBanner.Width(m.width - 2).
			Render("The last turn failed. The backend may be unreachable; try again.")
		sb.WriteString(banner)
		sb.WriteString("\n")
	}

	inputBox := styles.InputBox
	if !m.session.IsLoading {
		inputBox = styles.InputBoxActive
	}
	sb.WriteString(inputBox.Width(m.width - 2).Render(m.input.View()))
	sb.WriteString("\n")
	sb.WriteString(m.statusView())

	return sb.String()
}

// headerView renders the title bar.
func (m *Model) headerView() string {
	title := styles.Header.Render(m.options.BotName)
	info := fmt.Sprintf("%d messages", m.session.MessageCount())
	if m.session.ID != "" {
		info = util.TruncateRunes(m.session.ID, 20) + " • " + info
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, title, styles.HeaderInfo.Render(info))
}

// statusView renders the bottom hint line, with the spinner while a turn
// is in flight.
func (m *Model) statusView() string {
	if m.status != "" {
		return styles.StatusBar.Render(m.status)
	}
	if m.session.IsLoading {
		return styles.StatusBar.Render(m.spin.View() + " thinking...")
	}
	return styles.StatusBar.Render("enter: send • ctrl+e: export • ctrl+c: quit")
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript rebuilds the viewport content from the session, reading
// it under the orchestrator's lock.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}

	var content string
	m.orchestrator.Read(func() { content = m.transcript() })
	m.viewport.SetContent(content)
}

func (m *Model) transcript() string {
	var sb strings.Builder
	for i, msg := range m.session.History {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(m.renderMessage(msg))
	}
	return sb.String()
}

// renderMessage renders one message with its label, body, and source lines.
func (m *Model) renderMessage(msg *model.Message) string {
	var sb strings.Builder

	label := styles.UserLabel.Render(msg.Role.DisplayName())
	if msg.Role == model.RoleAssistant {
		label = styles.AssistantLabel.Render(m.options.BotName)
	}
	sb.WriteString(label)
	if !msg.Timestamp.IsZero() {
		sb.WriteString(" " + styles.Timestamp.Render(msg.Timestamp.Format("15:04:05")))
	}
	sb.WriteString("\n")

	switch {
	case msg.Role == model.RoleUser:
		sb.WriteString(styles.UserText.Render(msg.Markdown))
		sb.WriteString("\n")

	case msg.IsEmpty() && msg.HasError:
		sb.WriteString(styles.RenderError("The assistant could not complete this answer."))
		sb.WriteString("\n")

	case msg.IsEmpty():
		sb.WriteString(styles.Timestamp.Render("..."))
		sb.WriteString("\n")

	default:
		sb.WriteString(m.renderAnswer(msg.Markdown))
		if msg.HasError {
			sb.WriteString(styles.RenderWarning("Answer incomplete; the turn failed partway."))
			sb.WriteString("\n")
		}
	}

	for _, c := range m.session.CitationsFor(msg.ID) {
		sb.WriteString(m.renderCitation(c))
	}

	return sb.String()
}

// renderAnswer renders assistant markdown for the terminal.
func (m *Model) renderAnswer(markdown string) string {
	if m.glam != nil {
		if out, err := m.glam.Render(markdown); err == nil {
			return strings.TrimRight(out, "\n") + "\n"
		}
	}
	return markdown + "\n"
}

// renderCitation renders one "[n] title" source line.
func (m *Model) renderCitation(c *model.Citation) string {
	title := c.Title
	if title == "" {
		title = "Untitled source"
	}
	line := styles.CitationLine.Render(fmt.Sprintf("  [%d] %s", c.Index, util.TruncateWidth(title, 60)))
	if c.SourceURL != "" {
		line += " " + styles.CitationURL.Render(util.TruncateWidth(c.SourceURL, 50))
	}
	return line + "\n"
}
