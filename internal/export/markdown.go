// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/jeranaias/ragchat-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports a session to a plain markdown transcript. The
// raw markdown source of each message is emitted untouched.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a session to Markdown format.
func (e *MarkdownExporter) Export(s *model.Session) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("session is nil")
	}
	if s.IsEmpty() {
		return nil, fmt.Errorf("session has no messages")
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", sessionSummary(s)))

	for _, msg := range s.History {
		label := msg.Role.DisplayName()
		if msg.Role == model.RoleAssistant && e.options.BotName != "" {
			label = e.options.BotName
		}

		sb.WriteString(fmt.Sprintf("## %s", label))
		if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
			sb.WriteString(fmt.Sprintf(" (%s)", formatTimestamp(msg.Timestamp)))
		}
		sb.WriteString("\n\n")

		switch {
		case msg.Markdown != "":
			sb.WriteString(msg.Markdown)
			sb.WriteString("\n")
		case msg.HasError:
			sb.WriteString("_The assistant could not complete this answer._\n")
		}

		if refs := s.CitationsFor(msg.ID); len(refs) > 0 {
			sb.WriteString("\nSources:")
			for _, c := range refs {
				sb.WriteString(fmt.Sprintf(" [%d]", c.Index))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(s.Citations) > 0 {
		sb.WriteString("## Sources\n\n")
		for _, c := range s.Citations {
			title := c.Title
			if title == "" {
				title = "Untitled source"
			}
			if c.SourceURL != "" {
				sb.WriteString(fmt.Sprintf("- [%d] [%s](%s)\n", c.Index, title, c.SourceURL))
			} else {
				sb.WriteString(fmt.Sprintf("- [%d] %s\n", c.Index, title))
			}
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}
