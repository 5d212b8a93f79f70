// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jeranaias/ragchat-tui/internal/markdown"
	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/svg"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports a session to a standalone HTML page. Message bodies
// use the sanitized HTML already produced by the renderer during the
// conversation; the page embeds the highlight stylesheet and the renderer's
// click-delegate script so code copy buttons and image modals keep working.
type HTMLExporter struct {
	options  *Options
	renderer *markdown.Renderer
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options, renderer *markdown.Renderer) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts, renderer: renderer}
}

// Export converts a session to HTML format.
func (e *HTMLExporter) Export(s *model.Session) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("session is nil")
	}
	if s.IsEmpty() {
		return nil, fmt.Errorf("session has no messages")
	}

	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(sessionSummary(s))))
	sb.WriteString("    <meta name=\"generator\" content=\"ragchat\">\n")
	sb.WriteString(e.getCSS())
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", e.options.Theme))
	sb.WriteString("    <div class=\"container\">\n")

	sb.WriteString(e.renderHeader())

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range s.History {
		sb.WriteString(e.renderMessage(s, msg))
	}
	sb.WriteString("        </main>\n")

	if len(s.Citations) > 0 {
		sb.WriteString(e.renderCitationAppendix(s))
	}

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>ragchat</strong> on %s</p>\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")

	// One delegate per document. Re-arm first in case the renderer already
	// handed the script to another surface.
	e.renderer.Detach()
	sb.WriteString(e.renderer.Attach())
	sb.WriteString("\n</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

// renderHeader renders the page heading with the bot name and, when one is
// configured and passes sanitization, the bot icon.
func (e *HTMLExporter) renderHeader() string {
	var sb strings.Builder

	sb.WriteString("        <header class=\"page-header\">\n")
	if e.options.BotIcon != "" {
		if icon, err := svg.Sanitize(e.options.BotIcon); err == nil {
			sb.WriteString("            <span class=\"bot-icon\">" + icon + "</span>\n")
		}
	}
	name := e.options.BotName
	if name == "" {
		name = "Assistant"
	}
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(name)))
	sb.WriteString("        </header>\n")

	return sb.String()
}

// renderMessage renders a single message.
func (e *HTMLExporter) renderMessage(s *model.Session, msg *model.Message) string {
	var sb strings.Builder

	roleClass := strings.ToLower(msg.Role.String())
	errorClass := ""
	if msg.HasError {
		errorClass = " error-message"
	}
	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message%s\">\n", roleClass, errorClass))

	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", html.EscapeString(e.roleLabel(msg.Role))))
	if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
		sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.Timestamp)))
	}
	sb.WriteString("                </div>\n")

	sb.WriteString("                <div class=\"message-content\">\n")
	if msg.HTML != "" {
		sb.WriteString(msg.HTML)
	} else if msg.Markdown != "" {
		sb.WriteString("<p>" + html.EscapeString(msg.Markdown) + "</p>")
	} else if msg.HasError {
		sb.WriteString("<p class=\"error-note\">The assistant could not complete this answer.</p>")
	}
	sb.WriteString("\n                </div>\n")

	if refs := s.CitationsFor(msg.ID); len(refs) > 0 {
		sb.WriteString("                <div class=\"message-citations\">Sources:")
		for _, c := range refs {
			sb.WriteString(fmt.Sprintf(" <a href=\"#citation-%d\">[%d]</a>", c.Index, c.Index))
		}
		sb.WriteString("</div>\n")
	}

	sb.WriteString("            </div>\n")
	return sb.String()
}

// renderCitationAppendix lists every citation of the session in index order.
func (e *HTMLExporter) renderCitationAppendix(s *model.Session) string {
	var sb strings.Builder

	sb.WriteString("        <section class=\"citations\">\n")
	sb.WriteString("            <h2>Sources</h2>\n")
	for _, c := range s.Citations {
		sb.WriteString(fmt.Sprintf("            <div class=\"citation\" id=\"citation-%d\">\n", c.Index))

		title := c.Title
		if title == "" {
			title = "Untitled source"
		}
		if c.SourceURL != "" {
			sb.WriteString(fmt.Sprintf("                <h3>[%d] <a href=\"%s\">%s</a></h3>\n",
				c.Index, html.EscapeString(c.SourceURL), html.EscapeString(title)))
		} else {
			sb.WriteString(fmt.Sprintf("                <h3>[%d] %s</h3>\n", c.Index, html.EscapeString(title)))
		}

		sb.WriteString("                <div class=\"citation-content\">\n")
		sb.WriteString(c.ContentHTML)
		sb.WriteString("\n                </div>\n")
		sb.WriteString("            </div>\n")
	}
	sb.WriteString("        </section>\n")

	return sb.String()
}

// roleLabel maps a role to its transcript label.
func (e *HTMLExporter) roleLabel(role model.Role) string {
	if role == model.RoleAssistant && e.options.BotName != "" {
		return e.options.BotName
	}
	return role.DisplayName()
}

// =============================================================================
// STYLES
// =============================================================================

// getCSS returns the embedded stylesheet: page chrome plus the highlight
// classes emitted by the code-block renderer.
func (e *HTMLExporter) getCSS() string {
	var sb strings.Builder
	sb.WriteString("    <style>\n")
	sb.WriteString(pageCSS)
	sb.WriteString(markdown.HighlightCSS())
	sb.WriteString("\n    </style>\n")
	return sb.String()
}

const pageCSS = `
:root { --accent: #2563eb; --border: #d1d5db; }
body { margin: 0; font-family: system-ui, sans-serif; line-height: 1.6; }
body.dark-theme { background: #111827; color: #e5e7eb; }
body.dark-theme { --border: #374151; }
body.light-theme { background: #ffffff; color: #111827; }
.container { max-width: 48rem; margin: 0 auto; padding: 2rem 1rem; }
.page-header { display: flex; align-items: center; gap: 0.75rem; margin-bottom: 1.5rem; }
.page-header h1 { font-size: 1.5rem; margin: 0; }
.bot-icon svg { width: 2rem; height: 2rem; display: block; }
.message { border: 1px solid var(--border); border-radius: 8px; padding: 0.75rem 1rem; margin-bottom: 1rem; }
.user-message { border-left: 3px solid var(--accent); }
.error-message { border-color: #dc2626; }
.message-header { display: flex; justify-content: space-between; font-size: 0.85rem; opacity: 0.8; margin-bottom: 0.25rem; }
.role-label { font-weight: 600; }
.message-citations { font-size: 0.85rem; margin-top: 0.5rem; }
.message-citations a { color: var(--accent); text-decoration: none; }
.citations { border-top: 1px solid var(--border); margin-top: 2rem; padding-top: 1rem; }
.citation { margin-bottom: 1.5rem; }
.citation h3 { font-size: 1rem; }
.citation h3 a { color: var(--accent); }
.citation-content { font-size: 0.9rem; opacity: 0.9; }
.chat-code-block { border: 1px solid var(--border); border-radius: 6px; margin: 0.75rem 0; overflow: hidden; }
.chat-code-block__header { display: flex; justify-content: space-between; align-items: center; padding: 0.25rem 0.75rem; border-bottom: 1px solid var(--border); font-size: 0.8rem; }
.chat-code-block__lang::after { content: attr(data-language); text-transform: uppercase; opacity: 0.7; }
.chat-code-block pre { margin: 0; padding: 0.75rem; overflow-x: auto; }
.chat-code-copy-button { cursor: pointer; border: 1px solid var(--border); border-radius: 4px; background: transparent; color: inherit; font-size: 0.75rem; padding: 0.1rem 0.5rem; }
.chat-code-copy-button.is-copied::after { content: " " attr(data-copied); }
.chat-image img { max-width: 100%; cursor: zoom-in; }
.chat-image-modal { border: none; border-radius: 8px; max-width: 90vw; }
.chat-image-modal img { max-width: 100%; }
.footer { font-size: 0.8rem; opacity: 0.7; margin-top: 2rem; text-align: center; }
`
