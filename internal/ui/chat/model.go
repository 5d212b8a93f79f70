// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view.
package chat

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	conv "github.com/jeranaias/ragchat-tui/internal/chat"
	"github.com/jeranaias/ragchat-tui/internal/export"
	"github.com/jeranaias/ragchat-tui/internal/markdown"
	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures the chat view.
type Options struct {
	// BotName is the assistant display name.
	BotName string

	// Theme is "dark", "light", or "auto".
	Theme string

	// WordWrap is the target wrap width for rendered answers.
	WordWrap int

	// ExportDir receives exported transcripts. Empty means the working
	// directory.
	ExportDir string

	// ExportFormat is "html", "markdown", or "json". Empty means HTML.
	ExportFormat string

	// BotIconPath points to an SVG icon embedded in HTML exports.
	BotIconPath string
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	session      *model.Session
	orchestrator *conv.Orchestrator
	renderer     *markdown.Renderer
	options      Options

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model
	glam     *glamour.TermRenderer

	width  int
	height int
	ready  bool
	status string
}

// New creates the chat view over a session and its orchestrator.
func New(session *model.Session, orchestrator *conv.Orchestrator, renderer *markdown.Renderer, options Options) *Model {
	if options.BotName == "" {
		options.BotName = "Assistant"
	}
	if options.WordWrap <= 0 {
		options.WordWrap = 100
	}

	input := textinput.New()
	input.Placeholder = "Ask about the indexed documents..."
	input.Prompt = "> "
	input.CharLimit = 4000
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.Spinner

	return &Model{
		session:      session,
		orchestrator: orchestrator,
		renderer:     renderer,
		options:      options,
		input:        input,
		spin:         spin,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refreshTranscript()
		m.viewport.GotoBottom()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Submit):
			prompt := strings.TrimSpace(m.input.Value())
			if prompt != "" {
				loading := false
				m.orchestrator.Read(func() { loading = m.session.IsLoading })
				if !loading {
					m.input.Reset()
					m.status = ""
					cmds = append(cmds, m.submitCmd(prompt))
				}
			}

		case key.Matches(msg, keys.Export):
			cmds = append(cmds, m.exportCmd())
		}

	case SessionUpdatedMsg, TurnFinishedMsg:
		m.refreshTranscript()
		m.viewport.GotoBottom()

	case OptionsChangedMsg:
		m.options = msg.Options
		if m.ready {
			m.resize(m.width, m.height)
			m.refreshTranscript()
		}

	case exportedMsg:
		if msg.err != nil {
			m.status = styles.RenderError("export failed: " + msg.err.Error())
		} else {
			m.status = styles.RenderInfo("exported to " + msg.path)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// =============================================================================
// COMMANDS
// =============================================================================

// submitCmd runs one turn on a command goroutine. Streaming repaints arrive
// separately through the orchestrator's OnUpdate hook.
func (m *Model) submitCmd(prompt string) tea.Cmd {
	return func() tea.Msg {
		m.orchestrator.SubmitTurn(context.Background(), m.session, prompt)
		return TurnFinishedMsg{}
	}
}

// exportCmd writes the session transcript in the configured format.
func (m *Model) exportCmd() tea.Cmd {
	return func() tea.Msg {
		opts := export.DefaultOptions()
		opts.BotName = m.options.BotName
		opts.Theme = styles.ResolveTheme(m.options.Theme)
		opts.OpenAfterExport = false
		if m.options.ExportDir != "" {
			opts.OutputDir = m.options.ExportDir
		}
		if m.options.BotIconPath != "" {
			// Sanitization happens inside the exporter; an unreadable
			// file just means no icon.
			if raw, err := os.ReadFile(m.options.BotIconPath); err == nil {
				opts.BotIcon = string(raw)
			}
		}

		exporter, err := export.ForFormat(m.options.ExportFormat, opts, m.renderer)
		if err != nil {
			return exportedMsg{err: err}
		}

		var path string
		m.orchestrator.Read(func() {
			path, err = export.ExportToFile(m.session, exporter, opts)
		})
		return exportedMsg{path: path, err: err}
	}
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	wrap := m.options.WordWrap
	if wrap > width-4 {
		wrap = width - 4
	}
	if wrap < 20 {
		wrap = 20
	}

	// Rebuilding on resize keeps glamour's wrap width in step with the
	// terminal.
	glam, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.ResolveTheme(m.options.Theme)),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		m.glam = glam
	}

	chrome := 6 // header, input box, status bar
	viewportHeight := height - chrome
	if viewportHeight < 3 {
		viewportHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = viewportHeight
	}
	m.input.Width = width - 6
}
