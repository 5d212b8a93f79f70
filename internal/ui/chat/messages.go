// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view.
package chat

// SessionUpdatedMsg signals that the session state changed and the view
// should repaint. The orchestrator's OnUpdate hook sends it through
// tea.Program.Send while a turn streams.
type SessionUpdatedMsg struct{}

// TurnFinishedMsg signals that a submitted turn has fully completed,
// successfully or not.
type TurnFinishedMsg struct{}

// OptionsChangedMsg carries new display options, typically after a config
// file reload.
type OptionsChangedMsg struct {
	Options Options
}

// exportedMsg reports the outcome of an export triggered from the view.
type exportedMsg struct {
	path string
	err  error
}
