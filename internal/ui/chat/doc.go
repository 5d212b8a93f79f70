// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view.
//
// The view is a reader of session state: it renders the history, the
// citation lines under each answer, the in-flight spinner, and the error
// banner, and it forwards submitted prompts to the orchestrator. All
// session mutation happens on the orchestrator's turn goroutine; the view
// repaints when update messages arrive through the program's message loop.
package chat
