// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown converts raw chat text (user prompts, assistant answers,
// citation excerpts) into sanitized HTML.
//
// Rendering is GFM-compatible with hard line breaks. Fenced code blocks get
// syntax highlighting for a fixed language set with an alias table and a
// safe fallback chain (auto-detect, then plain escaped text). Code blocks
// carry a copy-to-clipboard button and images open uniquely-identified modal
// dialogs; both are wired through one click delegate whose registration
// state is owned by the renderer instance (idempotent Attach/Detach), not a
// package-level flag.
//
// All output passes a bluemonday allow-list policy before it reaches the
// DOM of any embedding surface.
package markdown
