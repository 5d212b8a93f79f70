// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions, messages,
// and resolved citations.
//
// A Session is the durable conversation context spanning multiple turns:
// the ordered message history plus the append-only citation list. Sessions
// are owned by the caller (typically the UI layer) and passed by reference
// into the orchestrator; there is no hidden global registry.
//
// Messages and citations are created during a turn and never mutated
// afterward, with one exception: the in-flight assistant message, which
// mutates monotonically (fields added or overwritten, never removed) until
// the turn ends.
package model
