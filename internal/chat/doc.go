// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat sequences a conversation turn end to end: transport, stream
// decoding, delta merging, citation resolution, and rendering.
//
// The orchestrator is the only writer of session state and the single error
// collapse point. Pipeline stages return typed errors; whatever the stage,
// the turn outcome collapses to the same shape: the in-flight assistant
// message keeps any content already applied, gains HasError, and the
// session's HasTurnError flag is set. There is no rollback and no retry.
//
// Turns are single-flight per session. A submit while a turn is in flight
// is silently dropped.
package chat
