// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package merge folds streamed JSON fragments into one cumulative turn
// state.
//
// Each fragment of the streaming transport variant is itself one complete
// JSON object describing partial or full turn state. The accumulator merge
// rule is first-seen-wins per key: once a key holds a non-absent value it is
// never overwritten by a later fragment. This mirrors the backend streaming
// protocol exactly; the alternative last-seen-wins reading that exists in a
// near-duplicate upstream code path is treated as a suspected backend defect
// (see DESIGN.md) and deliberately not implemented.
package merge
