// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package citation normalizes raw citation records from the backend into
// typed, globally-indexed citation entries.
//
// Metadata lookup uses a closed set of known keys with explicit fallback
// rules: the display name comes from "title", falling back to "document",
// falling back to the empty string; the source URL comes from
// "document_url". Extracted values get their leading and trailing literal
// quote characters stripped, a defensive unwrap of double-encoded upstream
// values.
//
// Indices are seeded by the session's current citation total, so they stay
// strictly increasing and unique across the whole session lifetime.
package citation
