// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a finished chat session to a file.
//
// Three formats are supported: a standalone HTML page embedding the
// renderer's sanitized message HTML, the citation appendix, the shared
// click-delegate script, and the syntax highlighting stylesheet; a plain
// markdown transcript; and a raw JSON dump of the session state.
package export
