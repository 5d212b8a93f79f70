// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the document-grounded
// question-answering backend.
//
// The client issues one POST per turn and exposes the response either as a
// single parsed object (non-streaming backends) or as an open byte-stream
// handle (chunked backends). StreamReader turns that handle into a lazy,
// finite, non-restartable sequence of text fragments, buffering undecoded
// trailing bytes so multi-byte characters split across network reads decode
// exactly once. No JSON interpretation happens in this package beyond the
// non-streaming response body; fragment parsing belongs to package merge.
//
// Failures carry typed ClientError values. A failed turn is terminal for
// that turn only; no retry is attempted at this layer.
package backend
