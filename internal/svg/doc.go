// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package svg sanitizes inline SVG markup before it reaches any HTML
// surface.
//
// The policy is reject-first: oversized inputs, inputs that do not parse as
// well-formed XML, and inputs whose root element is not <svg> are rejected
// outright, as is any document containing a <script> or <foreignObject>
// element at any depth. Surviving markup is re-serialized with event
// handler attributes and javascript: link targets stripped, so the output
// is a clean reconstruction rather than a pass-through of the input bytes.
package svg
