// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package svg sanitizes inline SVG markup before it reaches an HTML surface.
package svg

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// =============================================================================
// LIMITS AND ERRORS
// =============================================================================

// maxIconLength caps accepted SVG sources. Inline icons are small; anything
// near this size is not an icon.
const maxIconLength = 100_000

var (
	// ErrTooLarge means the input exceeded maxIconLength.
	ErrTooLarge = errors.New("svg: input too large")

	// ErrNotSVG means the document root is not an <svg> element.
	ErrNotSVG = errors.New("svg: root element is not <svg>")

	// ErrForbiddenElement means the document contains a <script> or
	// <foreignObject> element.
	ErrForbiddenElement = errors.New("svg: forbidden element")

	// ErrMalformed means the input is not well-formed XML.
	ErrMalformed = errors.New("svg: malformed markup")
)

// =============================================================================
// SANITIZER
// =============================================================================

// Sanitize validates and rewrites inline SVG markup. Oversized, malformed,
// non-<svg>-rooted, or script-bearing inputs are rejected with an error; on
// success the returned string is a clean re-serialization with event handler
// attributes and javascript: link targets removed.
func Sanitize(icon string) (string, error) {
	if len(icon) > maxIconLength {
		return "", ErrTooLarge
	}

	// RawToken keeps namespace prefixes as written, which lets the output
	// round-trip xmlns declarations and xlink attributes untouched. The
	// cost is that tag matching and single-root checks are ours to do.
	dec := xml.NewDecoder(strings.NewReader(icon))

	var out strings.Builder
	var stack []xml.Name
	rootSeen := false
	rootClosed := false

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootClosed {
				return "", fmt.Errorf("%w: content after root element", ErrMalformed)
			}
			if !rootSeen {
				if t.Name.Local != "svg" {
					return "", ErrNotSVG
				}
				rootSeen = true
			}
			if forbiddenElement(t.Name) {
				return "", fmt.Errorf("%w: <%s>", ErrForbiddenElement, rawName(t.Name))
			}
			stack = append(stack, t.Name)
			writeStartElement(&out, t)

		case xml.EndElement:
			if len(stack) == 0 {
				return "", fmt.Errorf("%w: unexpected </%s>", ErrMalformed, rawName(t.Name))
			}
			open := stack[len(stack)-1]
			if open != t.Name {
				return "", fmt.Errorf("%w: </%s> closes <%s>", ErrMalformed, rawName(t.Name), rawName(open))
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				rootClosed = true
			}
			out.WriteString("</" + rawName(t.Name) + ">")

		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return "", fmt.Errorf("%w: text outside root element", ErrMalformed)
				}
				continue
			}
			_ = xml.EscapeText(&out, t)

		case xml.Comment, xml.ProcInst, xml.Directive:
			// Dropped from the output. Nothing an icon needs.
		}
	}

	if !rootSeen {
		return "", ErrNotSVG
	}
	if len(stack) != 0 {
		return "", fmt.Errorf("%w: unclosed <%s>", ErrMalformed, rawName(stack[len(stack)-1]))
	}

	return out.String(), nil
}

// forbiddenElement reports whether an element may never appear, at any
// depth. <script> executes directly; <foreignObject> smuggles arbitrary
// HTML past the XML rules.
func forbiddenElement(name xml.Name) bool {
	return strings.EqualFold(name.Local, "script") || name.Local == "foreignObject"
}

// forbiddenAttr reports whether an attribute must be stripped: any event
// handler, or a link target resolving to a javascript: URI. The scheme
// check runs on a laundered copy of the value, since HTML attribute and
// URL parsing discard embedded whitespace and control characters before
// resolving the scheme.
func forbiddenAttr(attr xml.Attr) bool {
	local := strings.ToLower(attr.Name.Local)
	if strings.HasPrefix(local, "on") {
		return true
	}
	if local == "href" {
		value := strings.Map(func(r rune) rune {
			if r <= 0x20 || r == 0x7f {
				return -1
			}
			return r
		}, attr.Value)
		return strings.HasPrefix(strings.ToLower(value), "javascript:")
	}
	return false
}

// rawName reconstructs the name as written, prefix included.
func rawName(name xml.Name) string {
	if name.Space != "" {
		return name.Space + ":" + name.Local
	}
	return name.Local
}

// writeStartElement serializes a start tag, skipping stripped attributes.
func writeStartElement(out *strings.Builder, t xml.StartElement) {
	out.WriteString("<" + rawName(t.Name))
	for _, attr := range t.Attr {
		if forbiddenAttr(attr) {
			continue
		}
		out.WriteString(" " + rawName(attr.Name) + `="`)
		_ = xml.EscapeText(out, []byte(attr.Value))
		out.WriteString(`"`)
	}
	out.WriteString(">")
}
