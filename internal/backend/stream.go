// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the document-grounded
// question-answering backend.
package backend

import (
	"io"
	"unicode/utf8"
)

// =============================================================================
// STREAM READER
// =============================================================================

// streamBufSize is the network read size per pull.
const streamBufSize = 4 * 1024

// StreamReader adapts a response byte stream into a lazy, finite,
// non-restartable sequence of text fragments.
//
// Reads are split on no particular boundary by the network, so a multi-byte
// UTF-8 character may arrive half in one read and half in the next. The
// reader holds any undecoded trailing byte sequence between reads so every
// character is emitted exactly once, never duplicated or dropped.
//
// The reader performs no JSON parsing; it is purely the byte-to-text
// boundary-safe adapter.
type StreamReader struct {
	body    io.ReadCloser
	buf     []byte
	pending []byte // trailing bytes of an incomplete rune
	done    bool
}

// NewStreamReader creates a stream reader over a response body.
func NewStreamReader(body io.ReadCloser) *StreamReader {
	return &StreamReader{
		body: body,
		buf:  make([]byte, streamBufSize),
	}
}

// Next returns the next text fragment.
//
// The contract is pull-based: each call blocks for one underlying read and
// returns (fragment, nil). On clean stream end it returns ("", io.EOF) after
// flushing any buffered bytes; read failures return a ClientError of type
// ErrTypeStream. Next must not be called again after a non-nil error.
func (s *StreamReader) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for {
		n, err := s.body.Read(s.buf)

		if n > 0 {
			fragment := s.decode(s.buf[:n])
			if err == io.EOF {
				s.done = true
				return fragment + s.flush(), nil
			}
			if err != nil {
				s.done = true
				return "", &ClientError{Type: ErrTypeStream, Message: "stream read failed", Cause: err}
			}
			if fragment == "" {
				// Whole read was an incomplete rune; pull more bytes.
				continue
			}
			return fragment, nil
		}

		if err == io.EOF {
			s.done = true
			if tail := s.flush(); tail != "" {
				return tail, nil
			}
			return "", io.EOF
		}
		if err != nil {
			s.done = true
			return "", &ClientError{Type: ErrTypeStream, Message: "stream read failed", Cause: err}
		}
	}
}

// Close releases the underlying response body.
func (s *StreamReader) Close() error {
	s.done = true
	return s.body.Close()
}

// decode appends chunk to the carried bytes and returns the longest prefix
// that ends on a rune boundary, keeping the remainder for the next read.
func (s *StreamReader) decode(chunk []byte) string {
	data := chunk
	if len(s.pending) > 0 {
		data = append(s.pending, chunk...)
		s.pending = nil
	}

	cut := completePrefixLen(data)
	if cut < len(data) {
		s.pending = append([]byte(nil), data[cut:]...)
	}
	return string(data[:cut])
}

// flush emits whatever trailing bytes remain at stream end. A conforming
// UTF-8 stream never leaves an incomplete rune here; if one arrives anyway
// it is passed through rather than silently dropped.
func (s *StreamReader) flush() string {
	if len(s.pending) == 0 {
		return ""
	}
	tail := string(s.pending)
	s.pending = nil
	return tail
}

// completePrefixLen returns the length of the longest prefix of data that
// does not end mid-rune.
func completePrefixLen(data []byte) int {
	end := len(data)

	// Walk back at most one rune's worth of bytes to the last start byte.
	start := end - 1
	for start >= 0 && end-start <= utf8.UTFMax && !utf8.RuneStart(data[start]) {
		start--
	}
	if start < 0 || end-start > utf8.UTFMax {
		// Not valid UTF-8 at the tail; emit everything as-is.
		return end
	}

	if utf8.FullRune(data[start:end]) {
		return end
	}
	return start
}
