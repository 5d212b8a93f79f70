// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the document-grounded
// question-answering backend.
package backend

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// chunkedReader returns its chunks one per Read call, then io.EOF.
type chunkedReader struct {
	chunks [][]byte
	pos    int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.chunks) {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[r.pos])
	r.pos++
	return n, nil
}

func (r *chunkedReader) Close() error { return nil }

// failingReader fails after yielding its first chunk.
type failingReader struct {
	chunk []byte
	read  bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.read {
		return 0, errors.New("connection reset")
	}
	r.read = true
	return copy(p, r.chunk), nil
}

func (r *failingReader) Close() error { return nil }

func collect(t *testing.T, s *StreamReader) []string {
	t.Helper()
	var fragments []string
	for {
		fragment, err := s.Next()
		if err == io.EOF {
			return fragments
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		fragments = append(fragments, fragment)
	}
}

func TestStreamReader_Fragments(t *testing.T) {
	s := NewStreamReader(&chunkedReader{chunks: [][]byte{
		[]byte("hello "),
		[]byte("world"),
	}})

	got := collect(t, s)
	want := []string{"hello ", "world"}
	if len(got) != len(want) {
		t.Fatalf("fragments = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fragment %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStreamReader_SplitRune(t *testing.T) {
	// "é" is 0xC3 0xA9; split it across two reads.
	s := NewStreamReader(&chunkedReader{chunks: [][]byte{
		{'c', 'a', 'f', 0xC3},
		{0xA9, '!'},
	}})

	if strings.Join(collect(t, s), "") != "café!" {
		t.Error("split rune was not reassembled")
	}
}

func TestStreamReader_SplitRuneNeverDuplicated(t *testing.T) {
	// A 4-byte rune split one byte per read. Each fragment must come out
	// exactly once.
	rocket := []byte("🚀") // F0 9F 9A 80
	chunks := make([][]byte, 0, len(rocket))
	for _, b := range rocket {
		chunks = append(chunks, []byte{b})
	}
	s := NewStreamReader(&chunkedReader{chunks: chunks})

	if got := strings.Join(collect(t, s), ""); got != "🚀" {
		t.Errorf("reassembled = %q, want %q", got, "🚀")
	}
}

func TestStreamReader_EOFAfterDone(t *testing.T) {
	s := NewStreamReader(&chunkedReader{})

	if _, err := s.Next(); err != io.EOF {
		t.Fatalf("Next() error = %v, want io.EOF", err)
	}
	if _, err := s.Next(); err != io.EOF {
		t.Errorf("Next() after EOF error = %v, want io.EOF", err)
	}
}

func TestStreamReader_FlushesPendingAtEOF(t *testing.T) {
	// A truncated stream ending mid-rune still emits the trailing bytes
	// rather than dropping them.
	s := NewStreamReader(&chunkedReader{chunks: [][]byte{
		{'o', 'k', 0xC3},
	}})

	got := strings.Join(collect(t, s), "")
	if !strings.HasPrefix(got, "ok") || len(got) != 3 {
		t.Errorf("flushed = %q, want 'ok' plus one pending byte", got)
	}
}

func TestStreamReader_ReadError(t *testing.T) {
	s := NewStreamReader(&failingReader{chunk: []byte("partial")})

	fragment, err := s.Next()
	if err != nil {
		t.Fatalf("first Next() error = %v", err)
	}
	if fragment != "partial" {
		t.Errorf("fragment = %q, want 'partial'", fragment)
	}

	_, err = s.Next()
	var clientErr *ClientError
	if !errors.As(err, &clientErr) || clientErr.Type != ErrTypeStream {
		t.Errorf("error = %v, want ClientError of type ErrTypeStream", err)
	}
}

func TestCompletePrefixLen(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want int
	}{
		{"ascii", []byte("abc"), 3},
		{"complete rune", []byte("café"), 5},
		{"trailing lead byte", []byte{'a', 0xC3}, 1},
		{"trailing 3 of 4", []byte{0xF0, 0x9F, 0x9A}, 0},
		{"invalid tail passes through", []byte{0x80, 0x80, 0x80, 0x80, 0x80}, 5},
		{"empty", nil, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := completePrefixLen(tc.data); got != tc.want {
				t.Errorf("completePrefixLen(%v) = %d, want %d", tc.data, got, tc.want)
			}
		})
	}
}
