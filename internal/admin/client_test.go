// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package admin is the client for the backend's document-management API.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(&Config{
		BaseURL:      server.URL,
		Username:     "admin",
		Password:     "secret",
		PollInterval: time.Millisecond,
	})
}

// =============================================================================
// STATUS LIST TESTS
// =============================================================================

func TestListDocuments(t *testing.T) {
	var gotPath, gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]DocumentStatus{
			{ID: "d1", Name: "report.pdf", Status: "ready"},
			{ID: "d2", Name: "notes.md", Status: "processing"},
		})
	})

	docs, err := client.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}

	if gotPath != "/all_documents_status" {
		t.Errorf("path = %q", gotPath)
	}
	if !strings.HasPrefix(gotAuth, "Basic ") {
		t.Errorf("Authorization = %q, want basic auth", gotAuth)
	}
	if len(docs) != 2 || docs[0].ID != "d1" || docs[1].Status != "processing" {
		t.Errorf("docs = %+v", docs)
	}
}

func TestListDocuments_Paced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]DocumentStatus{})
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL, PollInterval: 100 * time.Millisecond})

	start := time.Now()
	if _, err := client.ListDocuments(context.Background()); err != nil {
		t.Fatalf("first poll: %v", err)
	}
	if _, err := client.ListDocuments(context.Background()); err != nil {
		t.Fatalf("second poll: %v", err)
	}

	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("second poll ran after %v, want pacing near the poll interval", elapsed)
	}
}

// =============================================================================
// UPLOAD TESTS
// =============================================================================

func TestUploadFile(t *testing.T) {
	content := strings.Repeat("x", 10_000)
	var gotName, gotBody string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer file.Close()
		gotName = header.Filename
		data, _ := io.ReadAll(file)
		gotBody = string(data)
	})

	var lastSent, lastTotal int64
	err := client.UploadFile(context.Background(), "big.txt", strings.NewReader(content), int64(len(content)),
		func(sent, total int64) {
			lastSent, lastTotal = sent, total
		})
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}

	if gotName != "big.txt" {
		t.Errorf("filename = %q", gotName)
	}
	if gotBody != content {
		t.Errorf("body length = %d, want %d", len(gotBody), len(content))
	}
	if lastSent != int64(len(content)) || lastTotal != int64(len(content)) {
		t.Errorf("final progress = %d/%d", lastSent, lastTotal)
	}
}

func TestUploadSource(t *testing.T) {
	var gotQuery map[string][]string
	var gotPairs []Pair

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewDecoder(r.Body).Decode(&gotPairs)
	})

	pairs, err := ConfluencePairs(ConfluenceSource{URL: "https://wiki", Token: "tok"})
	if err != nil {
		t.Fatalf("ConfluencePairs: %v", err)
	}
	if err := client.UploadSource(context.Background(), SourceConfluence, "team wiki", pairs); err != nil {
		t.Fatalf("UploadSource: %v", err)
	}

	if got := gotQuery["source_type"]; len(got) != 1 || got[0] != "confluence" {
		t.Errorf("source_type = %v", gotQuery["source_type"])
	}
	if got := gotQuery["name"]; len(got) != 1 || got[0] != "team wiki" {
		t.Errorf("name = %v", gotQuery["name"])
	}
	if len(gotPairs) != 2 || gotPairs[0].Key != "url" || gotPairs[1].Key != "token" {
		t.Errorf("pairs = %+v", gotPairs)
	}
}

func TestUploadSource_LoaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"not configured", http.StatusNotImplemented, IsLoaderNotConfigured},
		{"locked", http.StatusLocked, IsLoaderLocked},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			})

			err := client.UploadSource(context.Background(), SourceSitemap, "s", []Pair{{Key: "web_path", Value: "x"}})
			if err == nil || !tc.check(err) {
				t.Errorf("error = %v, want mapped loader error", err)
			}
		})
	}
}

// =============================================================================
// DELETE TESTS
// =============================================================================

func TestDeleteDocument(t *testing.T) {
	var gotMethod, gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.EscapedPath()
	})

	if err := client.DeleteDocument(context.Background(), "doc with/slash"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %q", gotMethod)
	}
	if gotPath != "/delete_document/doc%20with%2Fslash" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestDeleteDocument_StatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "no such document")
	})

	err := client.DeleteDocument(context.Background(), "missing")
	var clientErr *ClientError
	if !errors.As(err, &clientErr) || clientErr.Type != ErrTypeStatus || clientErr.Status != http.StatusNotFound {
		t.Fatalf("error = %v", err)
	}
	if !strings.Contains(clientErr.Message, "no such document") {
		t.Errorf("Message = %q, want body excerpt", clientErr.Message)
	}
}

// =============================================================================
// PAIR BUILDER TESTS
// =============================================================================

func TestConfluencePairs(t *testing.T) {
	pairs, err := ConfluencePairs(ConfluenceSource{
		URL:      "https://wiki",
		Token:    "tok",
		SpaceKey: "ENG",
		CQL:      "label=docs",
		MaxPages: 50,
	})
	if err != nil {
		t.Fatalf("ConfluencePairs: %v", err)
	}

	want := map[string]string{
		"url":       "https://wiki",
		"token":     "tok",
		"space_key": "ENG",
		"cql":       "label=docs",
		"max_pages": "50",
	}
	if len(pairs) != len(want) {
		t.Fatalf("pairs = %+v", pairs)
	}
	for _, p := range pairs {
		if want[p.Key] != p.Value {
			t.Errorf("pair %q = %q, want %q", p.Key, p.Value, want[p.Key])
		}
	}
}

func TestConfluencePairs_Incomplete(t *testing.T) {
	if _, err := ConfluencePairs(ConfluenceSource{URL: "https://wiki"}); err == nil {
		t.Error("missing token accepted")
	}
	if _, err := ConfluencePairs(ConfluenceSource{Token: "tok"}); err == nil {
		t.Error("missing url accepted")
	}
}

func TestSitemapPairs(t *testing.T) {
	pairs, err := SitemapPairs(SitemapSource{
		WebPath:        "https://example.com/sitemap.xml",
		FilterURLs:     []string{"https://example.com/docs/.*"},
		HeaderTemplate: `{"User-Agent":"ragchat"}`,
	})
	if err != nil {
		t.Fatalf("SitemapPairs: %v", err)
	}

	byKey := map[string]string{}
	for _, p := range pairs {
		byKey[p.Key] = p.Value
	}
	if byKey["web_path"] != "https://example.com/sitemap.xml" {
		t.Errorf("web_path = %q", byKey["web_path"])
	}
	if byKey["filter_urls"] != `["https://example.com/docs/.*"]` {
		t.Errorf("filter_urls = %q, want JSON-encoded list", byKey["filter_urls"])
	}
	if byKey["header_template"] != `{"User-Agent":"ragchat"}` {
		t.Errorf("header_template = %q", byKey["header_template"])
	}
}

func TestSitemapPairs_Validation(t *testing.T) {
	if _, err := SitemapPairs(SitemapSource{}); err == nil {
		t.Error("missing web path accepted")
	}
	if _, err := SitemapPairs(SitemapSource{WebPath: "x", HeaderTemplate: "{broken"}); err == nil {
		t.Error("invalid header template accepted")
	}
}
