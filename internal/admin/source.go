// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package admin is the client for the backend's document-management API.
package admin

import (
	"encoding/json"
	"errors"
	"strconv"
)

// =============================================================================
// SOURCE TYPES
// =============================================================================

// SourceType selects the backend loader for a source upload.
type SourceType string

const (
	SourceConfluence SourceType = "confluence"
	SourceSitemap    SourceType = "sitemap"
)

// Pair is one loader parameter. The upload body is a flat list of these.
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// =============================================================================
// CONFLUENCE SOURCES
// =============================================================================

// ConfluenceSource holds the confluence loader parameters. URL and Token
// are required; SpaceKey and CQL select the content; MaxPages caps the
// crawl when positive.
type ConfluenceSource struct {
	URL      string
	Token    string
	SpaceKey string
	CQL      string
	MaxPages int
}

var errConfluenceIncomplete = errors.New("admin: confluence source needs url and token")

// ConfluencePairs builds the parameter list for a confluence source upload.
func ConfluencePairs(src ConfluenceSource) ([]Pair, error) {
	if src.URL == "" || src.Token == "" {
		return nil, errConfluenceIncomplete
	}

	pairs := []Pair{
		{Key: "url", Value: src.URL},
		{Key: "token", Value: src.Token},
	}
	if src.SpaceKey != "" {
		pairs = append(pairs, Pair{Key: "space_key", Value: src.SpaceKey})
	}
	if src.CQL != "" {
		pairs = append(pairs, Pair{Key: "cql", Value: src.CQL})
	}
	if src.MaxPages > 0 {
		pairs = append(pairs, Pair{Key: "max_pages", Value: strconv.Itoa(src.MaxPages)})
	}
	return pairs, nil
}

// =============================================================================
// SITEMAP SOURCES
// =============================================================================

// SitemapSource holds the sitemap loader parameters. WebPath is required.
// FilterURLs narrows the crawl and travels as a JSON-encoded list.
// HeaderTemplate, when set, must itself be a valid JSON object.
type SitemapSource struct {
	WebPath        string
	SitemapParser  string
	FilterURLs     []string
	HeaderTemplate string
}

var (
	errSitemapIncomplete     = errors.New("admin: sitemap source needs a web path")
	errBadHeaderTemplate     = errors.New("admin: header template is not valid JSON")
	errFilterURLsUnencodable = errors.New("admin: filter url list cannot be encoded")
)

// SitemapPairs builds the parameter list for a sitemap source upload.
func SitemapPairs(src SitemapSource) ([]Pair, error) {
	if src.WebPath == "" {
		return nil, errSitemapIncomplete
	}

	pairs := []Pair{
		{Key: "web_path", Value: src.WebPath},
	}
	if src.SitemapParser != "" {
		pairs = append(pairs, Pair{Key: "sitemap_parser", Value: src.SitemapParser})
	}
	if len(src.FilterURLs) > 0 {
		encoded, err := json.Marshal(src.FilterURLs)
		if err != nil {
			return nil, errFilterURLsUnencodable
		}
		pairs = append(pairs, Pair{Key: "filter_urls", Value: string(encoded)})
	}
	if src.HeaderTemplate != "" {
		if !json.Valid([]byte(src.HeaderTemplate)) {
			return nil, errBadHeaderTemplate
		}
		pairs = append(pairs, Pair{Key: "header_template", Value: src.HeaderTemplate})
	}
	return pairs, nil
}
