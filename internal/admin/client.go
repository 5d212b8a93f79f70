// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package admin is the client for the backend's document-management API.
package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the document-management client.
type ClientError struct {
	Type    ErrorType
	Message string
	Status  int // HTTP status code, set for status-derived types
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes document-management errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeStatus
	ErrTypeLoaderNotConfigured // 501: loader absent from the deployment
	ErrTypeLoaderLocked        // 423: a load for this loader is running
	ErrTypeInvalidResponse
)

// IsLoaderNotConfigured checks whether the deployment lacks the loader.
func IsLoaderNotConfigured(err error) bool {
	var clientErr *ClientError
	return errors.As(err, &clientErr) && clientErr.Type == ErrTypeLoaderNotConfigured
}

// IsLoaderLocked checks whether the loader is busy with another load.
func IsLoaderLocked(err error) bool {
	var clientErr *ClientError
	return errors.As(err, &clientErr) && clientErr.Type == ErrTypeLoaderLocked
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Config holds configuration options for the document-management client.
type Config struct {
	// BaseURL is the admin API base URL (default: http://127.0.0.1:8080)
	BaseURL string

	// Timeout for requests other than uploads (default: 30s). Uploads run
	// without a deadline; large files take as long as they take.
	Timeout time.Duration

	// Username/Password enable HTTP basic auth when Username is non-empty.
	Username string
	Password string

	// PollInterval is the minimum spacing between status list requests
	// (default: 2s).
	PollInterval time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      "http://127.0.0.1:8080",
		Timeout:      30 * time.Second,
		PollInterval: 2 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// DocumentStatus is one corpus entry as reported by the backend.
type DocumentStatus struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Client handles communication with the document-management API.
type Client struct {
	config     *Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a document-management client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8080"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.PollInterval == 0 {
		config.PollInterval = 2 * time.Second
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    rate.NewLimiter(rate.Every(config.PollInterval), 1),
	}
}

// ListDocuments fetches the corpus status list. Calls are paced by the
// configured poll interval; excess calls block until a slot frees up.
func (c *Client) ListDocuments(ctx context.Context) ([]DocumentStatus, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "status poll aborted", Cause: err}
	}

	resp, err := c.do(ctx, c.httpClient, http.MethodGet, "/all_documents_status", "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var statuses []DocumentStatus
	if err := json.NewDecoder(resp.Body).Decode(&statuses); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode status list", Cause: err}
	}
	return statuses, nil
}

// UploadFile uploads one document as a multipart request. size is the total
// byte count for progress reporting; progress, when non-nil, is called with
// the running sent/total counts as the body streams out.
func (c *Client) UploadFile(ctx context.Context, name string, r io.Reader, size int64, progress func(sent, total int64)) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		src := io.Reader(r)
		if progress != nil {
			src = &progressReader{r: r, total: size, report: progress}
		}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	// No deadline on uploads; the pipe stalls the request until the copy
	// goroutine is done.
	uploadClient := &http.Client{}
	resp, err := c.do(ctx, uploadClient, http.MethodPost, "/upload_file", mw.FormDataContentType(), pr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

// UploadSource registers a loader-backed source (confluence, sitemap). The
// pair list comes from ConfluencePairs or SitemapPairs.
func (c *Client) UploadSource(ctx context.Context, sourceType SourceType, name string, pairs []Pair) error {
	body, err := json.Marshal(pairs)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal source parameters", Cause: err}
	}

	query := url.Values{}
	query.Set("source_type", string(sourceType))
	query.Set("name", name)

	resp, err := c.do(ctx, c.httpClient, http.MethodPost, "/upload_source?"+query.Encode(), "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

// DeleteDocument removes one document from the corpus.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	resp, err := c.do(ctx, c.httpClient, http.MethodDelete, "/delete_document/"+url.PathEscape(id), "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

// do issues one request with auth attached.
func (c *Client) do(ctx context.Context, httpClient *http.Client, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.config.Username != "" {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "admin API unreachable", Cause: err}
	}
	return resp, nil
}

// statusError maps a non-success response to its error type, salvaging a
// short body excerpt when the backend sends one.
func statusError(resp *http.Response) *ClientError {
	msg := "request failed: " + resp.Status
	if excerpt, err := io.ReadAll(io.LimitReader(resp.Body, 512)); err == nil && len(bytes.TrimSpace(excerpt)) > 0 {
		msg += " (" + string(bytes.TrimSpace(excerpt)) + ")"
	}

	errType := ErrTypeStatus
	switch resp.StatusCode {
	case http.StatusNotImplemented:
		errType = ErrTypeLoaderNotConfigured
		msg = "loader is not configured on this deployment"
	case http.StatusLocked:
		errType = ErrTypeLoaderLocked
		msg = "a load for this loader is already running"
	}

	return &ClientError{
		Type:    errType,
		Message: msg,
		Status:  resp.StatusCode,
	}
}

// =============================================================================
// PROGRESS TRACKING
// =============================================================================

// progressReader reports the running byte count as an upload body is
// consumed by the HTTP transport.
type progressReader struct {
	r      io.Reader
	sent   int64
	total  int64
	report func(sent, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.report(p.sent, p.total)
	}
	return n, err
}
