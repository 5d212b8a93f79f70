// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the document-grounded
// question-answering backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Status  int // HTTP status code, set for ErrTypeStatus
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

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeStatus
	ErrTypeStream
	ErrTypeInvalidResponse
)

// IsStatus checks if an error is a non-success HTTP status error.
func IsStatus(err error) bool {
	var clientErr *ClientError
	return errors.As(err, &clientErr) && clientErr.Type == ErrTypeStatus
}

// IsConnection checks if an error indicates the backend was unreachable.
func IsConnection(err error) bool {
	var clientErr *ClientError
	return errors.As(err, &clientErr) && clientErr.Type == ErrTypeConnection
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the inference API base URL (default: http://127.0.0.1:8080)
	BaseURL string

	// Timeout for non-streaming requests (default: 120s; retrieval plus
	// generation can be slow). Streaming requests carry no timeout: a
	// stalled backend stream stalls the turn.
	Timeout time.Duration

	// Username/Password enable HTTP basic auth on outgoing requests when
	// Username is non-empty. Carried as-is; no auth flow exists here.
	Username string
	Password string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "http://127.0.0.1:8080",
		Timeout: 120 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the inference backend.
//
// The Client is safe for concurrent use, though the orchestrator's
// single-flight guard means at most one turn per session uses it at a time.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new backend client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8080"
	}
	if config.Timeout == 0 {
		config.Timeout = 120 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// =============================================================================
// TURN OPERATIONS
// =============================================================================

// SendTurn sends a turn and returns the complete response (non-streaming).
func (c *Client) SendTurn(ctx context.Context, sessionID string, request *ChatRequest) (*ChatResponse, error) {
	resp, err := c.post(ctx, c.httpClient, sessionID, request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var result ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return &result, nil
}

// StreamTurn sends a turn and returns an open stream handle for the chunked
// response. The caller owns the reader and must Close it.
func (c *Client) StreamTurn(ctx context.Context, sessionID string, request *ChatRequest) (*StreamReader, error) {
	// No timeout for streaming; completion is signalled by the stream end.
	streamClient := &http.Client{}

	resp, err := c.post(ctx, streamClient, sessionID, request)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		err := statusError(resp)
		resp.Body.Close()
		return nil, err
	}

	return NewStreamReader(resp.Body), nil
}

// post issues the turn request. Shared by both transport variants.
func (c *Client) post(ctx context.Context, httpClient *http.Client, sessionID string, request *ChatRequest) (*http.Response, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/"+sessionID, bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.Username != "" {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "backend unreachable", Cause: err}
	}

	return resp, nil
}

// statusError builds the error for a non-success response, salvaging a
// short body excerpt when the backend sends one.
func statusError(resp *http.Response) *ClientError {
	msg := "turn request failed: " + resp.Status
	if excerpt, err := io.ReadAll(io.LimitReader(resp.Body, 512)); err == nil && len(bytes.TrimSpace(excerpt)) > 0 {
		msg += " (" + string(bytes.TrimSpace(excerpt)) + ")"
	}
	return &ClientError{
		Type:    ErrTypeStatus,
		Message: msg,
		Status:  resp.StatusCode,
	}
}

// StatusCode extracts the HTTP status from a ClientError, or 0.
func StatusCode(err error) int {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Status
	}
	return 0
}
