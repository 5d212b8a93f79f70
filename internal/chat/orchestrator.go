// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat sequences a conversation turn end to end.
package chat

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/ragchat-tui/internal/backend"
	"github.com/jeranaias/ragchat-tui/internal/citation"
	"github.com/jeranaias/ragchat-tui/internal/merge"
	"github.com/jeranaias/ragchat-tui/internal/model"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// DefaultGreeting opens every conversation unless configured otherwise.
const DefaultGreeting = "Hello! Ask me anything about the indexed documents."

// Config holds orchestrator options.
type Config struct {
	// Stream selects the chunked transport variant. Off, each turn is a
	// single request/response exchange.
	Stream bool

	// Greeting is the synthetic opening message (markdown). Empty selects
	// DefaultGreeting.
	Greeting string

	// Filters is passed through to the backend on every turn, untouched.
	Filters map[string]any
}

// Renderer converts markdown to sanitized HTML.
type Renderer interface {
	Render(source string) (string, error)
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator drives conversation turns against one backend client. The
// session itself is owned by the caller and passed into every operation;
// the orchestrator holds no session state of its own.
//
// Turns run on their own goroutine while the view layer reads the session
// from the event loop. The orchestrator serializes both sides: every
// session mutation happens under its lock, and readers go through Read.
type Orchestrator struct {
	client   *backend.Client
	renderer Renderer
	resolver *citation.Resolver
	config   Config

	// mu guards the session across the turn goroutine and Read callers.
	mu sync.Mutex

	// OnUpdate, when set, fires after every visible session mutation so the
	// view layer can repaint. Called on the turn's goroutine, outside the
	// session lock.
	OnUpdate func(*model.Session)
}

// New creates an orchestrator over a backend client and renderer.
func New(client *backend.Client, renderer Renderer, config Config) *Orchestrator {
	if config.Greeting == "" {
		config.Greeting = DefaultGreeting
	}
	return &Orchestrator{
		client:   client,
		renderer: renderer,
		resolver: citation.NewResolver(renderer),
		config:   config,
	}
}

// Read runs fn while holding the session lock, blocking out turn-goroutine
// mutations for its duration. The view layer renders inside fn; fn must not
// call back into the orchestrator.
func (o *Orchestrator) Read(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn()
}

// InitiateConversation binds the session to its id and appends the rendered
// greeting. The greeting is synthetic and never serialized to the backend.
// Calling this twice appends a second greeting; callers initiate once.
func (o *Orchestrator) InitiateConversation(s *model.Session, id string) {
	html, err := o.renderer.Render(o.config.Greeting)
	if err != nil {
		html = ""
	}

	o.mu.Lock()
	s.ID = id
	s.AddMessage(model.NewGreeting(o.config.Greeting, html))
	o.mu.Unlock()
	o.notify(s)
}

// SubmitTurn runs one conversation turn: append the user message and an
// assistant placeholder, issue the backend request, and fold the response
// into the placeholder as it arrives.
//
// While a turn is in flight further submits are dropped without effect.
// On any failure the placeholder keeps content already applied, gains
// HasError, and the session's HasTurnError flag is set; IsLoading is reset
// on every path.
func (o *Orchestrator) SubmitTurn(ctx context.Context, s *model.Session, prompt string) {
	promptHTML, renderErr := o.renderer.Render(prompt)
	if renderErr != nil {
		promptHTML = ""
	}

	// Guard and flag flip happen under one lock acquisition; two racing
	// submits cannot both pass.
	o.mu.Lock()
	if s.IsLoading {
		o.mu.Unlock()
		return
	}
	s.IsLoading = true
	s.HasTurnError = false

	// The request serializes the history as it stood before this turn; the
	// prompt itself travels in the message field.
	request := backend.NewChatRequest(prompt, s.History, o.config.Filters)

	s.AddMessage(model.NewUserMessage(prompt, promptHTML))
	placeholder := model.NewAssistantPlaceholder()
	s.AddMessage(placeholder)
	o.mu.Unlock()
	o.notify(s)

	err := o.runTurn(ctx, s, placeholder, request)

	o.mu.Lock()
	if err != nil {
		placeholder.HasError = true
		placeholder.Timestamp = time.Now()
		s.HasTurnError = true
	}
	s.IsLoading = false
	o.mu.Unlock()
	o.notify(s)
}

// runTurn executes the transport exchange for one turn. Every error path
// funnels back to SubmitTurn's collapse.
func (o *Orchestrator) runTurn(ctx context.Context, s *model.Session, placeholder *model.Message, request *backend.ChatRequest) error {
	if !o.config.Stream {
		response, err := o.client.SendTurn(ctx, s.ID, request)
		if err != nil {
			return err
		}
		o.mu.Lock()
		err = o.applyState(s, placeholder, response)
		o.mu.Unlock()
		if err != nil {
			return err
		}
		o.finalize(s, placeholder)
		return nil
	}

	reader, err := o.client.StreamTurn(ctx, s.ID, request)
	if err != nil {
		return err
	}
	defer reader.Close()

	accumulator := merge.NewAccumulator()
	for {
		fragment, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(fragment) == "" {
			continue
		}

		o.mu.Lock()
		snapshot, err := accumulator.Apply([]byte(fragment))
		if err == nil {
			err = o.applyState(s, placeholder, snapshot)
		}
		o.mu.Unlock()
		if err != nil {
			return err
		}
		o.notify(s)
	}

	o.finalize(s, placeholder)
	return nil
}

// applyState folds a cumulative turn state into the placeholder. The merge
// layer guarantees each key settles once, so the answer renders at most one
// new value per call and citations resolve at most once per turn. Callers
// hold o.mu.
func (o *Orchestrator) applyState(s *model.Session, placeholder *model.Message, state *backend.ChatResponse) error {
	if state.Answer != "" && state.Answer != placeholder.Markdown {
		html, err := o.renderer.Render(state.Answer)
		if err != nil {
			return err
		}
		placeholder.Markdown = state.Answer
		placeholder.HTML = html
	}

	if len(state.Citations) > 0 && placeholder.AnchorIDs == nil {
		resolved, err := o.resolver.Resolve(state.Citations, len(s.Citations), placeholder.ID)
		if err != nil {
			return err
		}
		anchors := make([]int, len(resolved))
		for i, c := range resolved {
			anchors[i] = c.Index
		}
		s.AddCitations(resolved)
		placeholder.AnchorIDs = anchors
	}

	return nil
}

// finalize stamps the placeholder once the turn's content is settled.
func (o *Orchestrator) finalize(s *model.Session, placeholder *model.Message) {
	o.mu.Lock()
	placeholder.Timestamp = time.Now()
	o.mu.Unlock()
	o.notify(s)
}

func (o *Orchestrator) notify(s *model.Session) {
	if o.OnUpdate != nil {
		o.OnUpdate(s)
	}
}
