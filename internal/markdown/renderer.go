// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown converts raw chat text into sanitized HTML.
package markdown

import (
	"bytes"
	"html"
	"sync"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	ghtml "github.com/yuin/goldmark/renderer/html"
	gutil "github.com/yuin/goldmark/util"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// RenderError reports a markdown conversion failure.
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// =============================================================================
// RENDERER
// =============================================================================

// Renderer converts markdown to sanitized HTML. It also owns the
// registration state for the shared click delegate (copy buttons and image
// modals), exposed through Attach/Detach.
//
// A Renderer is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy

	mu       sync.Mutex
	attached bool
}

// NewRenderer creates a renderer with the chat rendering profile: GFM,
// hard line breaks, highlighted code blocks, modal-triggering images.
func NewRenderer() *Renderer {
	r := &Renderer{}
	r.md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			ghtml.WithHardWraps(),
			renderer.WithNodeRenderers(
				gutil.Prioritized(&chatNodeRenderer{}, 100),
			),
		),
	)
	r.policy = newPolicy()
	return r
}

// Render converts markdown to sanitized HTML.
func (r *Renderer) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", &RenderError{Message: "markdown conversion failed", Cause: err}
	}
	return r.policy.Sanitize(buf.String()), nil
}

// Attach returns the click-delegate script on the first call and the empty
// string on every further call until Detach. The delegate handles all copy
// buttons and image modals in rendered output; embedding it once per
// document replaces per-block listeners.
func (r *Renderer) Attach() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attached {
		return ""
	}
	r.attached = true
	return delegateScript
}

// Detach re-arms Attach so the next embedding surface gets the delegate
// again.
func (r *Renderer) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attached = false
}

// Attached reports whether the delegate has been handed out.
func (r *Renderer) Attached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attached
}

// =============================================================================
// SANITIZATION POLICY
// =============================================================================

// newPolicy builds the allow-list for rendered chat HTML: the UGC baseline
// plus the renderer's own markup (code block chrome, copy buttons, image
// modal dialogs, highlight spans).
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	p.AllowElements("button", "dialog", "form", "span", "div")
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("aria-hidden").Globally()
	p.AllowAttrs("id").OnElements("dialog")
	p.AllowAttrs("method").OnElements("form")
	p.AllowAttrs("type", "title", "aria-label", "data-copied").OnElements("button")
	p.AllowAttrs("data-language").OnElements("span")
	p.AllowAttrs("data-modal-id").OnElements("img")
	p.AllowAttrs("title").OnElements("img")

	return p
}

// =============================================================================
// NODE RENDERING
// =============================================================================

// chatNodeRenderer overrides fenced code blocks and images; everything else
// keeps goldmark's stock HTML rendering.
type chatNodeRenderer struct{}

// RegisterFuncs registers the overridden node kinds.
func (c *chatNodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, c.renderFencedCodeBlock)
	reg.Register(ast.KindImage, c.renderImage)
}

// renderFencedCodeBlock emits the code-block chrome: header with language
// badge and copy button, then the highlighted code.
func (c *chatNodeRenderer) renderFencedCodeBlock(w gutil.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	n := node.(*ast.FencedCodeBlock)

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}

	language := ""
	if l := n.Language(source); l != nil {
		language = string(l)
	}
	normalized := NormalizeLanguage(language)
	highlighted := highlightCode(code.String(), language)

	_, _ = w.WriteString(`<div class="chat-code-block">`)
	_, _ = w.WriteString(`<div class="chat-code-block__header">`)
	_, _ = w.WriteString(`<span class="chat-code-block__lang" aria-hidden="true" data-language="` + html.EscapeString(normalized) + `"></span>`)
	_, _ = w.WriteString(`<button type="button" class="chat-code-copy-button" title="Copy to clipboard" aria-label="Copy code to clipboard" data-copied="Copied!">Copy</button>`)
	_, _ = w.WriteString(`</div>`)

	langClass := ""
	if normalized != "" {
		langClass = ` language-` + html.EscapeString(normalized)
	}
	_, _ = w.WriteString(`<pre><code class="chroma` + langClass + `">`)
	_, _ = w.WriteString(highlighted)
	_, _ = w.WriteString("</code></pre></div>\n")

	return ast.WalkContinue, nil
}

// renderImage emits a modal-triggering image: the inline img never
// navigates, it opens a uniquely-identified dialog showing the full image.
func (c *chatNodeRenderer) renderImage(w gutil.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}

	n := node.(*ast.Image)
	src := html.EscapeString(string(n.Destination))
	alt := html.EscapeString(string(n.Text(source)))

	titleAttr := ""
	if len(n.Title) > 0 {
		titleAttr = ` title="` + html.EscapeString(string(n.Title)) + `"`
	}

	modalID := "img-modal-" + uuid.NewString()

	_, _ = w.WriteString(`<div class="chat-image">`)
	_, _ = w.WriteString(`<img src="` + src + `" alt="` + alt + `"` + titleAttr + ` class="image-modal-trigger" data-modal-id="` + modalID + `"/>`)
	_, _ = w.WriteString(`</div>`)
	_, _ = w.WriteString(`<dialog id="` + modalID + `" class="chat-image-modal">`)
	_, _ = w.WriteString(`<div class="chat-image-modal__box">`)
	_, _ = w.WriteString(`<form method="dialog"><button class="chat-image-modal__close" aria-label="Close">&#x2715;</button></form>`)
	_, _ = w.WriteString(`<img src="` + src + `" alt="` + alt + `"/>`)
	_, _ = w.WriteString(`</div></dialog>`)

	return ast.WalkSkipChildren, nil
}
