// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the ragchat TUI.
package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveTheme(t *testing.T) {
	assert.Equal(t, "dark", ResolveTheme("dark"))
	assert.Equal(t, "light", ResolveTheme("light"))

	// Anything else resolves through the background probe to one of the
	// two concrete themes.
	for _, theme := range []string{"auto", "", "solarized"} {
		resolved := ResolveTheme(theme)
		assert.Contains(t, []string{"dark", "light"}, resolved, "theme %q", theme)
	}
}

func TestRenderHelpers(t *testing.T) {
	assert.Contains(t, RenderError("boom"), "boom")
	assert.Contains(t, RenderWarning("careful"), "careful")
	assert.Contains(t, RenderInfo("saved"), "saved")
}
