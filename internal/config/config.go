// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ragchat.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/ragchat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ragchat configuration.
type Config struct {
	// Backend is the inference backend connection.
	Backend BackendConfig `toml:"backend"`

	// Admin is the document-management API connection. URL falls back to
	// the backend URL when empty.
	Admin AdminConfig `toml:"admin"`

	// Bot controls the conversation surface.
	Bot BotConfig `toml:"bot"`

	// UI configuration.
	UI UIConfig `toml:"ui"`
}

// BackendConfig contains the inference backend connection settings.
type BackendConfig struct {
	// URL is the backend base URL
	URL string `toml:"url"`
	// Username/Password enable basic auth when Username is non-empty
	Username string `toml:"username"`
	Password string `toml:"password"`
	// Stream selects the chunked transport variant
	Stream bool `toml:"stream"`
	// TimeoutSecs bounds non-streaming turn requests
	TimeoutSecs int `toml:"timeout_secs"`
}

// Timeout returns the turn request timeout as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// AdminConfig contains the document-management API connection settings.
type AdminConfig struct {
	URL      string `toml:"url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	// PollSecs is the minimum spacing between document status refreshes
	PollSecs int `toml:"poll_secs"`
}

// BotConfig contains conversation settings.
type BotConfig struct {
	// Name is shown as the assistant display name
	Name string `toml:"name"`
	// Greeting is the synthetic opening message (markdown)
	Greeting string `toml:"greeting"`
	// IconPath points to an inline SVG icon embedded in HTML exports.
	// The icon is sanitized before embedding; a rejected icon is omitted.
	IconPath string `toml:"icon_path"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// WordWrap is the target wrap width for rendered answers (columns)
	WordWrap int `toml:"word_wrap"`
	// ExportFormat selects the transcript export format: "html",
	// "markdown", or "json"
	ExportFormat string `toml:"export_format"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:         "http://127.0.0.1:8080",
			Stream:      true,
			TimeoutSecs: 120,
		},
		Admin: AdminConfig{
			PollSecs: 2,
		},
		Bot: BotConfig{
			Name: "Assistant",
		},
		UI: UIConfig{
			Theme:        "dark",
			WordWrap:     100,
			ExportFormat: "html",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the ragchat configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ragchat"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on the config file.
// The file may hold backend credentials, so it should be 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from the default config file, falling back to
// defaults when no file exists. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		cfg.SetDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// defaulting and validation.
func LoadFromPath(path string) (*Config, error) {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save saves the configuration to the default config file atomically with
// owner-only permissions.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo saves the configuration to a specific path.
func SaveTo(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# ragchat configuration file\n")
	buf.WriteString("# Generated by ragchat - edit with care\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

// SetDefaults fills in missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Backend.URL == "" {
		c.Backend.URL = defaults.Backend.URL
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	// Admin defaults to the backend endpoint and credentials.
	if c.Admin.URL == "" {
		c.Admin.URL = c.Backend.URL
	}
	if c.Admin.Username == "" {
		c.Admin.Username = c.Backend.Username
		c.Admin.Password = c.Backend.Password
	}
	if c.Admin.PollSecs == 0 {
		c.Admin.PollSecs = defaults.Admin.PollSecs
	}
	if c.Bot.Name == "" {
		c.Bot.Name = defaults.Bot.Name
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.WordWrap == 0 {
		c.UI.WordWrap = defaults.UI.WordWrap
	}
	if c.UI.ExportFormat == "" {
		c.UI.ExportFormat = defaults.UI.ExportFormat
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	for _, endpoint := range []struct {
		field string
		value string
	}{
		{"backend.url", c.Backend.URL},
		{"admin.url", c.Admin.URL},
	} {
		if endpoint.value == "" {
			continue
		}
		parsed, err := url.Parse(endpoint.value)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			errs = append(errs, ValidationError{
				Field:   endpoint.field,
				Message: fmt.Sprintf("invalid URL '%s'", endpoint.value),
			})
		}
	}

	if c.Backend.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: "must be non-negative",
		})
	}
	if c.Admin.PollSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "admin.poll_secs",
			Message: "must be non-negative",
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if c.UI.WordWrap < 0 || c.UI.WordWrap > 500 {
		errs = append(errs, ValidationError{
			Field:   "ui.word_wrap",
			Message: fmt.Sprintf("word_wrap must be 0-500, got %d", c.UI.WordWrap),
		})
	}

	validFormats := map[string]bool{"": true, "html": true, "markdown": true, "md": true, "json": true}
	if !validFormats[strings.ToLower(c.UI.ExportFormat)] {
		errs = append(errs, ValidationError{
			Field:   "ui.export_format",
			Message: fmt.Sprintf("invalid export format '%s', must be one of: html, markdown, json", c.UI.ExportFormat),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - RAGCHAT_URL: overrides backend.url
//   - RAGCHAT_USERNAME / RAGCHAT_PASSWORD: override backend credentials
//   - RAGCHAT_STREAM: "1"/"true" or "0"/"false" overrides backend.stream
//   - RAGCHAT_TIMEOUT_SECS: overrides backend.timeout_secs
//   - RAGCHAT_ADMIN_URL: overrides admin.url
//   - RAGCHAT_GREETING: overrides bot.greeting
//   - RAGCHAT_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RAGCHAT_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("RAGCHAT_USERNAME"); v != "" {
		c.Backend.Username = v
	}
	if v := os.Getenv("RAGCHAT_PASSWORD"); v != "" {
		c.Backend.Password = v
	}
	if v := os.Getenv("RAGCHAT_STREAM"); v != "" {
		c.Backend.Stream = v == "1" || strings.ToLower(v) == "true"
	}
	if v := os.Getenv("RAGCHAT_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Backend.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("RAGCHAT_ADMIN_URL"); v != "" {
		c.Admin.URL = v
	}
	if v := os.Getenv("RAGCHAT_GREETING"); v != "" {
		c.Bot.Greeting = v
	}
	if v := os.Getenv("RAGCHAT_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a string representation of the config for debugging.
// Credentials are redacted so the output is safe to log or display.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Backend.Password != "" {
		safe.Backend.Password = "[REDACTED]"
	}
	if safe.Admin.Password != "" {
		safe.Admin.Password = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}
