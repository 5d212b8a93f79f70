// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ragchat.
//
// Configuration lives in a TOML file at ~/.ragchat/config.toml, with
// built-in defaults and RAGCHAT_* environment variable overrides applied
// on top. Saves are atomic. A file watcher supports hot reload so a
// running client picks up edits without a restart.
package config
