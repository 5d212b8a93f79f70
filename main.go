// ragchat - a terminal client for a document-grounded QA backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/ragchat-tui/internal/backend"
	conv "github.com/jeranaias/ragchat-tui/internal/chat"
	"github.com/jeranaias/ragchat-tui/internal/config"
	"github.com/jeranaias/ragchat-tui/internal/markdown"
	"github.com/jeranaias/ragchat-tui/internal/model"
	uichat "github.com/jeranaias/ragchat-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file (default ~/.ragchat/config.toml)")
		backendURL  = flag.String("url", "", "backend base URL (overrides config)")
		noStream    = flag.Bool("no-stream", false, "disable streaming; one request per turn")
		showVersion = flag.Bool("version", false, "print version and exit")

		listDocs    = flag.Bool("docs", false, "list the document corpus and exit")
		uploadPath  = flag.String("upload", "", "upload a document file and exit")
		deleteID    = flag.String("rm", "", "delete a document by id and exit")
		sitemapPath = flag.String("add-sitemap", "", "register a sitemap source and exit")
		sourceName  = flag.String("name", "", "source name for -add-sitemap (default: the url)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("ragchat %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *backendURL != "" {
		cfg.Backend.URL = *backendURL
	}
	if *noStream {
		cfg.Backend.Stream = false
	}

	// Document-management flags run without the TUI and work when piped.
	if *listDocs || *uploadPath != "" || *deleteID != "" || *sitemapPath != "" {
		if err := runAdminCommand(cfg, *listDocs, *uploadPath, *deleteID, *sitemapPath, *sourceName); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// The TUI owns the terminal; refuse to start when stdout is piped.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "ragchat requires an interactive terminal")
		os.Exit(1)
	}

	if err := run(cfg, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads from the explicit path when given, otherwise from the
// default location (falling back to defaults when no file exists).
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// run wires the client, renderer, and orchestrator together and hands the
// terminal to Bubble Tea until the user quits.
func run(cfg *config.Config, configPath string) error {
	client := backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL:  cfg.Backend.URL,
		Timeout:  cfg.Backend.Timeout(),
		Username: cfg.Backend.Username,
		Password: cfg.Backend.Password,
	})
	renderer := markdown.NewRenderer()

	orchestrator := conv.New(client, renderer, conv.Config{
		Stream:   cfg.Backend.Stream,
		Greeting: cfg.Bot.Greeting,
	})

	session := model.NewSession()
	orchestrator.InitiateConversation(session, newConversationID())

	view := uichat.New(session, orchestrator, renderer, uichat.Options{
		BotName:      cfg.Bot.Name,
		Theme:        cfg.UI.Theme,
		WordWrap:     cfg.UI.WordWrap,
		ExportFormat: cfg.UI.ExportFormat,
		BotIconPath:  cfg.Bot.IconPath,
	})

	p := tea.NewProgram(view, tea.WithAltScreen())

	// Streaming mutations happen on the turn goroutine; repaints go through
	// the program's message loop.
	orchestrator.OnUpdate = func(*model.Session) {
		p.Send(uichat.SessionUpdatedMsg{})
	}

	// Hot-reload display settings when the config file changes. Backend
	// settings stay fixed for the lifetime of the process.
	watchPath := configPath
	if watchPath == "" {
		if defaultPath, err := config.Path(); err == nil {
			watchPath = defaultPath
		}
	}
	if watchPath != "" {
		if _, err := os.Stat(watchPath); err == nil {
			watcher, err := config.NewWatcher(watchPath, func(next *config.Config) {
				p.Send(uichat.OptionsChangedMsg{Options: uichat.Options{
					BotName:      next.Bot.Name,
					Theme:        next.UI.Theme,
					WordWrap:     next.UI.WordWrap,
					ExportFormat: next.UI.ExportFormat,
					BotIconPath:  next.Bot.IconPath,
				}})
			})
			if err == nil {
				defer watcher.Close()
			}
		}
	}

	_, err := p.Run()
	return err
}

// newConversationID returns a fresh id like "conv_a1b2c3d4e5f6a7b8".
func newConversationID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "conv_00000000"
	}
	return "conv_" + hex.EncodeToString(b)
}
