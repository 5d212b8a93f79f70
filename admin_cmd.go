// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/jeranaias/ragchat-tui/internal/admin"
	"github.com/jeranaias/ragchat-tui/internal/config"
)

// =============================================================================
// DOCUMENT MANAGEMENT COMMANDS
// =============================================================================

// runAdminCommand dispatches the document-management flags. These run as
// one-shot commands against the admin API and never start the TUI.
func runAdminCommand(cfg *config.Config, list bool, uploadPath, deleteID, sitemapPath, sourceName string) error {
	ctx := context.Background()
	client := adminClient(cfg)

	switch {
	case list:
		return listDocuments(ctx, client, os.Stdout)
	case uploadPath != "":
		return uploadDocument(ctx, client, uploadPath, os.Stdout)
	case deleteID != "":
		return deleteDocument(ctx, client, deleteID, os.Stdout)
	case sitemapPath != "":
		return addSitemapSource(ctx, client, sitemapPath, sourceName, os.Stdout)
	}
	return nil
}

// adminClient builds the document-management client from the admin config
// section.
func adminClient(cfg *config.Config) *admin.Client {
	return admin.NewClient(&admin.Config{
		BaseURL:      cfg.Admin.URL,
		Username:     cfg.Admin.Username,
		Password:     cfg.Admin.Password,
		PollInterval: time.Duration(cfg.Admin.PollSecs) * time.Second,
	})
}

// listDocuments prints the corpus status table.
func listDocuments(ctx context.Context, client *admin.Client, out io.Writer) error {
	docs, err := client.ListDocuments(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(out, "No documents indexed.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.ID, d.Name, d.Status)
	}
	return tw.Flush()
}

// uploadDocument streams one file into the corpus with a progress line.
func uploadDocument(ctx context.Context, client *admin.Client, path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	err = client.UploadFile(ctx, name, f, info.Size(), func(sent, total int64) {
		fmt.Fprintf(out, "\rUploading %s: %d/%d bytes", name, sent, total)
	})
	if err != nil {
		fmt.Fprintln(out)
		return err
	}
	fmt.Fprintf(out, "\rUploaded %s (%d bytes)\n", name, info.Size())
	return nil
}

// deleteDocument removes one document from the corpus by id.
func deleteDocument(ctx context.Context, client *admin.Client, id string, out io.Writer) error {
	if err := client.DeleteDocument(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted %s\n", id)
	return nil
}

// addSitemapSource registers a sitemap crawl with the backend loader.
func addSitemapSource(ctx context.Context, client *admin.Client, webPath, name string, out io.Writer) error {
	pairs, err := admin.SitemapPairs(admin.SitemapSource{WebPath: webPath})
	if err != nil {
		return err
	}
	if name == "" {
		name = webPath
	}

	err = client.UploadSource(ctx, admin.SourceSitemap, name, pairs)
	switch {
	case admin.IsLoaderNotConfigured(err):
		return fmt.Errorf("this deployment has no sitemap loader")
	case admin.IsLoaderLocked(err):
		return fmt.Errorf("a sitemap load is already running; try again later")
	case err != nil:
		return err
	}

	fmt.Fprintf(out, "Registered sitemap source %q\n", name)
	return nil
}
