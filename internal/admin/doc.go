// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package admin is the client for the backend's document-management API:
// corpus status listing, file and source uploads, and document deletion.
//
// Source uploads (confluence, sitemap) carry their loader parameters as a
// flat key/value pair list; the pair builders in this package validate and
// encode the structured fields. The backend answers 501 when a loader is
// not configured on the deployment and 423 while another load for the same
// loader is still running; both map to dedicated error types.
//
// Status listing is paced by a rate limiter so UI-driven refresh loops
// cannot hammer the endpoint.
package admin
