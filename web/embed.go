// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

// Package web embeds the built Mini App frontend. In Docker builds the
// static/ directory holds the compiled bundle; in local development it
// may only contain the placeholder index.html.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree served at the root of
// the HTTP server. The Mini App is a single-page app, so unknown paths
// fall back to index.html.
//
//go:embed all:static
var StaticFS embed.FS
