// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

//go:build dev

// Package assets serves the stylesheet from disk so edits show up without a rebuild.
package assets

import (
	"net/http"
)

// VersionParam is the query parameter carrying the content hash.
const VersionParam = "v"

// CSSPath returns the path to the stylesheet (unhashed in dev mode).
func CSSPath() string {
	return "/static/css/app.css"
}

// FileServer returns an http.Handler that serves static files from the filesystem.
func FileServer() http.Handler {
	return http.FileServer(http.Dir("internal/assets/static"))
}
