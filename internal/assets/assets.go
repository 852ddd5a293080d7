// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

//go:build !dev

// Package assets provides the embedded stylesheet with a content-hashed URL.
package assets

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"net/http"
)

//go:embed static
var staticFS embed.FS

// VersionParam is the query parameter carrying the content hash.
const VersionParam = "v"

var cssPath = "/static/css/app.css"

func init() {
	data, err := staticFS.ReadFile("static/css/app.css")
	if err != nil {
		slog.Error("failed to read embedded stylesheet", "error", err)
		return
	}
	sum := sha256.Sum256(data)
	cssPath += "?" + VersionParam + "=" + hex.EncodeToString(sum[:])[:8]
	slog.Debug("loaded asset paths", "css", cssPath)
}

// CSSPath returns the path to the stylesheet, including its content hash.
func CSSPath() string {
	return cssPath
}

// FileServer returns an http.Handler that serves embedded static files.
func FileServer() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("failed to create sub filesystem: " + err.Error())
	}
	return http.FileServer(http.FS(sub))
}
