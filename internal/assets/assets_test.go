// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

//go:build !dev

package assets_test

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/assets"
	"github.com/stretchr/testify/assert"
)

func TestCSSPath_IsVersioned(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^/static/css/app\.css\?v=[0-9a-f]{8}$`), assets.CSSPath())
}

func TestFileServer_ServesStylesheet(t *testing.T) {
	srv := http.StripPrefix("/static", assets.FileServer())

	req := httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".toast")
}

func TestFileServer_MissingFile(t *testing.T) {
	srv := http.StripPrefix("/static", assets.FileServer())

	req := httptest.NewRequest(http.MethodGet, "/static/css/missing.css", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
