// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/i18n"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/templates"
	"github.com/labstack/echo/v4"
)

// APIPrefix marks routes answered with the JSON error envelope.
const APIPrefix = "/api/"

// HTTPErrorHandler renders errors as JSON envelopes below APIPrefix and as
// error pages everywhere else.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := ""
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}

	if code >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
		message = ""
	}

	var renderErr error
	if strings.HasPrefix(c.Request().URL.Path, APIPrefix) {
		renderErr = APIError(c, code, errorCode(code), apiMessage(code, message))
	} else {
		renderErr = RenderError(c, code, pageMessage(code, message))
	}
	if renderErr != nil {
		slog.ErrorContext(c.Request().Context(), "failed to render error", "error", renderErr)
	}
}

// RenderError renders the error page with the given status code.
func RenderError(c echo.Context, code int, message string) error {
	if c.Request().Method == http.MethodHead {
		return c.NoContent(code)
	}
	node := templates.ErrorPage(templates.Page{}, code, message)
	return Render(c, code, templates.Component(node))
}

func errorCode(code int) string {
	switch code {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return CodeNotFound
	case http.StatusTooManyRequests:
		return CodeTooManyRequests
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return CodeMalformedRequest
	default:
		if code >= http.StatusInternalServerError {
			return CodeInternalError
		}
		return fmt.Sprintf("HTTP_%d", code)
	}
}

func apiMessage(code int, message string) string {
	if message != "" {
		return message
	}
	if text := http.StatusText(code); text != "" {
		return text + "."
	}
	return "Error."
}

func pageMessage(code int, message string) string {
	switch {
	case code == http.StatusNotFound:
		return i18n.T("error_not_found")
	case message != "":
		return message
	default:
		return i18n.T("error_generic")
	}
}
