// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/recovery"
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render renders a templ component with the given status code.
func Render(c echo.Context, statusCode int, component templ.Component) error {
	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	if err := component.Render(c.Request().Context(), buf); err != nil {
		return err
	}

	return c.HTML(statusCode, buf.String())
}

// pageStatus maps a failed widget submission to the status of a full page
// response. htmx fragments always use 200 so the swap happens.
func pageStatus(err error) int {
	var apiErr *recovery.APIError
	var transportErr *recovery.TransportError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, recovery.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, recovery.ErrMissingToken):
		return http.StatusBadRequest
	case errors.Is(err, recovery.ErrInFlight), errors.Is(err, recovery.ErrCancelled):
		return http.StatusConflict
	case errors.As(err, &apiErr):
		if apiErr.Result.StatusCode >= http.StatusBadRequest {
			return apiErr.Result.StatusCode
		}
		return http.StatusBadGateway
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
