// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/appcontext"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/htmx"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/recovery"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/templates"
	"github.com/labstack/echo/v4"
)

// ResetPasswordPage renders the reset widget. The token stays in the page
// address and is read again on submit.
func (h *Handlers) ResetPasswordPage(c echo.Context) error {
	form := recovery.NewResetPasswordForm(recovery.WithClock(h.now))
	return Render(c, http.StatusOK, templates.Component(templates.ResetPasswordPage(h.page(c), form)))
}

// ResetPasswordSubmit validates both fields and redeems the token of the page
// address through the account API.
func (h *Handlers) ResetPasswordSubmit(c echo.Context) error {
	cc := appcontext.From(c)
	form := recovery.NewResetPasswordForm(recovery.WithClock(h.now))
	form.SetNewPassword(c.FormValue(templates.FieldNewPassword))
	form.SetConfirmPassword(c.FormValue(templates.FieldConfirmPassword))

	tokens := recovery.QueryToken(htmx.PageAddress(c.Request()))
	err := form.Submit(c.Request().Context(), h.api, tokens)
	notice := templates.NoticeFrom(form.Notification(), h.now())

	if cc.Partial() {
		return Render(c, http.StatusOK, templates.Component(templates.ResetPasswordFragment(cc.CSRFToken, form, notice)))
	}
	if err == nil {
		return h.redirectWithFlash(c, "/", form.Notification())
	}

	page := h.page(c)
	page.Notice = notice
	return Render(c, pageStatus(err), templates.Component(templates.ResetPasswordPage(page, form)))
}

// ResetPasswordField re-renders the error slot of one field after an edit.
// Editing a field never touches the error of the other one. The edited slot
// always comes back empty: the endpoint exists to clear it, and validation
// waits for submit.
func (h *Handlers) ResetPasswordField(c echo.Context) error {
	field := c.Param("field")
	form := recovery.NewResetPasswordForm()

	var message string
	switch field {
	case templates.FieldNewPassword:
		form.SetNewPassword(c.FormValue(field))
		message = form.PasswordError()
	case templates.FieldConfirmPassword:
		form.SetConfirmPassword(c.FormValue(field))
		message = form.ConfirmPasswordError()
	default:
		return echo.NewHTTPError(http.StatusNotFound)
	}
	return Render(c, http.StatusOK, templates.Component(templates.FieldError(field, message)))
}
