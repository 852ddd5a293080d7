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

// ForgotPasswordPage renders an empty forgot-password widget.
func (h *Handlers) ForgotPasswordPage(c echo.Context) error {
	form := recovery.NewForgotPasswordForm(recovery.WithClock(h.now))
	return Render(c, http.StatusOK, templates.Component(templates.ForgotPasswordPage(h.page(c), form)))
}

// ForgotPasswordSubmit asks the account API to mail a reset link.
func (h *Handlers) ForgotPasswordSubmit(c echo.Context) error {
	cc := appcontext.From(c)
	form := recovery.NewForgotPasswordForm(recovery.WithClock(h.now))
	form.SetEmail(c.FormValue("email"))

	err := form.Submit(c.Request().Context(), h.api)
	notice := templates.NoticeFrom(form.Notification(), h.now())

	if cc.Partial() {
		return Render(c, http.StatusOK, templates.Component(templates.ForgotPasswordFragment(cc.CSRFToken, form, notice)))
	}
	if err == nil {
		return h.redirectWithFlash(c, "/", form.Notification())
	}

	page := h.page(c)
	page.Notice = notice
	return Render(c, pageStatus(err), templates.Component(templates.ForgotPasswordPage(page, form)))
}

// ForgotPasswordCancel dismisses the widget and returns to the sign-in page.
// The typed address is kept in the widget but never sent.
func (h *Handlers) ForgotPasswordCancel(c echo.Context) error {
	cc := appcontext.From(c)
	form := recovery.NewForgotPasswordForm(recovery.WithClock(h.now))
	form.SetEmail(c.FormValue("email"))
	form.Cancel()

	if cc.Htmx.IsHtmx {
		// HX-Redirect navigates; the dismissed form is the body for anything
		// that does not follow it.
		htmx.Redirect(c.Response(), "/")
		return Render(c, http.StatusOK, templates.Component(templates.ForgotPasswordForm(cc.CSRFToken, form)))
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// ForgotPasswordEmailField re-renders the email error slot after an edit.
// Editing only clears the error and validation waits for submit, so the slot
// comes back empty; the round trip exists to clear it.
func (h *Handlers) ForgotPasswordEmailField(c echo.Context) error {
	form := recovery.NewForgotPasswordForm()
	form.SetEmail(c.FormValue("email"))
	return Render(c, http.StatusOK, templates.Component(templates.FieldError("email", form.EmailError())))
}
