// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/i18n"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/recovery"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"
)

func init() {
	_ = i18n.Init()
}

func render(t *testing.T, node g.Node) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, templates.Component(node).Render(context.Background(), &buf))
	return buf.String()
}

func TestHomePage(t *testing.T) {
	html := render(t, templates.HomePage(templates.Page{}))

	assert.True(t, strings.HasPrefix(strings.ToLower(html), "<!doctype html>"))
	assert.Contains(t, html, "Sign in")
	assert.Contains(t, html, `href="/forgot-password"`)
	assert.Contains(t, html, `id="notifications"`)
	assert.Contains(t, html, "/static/css/app.css")
	assert.Contains(t, html, "htmx.org")
}

func TestLayout_ShowsNotice(t *testing.T) {
	html := render(t, templates.HomePage(templates.Page{
		Notice: templates.Notice{Message: recovery.MsgPasswordReset, Severity: recovery.SeveritySuccess},
	}))

	assert.Contains(t, html, recovery.MsgPasswordReset)
	assert.Contains(t, html, "toast-success")
	assert.Contains(t, html, `hx-trigger="load delay:5000ms"`)
}

func TestToast(t *testing.T) {
	t.Run("empty notice renders nothing", func(t *testing.T) {
		assert.Empty(t, render(t, g.Group{templates.Toast(templates.Notice{})}))
	})

	t.Run("delay follows remaining time", func(t *testing.T) {
		html := render(t, templates.Toast(templates.Notice{
			Message:  "boom",
			Severity: recovery.SeverityError,
			Delay:    1500 * time.Millisecond,
		}))

		assert.Contains(t, html, `hx-trigger="load delay:1500ms"`)
		assert.Contains(t, html, `hx-get="/notifications/dismiss"`)
		assert.Contains(t, html, `hx-swap="delete"`)
		assert.Contains(t, html, `role="alert"`)
		assert.Contains(t, html, "toast-error")
	})

	t.Run("delay is capped at the notification timeout", func(t *testing.T) {
		html := render(t, templates.Toast(templates.Notice{Message: "ok", Delay: time.Minute}))

		assert.Contains(t, html, `hx-trigger="load delay:5000ms"`)
	})
}

func TestNoticeFrom(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, templates.Notice{}, templates.NoticeFrom(recovery.Notification{}, now))

	n := recovery.Notification{Message: "hello", Severity: recovery.SeveritySuccess, Visible: true, ShownAt: now}
	notice := templates.NoticeFrom(n, now.Add(2*time.Second))
	assert.Equal(t, "hello", notice.Message)
	assert.Equal(t, 3*time.Second, notice.Delay)

	assert.Equal(t, templates.Notice{}, templates.NoticeFrom(n, now.Add(recovery.NotificationTimeout)))
}

func TestForgotPasswordPage(t *testing.T) {
	form := recovery.NewForgotPasswordForm()
	form.SetEmail("jane@example.com")

	html := render(t, templates.ForgotPasswordPage(templates.Page{CSRFToken: "tok123"}, form))

	assert.Contains(t, html, `id="forgot-form"`)
	assert.Contains(t, html, `hx-post="/forgot-password"`)
	assert.Contains(t, html, `value="jane@example.com"`)
	assert.Contains(t, html, `name="csrf_token"`)
	assert.Contains(t, html, `value="tok123"`)
	assert.Contains(t, html, `hx-post="/forgot-password/cancel"`)
	assert.Contains(t, html, `hx-post="/forgot-password/fields/email"`)
	assert.NotContains(t, html, `type="submit" disabled`)
}

func TestForgotPasswordForm_FieldError(t *testing.T) {
	form := recovery.NewForgotPasswordForm()
	require.False(t, form.Validate())

	html := render(t, templates.ForgotPasswordForm("", form))

	assert.Contains(t, html, recovery.MsgEmptyEmail)
	assert.Contains(t, html, `aria-invalid="true"`)
	assert.NotContains(t, html, "csrf_token")
}

func TestForgotPasswordForm_CancelledDisablesSubmit(t *testing.T) {
	form := recovery.NewForgotPasswordForm()
	form.Cancel()

	html := render(t, templates.ForgotPasswordForm("", form))

	assert.Contains(t, html, `type="submit" disabled`)
	assert.Contains(t, html, `<form id="forgot-form" class="dismissed"`)
}

func TestForgotPasswordForm_ActiveIsNotDismissed(t *testing.T) {
	html := render(t, templates.ForgotPasswordForm("", recovery.NewForgotPasswordForm()))

	assert.NotContains(t, html, "dismissed")
}

func TestForgotPasswordFragment(t *testing.T) {
	form := recovery.NewForgotPasswordForm()
	html := render(t, templates.ForgotPasswordFragment("", form, templates.Notice{Message: recovery.MsgResetEmailSent, Severity: recovery.SeveritySuccess}))

	assert.Contains(t, html, `id="forgot-form"`)
	assert.Contains(t, html, `hx-swap-oob="true"`)
	assert.Contains(t, html, "we have sent a link")
	assert.False(t, strings.HasPrefix(strings.ToLower(html), "<!doctype"))
}

func TestResetPasswordPage(t *testing.T) {
	form := recovery.NewResetPasswordForm()

	html := render(t, templates.ResetPasswordPage(templates.Page{CSRFToken: "tok"}, form))

	assert.Contains(t, html, `id="reset-form"`)
	assert.Contains(t, html, `name="new_password"`)
	assert.Contains(t, html, `name="confirm_password"`)
	assert.Contains(t, html, `hx-post="/reset-password/fields/new_password"`)
	assert.Contains(t, html, `hx-post="/reset-password/fields/confirm_password"`)
	assert.NotContains(t, html, `action=`)
}

func TestResetPasswordForm_Errors(t *testing.T) {
	form := recovery.NewResetPasswordForm()
	form.SetNewPassword("abc")
	form.SetConfirmPassword("xyz")
	require.False(t, form.Validate())

	html := render(t, templates.ResetPasswordForm("", form))

	assert.Contains(t, html, recovery.MsgPasswordTooShort)
	assert.Contains(t, html, recovery.MsgPasswordsDoNotMatch)
	assert.Contains(t, html, `id="new_password-error"`)
	assert.Contains(t, html, `id="confirm_password-error"`)
}

func TestFieldError(t *testing.T) {
	html := render(t, templates.FieldError("email", ""))

	assert.Equal(t, `<span id="email-error" class="field-error" aria-live="polite"></span>`, html)
}

func TestErrorPage(t *testing.T) {
	html := render(t, templates.ErrorPage(templates.Page{}, 404, "nope"))

	assert.Contains(t, html, "404")
	assert.Contains(t, html, "nope")
}
