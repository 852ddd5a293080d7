// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/recovery"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html" //nolint:revive,staticcheck // html DSL
)

const (
	ResetPasswordPath = "/reset-password"

	// Form field names, also used as :field in ResetFieldPath.
	FieldNewPassword     = "new_password"
	FieldConfirmPassword = "confirm_password"

	resetFormID = "reset-form"
)

// ResetFieldPath is the endpoint re-validating a single reset form field.
func ResetFieldPath(field string) string {
	return ResetPasswordPath + "/fields/" + field
}

// ResetPasswordPage renders the reset-password widget as a full page.
func ResetPasswordPage(p Page, f *recovery.ResetPasswordForm) g.Node {
	p.Title = T("reset_password_title")
	return Layout(p,
		H1(g.Text(T("reset_password_title"))),
		P(Class("intro"), g.Text(T("reset_password_intro"))),
		ResetPasswordForm(p.CSRFToken, f),
	)
}

// ResetPasswordFragment is the htmx response to a submit.
func ResetPasswordFragment(csrfToken string, f *recovery.ResetPasswordForm, n Notice) g.Node {
	return g.Group{ResetPasswordForm(csrfToken, f), NotificationsOOB(n)}
}

// ResetPasswordForm renders both password fields and the submit action.
// The form has no action so a plain submit keeps the token query of the page.
func ResetPasswordForm(csrfToken string, f *recovery.ResetPasswordForm) g.Node {
	return Form(
		ID(resetFormID),
		Method("post"),
		hx.Post(ResetPasswordPath),
		hx.Target("this"),
		hx.Swap("outerHTML"),
		g.Attr("hx-disabled-elt", "find button"),
		CSRFField(csrfToken),
		passwordField(FieldNewPassword, T("new_password_label"), f.NewPassword(), f.PasswordError()),
		passwordField(FieldConfirmPassword, T("confirm_password_label"), f.ConfirmPassword(), f.ConfirmPasswordError()),
		Div(Class("actions"),
			Button(Type("submit"), g.If(!f.CanSubmit(), Disabled()), g.Text(T("reset_password_submit"))),
			Span(Class("progress"), g.Text(T("loading"))),
			A(Href("/"), g.Text(T("back_to_login"))),
		),
	)
}

func passwordField(name, label, value, message string) g.Node {
	return Div(Class("field"),
		Label(For(name), g.Text(label)),
		Input(
			ID(name),
			Name(name),
			Type("password"),
			Value(value),
			AutoComplete("new-password"),
			invalid(message),
			hx.Post(ResetFieldPath(name)),
			hx.Trigger("input changed delay:200ms"),
			hx.Target("#"+fieldErrorID(name)),
			hx.Swap("outerHTML"),
		),
		FieldError(name, message),
	)
}
