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
	ForgotPasswordPath   = "/forgot-password"
	ForgotCancelPath     = "/forgot-password/cancel"
	ForgotEmailFieldPath = "/forgot-password/fields/email"

	forgotFormID = "forgot-form"
)

// ForgotPasswordPage renders the forgot-password widget as a full page.
func ForgotPasswordPage(p Page, f *recovery.ForgotPasswordForm) g.Node {
	p.Title = T("forgot_password_title")
	return Layout(p,
		H1(g.Text(T("forgot_password_title"))),
		P(Class("intro"), g.Text(T("forgot_password_intro"))),
		ForgotPasswordForm(p.CSRFToken, f),
	)
}

// ForgotPasswordFragment is the htmx response to a submit: the form plus the
// toast container swapped out of band.
func ForgotPasswordFragment(csrfToken string, f *recovery.ForgotPasswordForm, n Notice) g.Node {
	return g.Group{ForgotPasswordForm(csrfToken, f), NotificationsOOB(n)}
}

// ForgotPasswordForm renders the email field with its submit and cancel actions.
func ForgotPasswordForm(csrfToken string, f *recovery.ForgotPasswordForm) g.Node {
	return Form(
		ID(forgotFormID),
		g.If(f.Cancelled(), Class("dismissed")),
		Method("post"),
		Action(ForgotPasswordPath),
		hx.Post(ForgotPasswordPath),
		hx.Target("this"),
		hx.Swap("outerHTML"),
		g.Attr("hx-disabled-elt", "find button"),
		CSRFField(csrfToken),
		Div(Class("field"),
			Label(For("email"), g.Text(T("email_label"))),
			Input(
				ID("email"),
				Name("email"),
				Type("email"),
				Value(f.Email()),
				Placeholder(T("email_placeholder")),
				AutoComplete("email"),
				invalid(f.EmailError()),
				hx.Post(ForgotEmailFieldPath),
				hx.Trigger("input changed delay:200ms"),
				hx.Target("#"+fieldErrorID("email")),
				hx.Swap("outerHTML"),
			),
			FieldError("email", f.EmailError()),
		),
		Div(Class("actions"),
			Button(Type("submit"), g.If(!f.CanSubmit(), Disabled()), g.Text(T("send_reset_link"))),
			Button(
				Type("submit"),
				Class("secondary"),
				g.Attr("formaction", ForgotCancelPath),
				g.Attr("formnovalidate"),
				hx.Post(ForgotCancelPath),
				g.Text(T("cancel")),
			),
			Span(Class("progress"), g.Text(T("loading"))),
		),
	)
}
