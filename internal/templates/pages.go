// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html" //nolint:revive,staticcheck // html DSL
)

// HomePage is the sign-in landing page the recovery flows return to.
func HomePage(p Page) g.Node {
	p.Title = T("home_title")
	return Layout(p,
		H1(g.Text(T("home_title"))),
		P(Class("intro"), g.Text(T("home_intro"))),
		P(A(ID("forgot-password-link"), Href(ForgotPasswordPath), g.Text(T("home_forgot_link")))),
	)
}

// ErrorPage renders an error with its status code.
func ErrorPage(p Page, code int, message string) g.Node {
	p.Title = T("error_title")
	return Layout(p,
		H1(g.Textf("%d · %s", code, T("error_title"))),
		P(Class("intro"), g.Text(message)),
		P(A(Href("/"), g.Text(T("back_to_login")))),
	)
}
