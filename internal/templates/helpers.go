// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package templates renders the recovery pages with gomponents.
package templates

import (
	"context"
	"io"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/i18n"
	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html" //nolint:revive,staticcheck // html DSL
)

// CSRFFieldName is the form field echo's CSRF middleware reads.
const CSRFFieldName = "csrf_token"

// component lets a gomponents node travel through the templ render pipeline.
type component struct {
	node g.Node
}

func (c component) Render(_ context.Context, w io.Writer) error {
	return c.node.Render(w)
}

// Component wraps node as a templ.Component.
func Component(node g.Node) templ.Component {
	return component{node: node}
}

// T translates a message by ID.
func T(messageID string) string {
	return i18n.T(messageID)
}

// CSRFField is the hidden input carrying the CSRF token.
func CSRFField(token string) g.Node {
	return g.If(token != "", Input(Type("hidden"), Name(CSRFFieldName), Value(token)))
}

// FieldError renders the error slot of a form field. The slot is always
// present so htmx can swap it.
func FieldError(field, message string) g.Node {
	return Span(
		ID(fieldErrorID(field)),
		Class("field-error"),
		Aria("live", "polite"),
		g.Text(message),
	)
}

func fieldErrorID(field string) string {
	return field + "-error"
}

func invalid(message string) g.Node {
	return g.If(message != "", Aria("invalid", "true"))
}
