// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/assets"
	g "maragu.dev/gomponents"
	c "maragu.dev/gomponents/components"
	. "maragu.dev/gomponents/html" //nolint:revive,staticcheck // html DSL
)

// htmxScript is the pinned htmx release the pages are written against.
const htmxScript = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"

// Page carries what every full page needs.
type Page struct {
	Title     string
	CSRFToken string
	Notice    Notice
}

// Layout wraps content in the HTML document shell.
func Layout(p Page, content ...g.Node) g.Node {
	title := T("app_name")
	if p.Title != "" {
		title = p.Title + " · " + title
	}
	return c.HTML5(c.HTML5Props{
		Title:    title,
		Language: "en",
		Head: []g.Node{
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			Link(Rel("stylesheet"), Href(assets.CSSPath())),
			Script(Src(htmxScript), Defer()),
		},
		Body: []g.Node{
			Header(Class("app-header"), A(Href("/"), g.Text(T("app_name")))),
			Notifications(p.Notice),
			Main(Class("card"), g.Group(content)),
		},
	})
}
