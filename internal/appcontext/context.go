// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package appcontext provides the custom Echo context.
package appcontext

import (
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/htmx"
	"github.com/labstack/echo/v4"
)

// CSRFContextKey is where echo's CSRF middleware stores the token.
const CSRFContextKey = "csrf"

// Context is a custom Echo context with typed fields for htmx and CSRF.
type Context struct {
	echo.Context
	Htmx      *htmx.Request
	CSRFToken string
}

// Wrap returns a Context built from the headers and values of c.
func Wrap(c echo.Context) *Context {
	token, _ := c.Get(CSRFContextKey).(string)
	return &Context{
		Context:   c,
		Htmx:      htmx.ParseRequest(c.Request()),
		CSRFToken: token,
	}
}

// From returns c as a *Context, wrapping it when the middleware did not run.
func From(c echo.Context) *Context {
	if cc, ok := c.(*Context); ok {
		return cc
	}
	return Wrap(c)
}

// Partial reports whether the request wants an htmx fragment.
func (c *Context) Partial() bool {
	return c.Htmx != nil && c.Htmx.Partial()
}

// Middleware replaces the echo context with a *Context. It must run after
// the CSRF middleware.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(Wrap(c))
		}
	}
}
