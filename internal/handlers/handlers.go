// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers serves the recovery pages and the account API.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/appcontext"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/database"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/flash"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/recovery"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/services/account"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/templates"
	"github.com/labstack/echo/v4"
	"github.com/vinovest/sqlx"
)

const healthTimeout = 2 * time.Second

// RecoveryAPI is the account API as seen by the widgets.
type RecoveryAPI interface {
	recovery.ResetRequester
	recovery.PasswordResetter
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	db       *sqlx.DB
	accounts *account.Service
	api      RecoveryAPI
	flash    *flash.Manager
	now      func() time.Time
}

// New creates a new Handlers instance. Page handlers reach the account API
// through api, API handlers use accounts directly.
func New(db *sqlx.DB, accounts *account.Service, api RecoveryAPI, flashes *flash.Manager) *Handlers {
	return &Handlers{
		db:       db,
		accounts: accounts,
		api:      api,
		flash:    flashes,
		now:      time.Now,
	}
}

// Health reports whether the database answers.
func (h *Handlers) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	if err := database.Ping(ctx, h.db); err != nil {
		slog.ErrorContext(ctx, "health check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Home renders the sign-in landing page, showing a pending flash message.
func (h *Handlers) Home(c echo.Context) error {
	page := h.page(c)
	if msg, ok := h.flash.Pop(c.Response(), c.Request()); ok {
		page.Notice = templates.Notice{
			Message:  msg.Text,
			Severity: msg.Severity,
			Delay:    recovery.NotificationTimeout,
		}
	}
	return Render(c, http.StatusOK, templates.Component(templates.HomePage(page)))
}

// DismissNotification answers the toast's dismiss request. The toast deletes
// itself client side, so the body stays empty.
func (h *Handlers) DismissNotification(c echo.Context) error {
	return c.String(http.StatusOK, "")
}

func (h *Handlers) page(c echo.Context) templates.Page {
	return templates.Page{CSRFToken: appcontext.From(c).CSRFToken}
}

// redirectWithFlash sends a plain request to target carrying n as a flash.
func (h *Handlers) redirectWithFlash(c echo.Context, target string, n recovery.Notification) error {
	if n.Visible {
		cookie, err := h.flash.Cookie(flash.Message{Text: n.Message, Severity: n.Severity})
		if err != nil {
			return err
		}
		c.SetCookie(cookie)
	}
	return c.Redirect(http.StatusSeeOther, target)
}
