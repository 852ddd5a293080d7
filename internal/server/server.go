// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server wires configuration, storage and handlers into the HTTP server.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/assets"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/config"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/database"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/flash"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/handlers"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/i18n"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/jobs"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/middleware"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/recovery"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/repository"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/services/account"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/services/email"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/templates"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"
)

const shutdownTimeout = 10 * time.Second

// App is the assembled application.
type App struct {
	Echo     *echo.Echo
	Accounts *account.Service

	limiter   *middleware.RateLimiter
	scheduler *jobs.Scheduler
}

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"api_base_url", cfg.API.BaseURL,
	)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := database.Close(db); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	app, err := New(ctx, cfg, db)
	if err != nil {
		return err
	}
	app.Start()
	defer app.Stop()

	return startWithGracefulShutdown(app.Echo, cfg)
}

// New assembles the application on top of an open database.
func New(ctx context.Context, cfg *config.Config, db *sqlx.DB) (*App, error) {
	if err := i18n.Init(); err != nil {
		return nil, fmt.Errorf("failed to init i18n: %w", err)
	}

	sender, err := email.NewSender(&cfg.SMTP)
	if err != nil {
		return nil, fmt.Errorf("failed to set up mail: %w", err)
	}
	mailer := email.NewService(sender, cfg.Server.BaseURL, cfg.Reset.TokenTTL)

	policy := account.DefaultPasswordPolicy()
	policy.MinScore = cfg.Reset.MinPasswordScore
	accounts := account.NewService(repository.New(db), mailer, policy)

	flashes, err := flash.NewManager(&cfg.Flash, strings.HasPrefix(cfg.Server.BaseURL, "https://"))
	if err != nil {
		return nil, fmt.Errorf("failed to set up flash cookies: %w", err)
	}

	// Widget calls carry a per-process key so the API limiter can tell them
	// apart from outside callers, whatever address they arrive from.
	callerKey := uuid.NewString()
	api := recovery.NewClient(cfg.API.BaseURL,
		recovery.WithTimeout(cfg.API.Timeout),
		recovery.WithHeader(middleware.HeaderCallerKey, callerKey),
	)
	h := handlers.New(db, accounts, api, flashes)

	scheduler := jobs.NewScheduler()
	if cfg.Reset.CleanupSchedule != "" {
		if err := scheduler.AddTokenCleanup(ctx, cfg.Reset.CleanupSchedule, accounts); err != nil {
			return nil, err
		}
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit, middleware.WithSkipper(middleware.CallerKey(callerKey)))

	ipExtractor, err := middleware.ClientIP(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = ipExtractor
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	setupMiddleware(e, cfg)
	setupRoutes(e, h, limiter)

	return &App{
		Echo:      e,
		Accounts:  accounts,
		limiter:   limiter,
		scheduler: scheduler,
	}, nil
}

// Start launches the background jobs.
func (a *App) Start() {
	a.scheduler.Start()
	a.limiter.StartCleanup(time.Minute)
}

// Stop ends the background jobs.
func (a *App) Stop() {
	a.limiter.Stop()
	a.scheduler.Stop()
}

func setupRoutes(e *echo.Echo, h *handlers.Handlers, limiter *middleware.RateLimiter) {
	// Static files
	e.GET("/static/*", echo.WrapHandler(http.StripPrefix("/static", assets.FileServer())))

	e.GET("/health", h.Health)
	e.GET("/", h.Home)
	e.GET(templates.DismissPath, h.DismissNotification)

	// Forgot password widget
	e.GET(templates.ForgotPasswordPath, h.ForgotPasswordPage)
	e.POST(templates.ForgotPasswordPath, h.ForgotPasswordSubmit, limiter.Middleware())
	e.POST(templates.ForgotCancelPath, h.ForgotPasswordCancel)
	e.POST(templates.ForgotEmailFieldPath, h.ForgotPasswordEmailField)

	// Reset password widget
	e.GET(templates.ResetPasswordPath, h.ResetPasswordPage)
	e.POST(templates.ResetPasswordPath, h.ResetPasswordSubmit, limiter.Middleware())
	e.POST(templates.ResetFieldPath(":field"), h.ResetPasswordField)

	// Account API
	e.PUT(recovery.ResetPasswordPath, h.APIResetPassword, limiter.Middleware())
	e.POST(recovery.EmailResetPasswordPath, h.APIEmailResetPassword, limiter.Middleware())
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	tlsConfig, err := LoadTLS(cfg)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	errChan := make(chan error, 1)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	go func() {
		slog.Info("server running", "url", cfg.Server.BaseURL)
		if err := serve(e, addr, tlsConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

func serve(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	if tlsConfig == nil {
		return e.Start(addr)
	}
	return startTLSServer(e, addr, tlsConfig)
}
