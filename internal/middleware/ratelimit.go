// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package middleware holds echo middleware for the submit and API routes.
package middleware

import (
	"crypto/subtle"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/config"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimiter limits requests per client IP with a token bucket. The bucket
// holds Requests tokens and refills completely once per Window.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	window   time.Duration
	now      func() time.Time
	skipper  func(echo.Context) bool

	stop     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.now = now
	}
}

// WithSkipper exempts requests for which skip returns true.
func WithSkipper(skip func(echo.Context) bool) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.skipper = skip
	}
}

// HeaderCallerKey carries the key with which this server's own widgets sign
// their account API calls.
const HeaderCallerKey = "X-Recovery-Caller-Key"

// CallerKey returns a skipper matching requests that carry key in
// HeaderCallerKey. The visitor behind such a call was already limited when
// submitting the page, and every widget call shares the server's address.
func CallerKey(key string) func(echo.Context) bool {
	return func(c echo.Context) bool {
		got := c.Request().Header.Get(HeaderCallerKey)
		if key == "" || got == "" {
			return false
		}
		return subtle.ConstantTimeCompare([]byte(got), []byte(key)) == 1
	}
}

// NewRateLimiter creates a limiter from cfg. It returns nil when cfg disables
// rate limiting; a nil *RateLimiter lets every request through.
func NewRateLimiter(cfg config.RateLimitConfig, opts ...RateLimiterOption) *RateLimiter {
	if cfg.Requests <= 0 || cfg.Window <= 0 {
		return nil
	}
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(cfg.Window / time.Duration(cfg.Requests)),
		burst:    cfg.Requests,
		window:   cfg.Window,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Allow takes a token for key. When none is left it reports how long the
// client has to wait.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	if rl == nil {
		return true, 0
	}
	now := rl.now()

	rl.mu.Lock()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	r := v.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, rl.window
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	if rl == nil {
		return 0
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Cleanup forgets clients idle for longer than one window. Their bucket
// would be full again anyway.
func (rl *RateLimiter) Cleanup() int {
	if rl == nil {
		return 0
	}
	cutoff := rl.now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	removed := 0
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}

// StartCleanup runs Cleanup every interval until Stop is called.
func (rl *RateLimiter) StartCleanup(interval time.Duration) {
	if rl == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := rl.Cleanup(); n > 0 {
					slog.Debug("rate limiter cleanup", "removed", n)
				}
			case <-rl.stop:
				return
			}
		}
	}()
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	if rl == nil {
		return
	}
	rl.stopOnce.Do(func() {
		close(rl.stop)
	})
}

// Middleware rejects clients over their limit with 429 and a Retry-After
// header. The error handler renders the response.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rl != nil && rl.skipper != nil && rl.skipper(c) {
				return next(c)
			}
			ok, retryAfter := rl.Allow(c.RealIP())
			if ok {
				return next(c)
			}
			seconds := int(math.Ceil(retryAfter.Seconds()))
			c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
			slog.WarnContext(c.Request().Context(), "rate limit exceeded",
				"ip", c.RealIP(),
				"path", c.Request().URL.Path,
			)
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests. Please try again later.")
		}
	}
}
