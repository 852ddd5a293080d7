// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/config"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func realIP(t *testing.T, extract echo.IPExtractor, remoteAddr, forwardedFor string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set(echo.HeaderXForwardedFor, forwardedFor)
	}
	return extract(req)
}

func TestClientIP_IgnoresForwardedForByDefault(t *testing.T) {
	extract, err := middleware.ClientIP(nil)
	require.NoError(t, err)

	assert.Equal(t, "203.0.113.5", realIP(t, extract, "203.0.113.5:4000", "198.51.100.1"))
	assert.Equal(t, "127.0.0.1", realIP(t, extract, "127.0.0.1:4000", "198.51.100.1"))
}

func TestClientIP_TrustedProxies(t *testing.T) {
	extract, err := middleware.ClientIP([]string{"127.0.0.1", "10.0.0.0/8"})
	require.NoError(t, err)

	tests := []struct {
		name         string
		remoteAddr   string
		forwardedFor string
		expected     string
	}{
		{"through trusted proxy", "127.0.0.1:4000", "198.51.100.1", "198.51.100.1"},
		{"through two trusted proxies", "127.0.0.1:4000", "198.51.100.1, 10.1.2.3", "198.51.100.1"},
		{"spoofed entry before the client", "127.0.0.1:4000", "1.2.3.4, 198.51.100.1", "198.51.100.1"},
		{"untrusted peer", "203.0.113.5:4000", "198.51.100.1", "203.0.113.5"},
		{"private peer not listed", "192.168.1.10:4000", "198.51.100.1", "192.168.1.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, realIP(t, extract, tt.remoteAddr, tt.forwardedFor))
		})
	}
}

func TestClientIP_InvalidRange(t *testing.T) {
	for _, raw := range []string{"not-an-ip", "10.0.0.0/99"} {
		_, err := middleware.ClientIP([]string{raw})
		assert.Error(t, err, raw)
	}
}

func TestRateLimiter_SpoofedForwardedForSharesBucket(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl := middleware.NewRateLimiter(config.RateLimitConfig{Requests: 3, Window: time.Minute}, middleware.WithClock(clock.Now))

	extract, err := middleware.ClientIP(nil)
	require.NoError(t, err)

	e := echo.New()
	e.IPExtractor = extract
	e.POST("/forgot-password", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, rl.Middleware())

	limited := 0
	for i := range 100 {
		req := httptest.NewRequest(http.MethodPost, "/forgot-password", nil)
		req.RemoteAddr = "203.0.113.5:4000"
		req.Header.Set(echo.HeaderXForwardedFor, fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}

	assert.Equal(t, 97, limited)
	assert.Equal(t, 1, rl.Len())
}
