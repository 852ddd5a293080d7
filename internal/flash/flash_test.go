// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package flash_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/config"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/flash"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/recovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validHashKey is a valid 32-byte hex-encoded key for testing
const validHashKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// validBlockKey is a valid 32-byte hex-encoded key for encryption testing
const validBlockKey = "fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210"

func newTestConfig() *config.FlashConfig {
	return &config.FlashConfig{
		CookieName: "_test_flash",
		HashKey:    validHashKey,
	}
}

func newManager(t *testing.T, cfg *config.FlashConfig) *flash.Manager {
	t.Helper()
	mgr, err := flash.NewManager(cfg, false)
	require.NoError(t, err)
	return mgr
}

func requestWith(c *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if c != nil {
		req.AddCookie(c)
	}
	return req
}

func TestNewManager_InvalidKeys(t *testing.T) {
	tests := []struct {
		name     string
		hashKey  string
		blockKey string
		contains string
	}{
		{"hash not hex", "not-hex-encoded", "", "invalid flash hash key"},
		{"hash wrong length", "0123456789abcdef", "", "must be 32 bytes"},
		{"block not hex", validHashKey, "not-hex-encoded", "invalid flash block key"},
		{"block wrong length", validHashKey, "0123456789abcdef", "must be 32 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig()
			cfg.HashKey = tt.hashKey
			cfg.BlockKey = tt.blockKey

			_, err := flash.NewManager(cfg, false)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestNewManager_GeneratesKey(t *testing.T) {
	mgr := newManager(t, &config.FlashConfig{})

	cookie, err := mgr.Cookie(flash.Message{Text: "hi", Severity: recovery.SeveritySuccess})

	require.NoError(t, err)
	assert.Equal(t, "_flash", cookie.Name)
}

func TestCookie(t *testing.T) {
	mgr := newManager(t, newTestConfig())

	cookie, err := mgr.Cookie(flash.Message{Text: "done", Severity: recovery.SeveritySuccess})

	require.NoError(t, err)
	assert.Equal(t, "_test_flash", cookie.Name)
	assert.NotEmpty(t, cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestCookie_SecureMode(t *testing.T) {
	mgr, err := flash.NewManager(newTestConfig(), true)
	require.NoError(t, err)

	cookie, err := mgr.Cookie(flash.Message{Text: "done"})

	require.NoError(t, err)
	assert.True(t, cookie.Secure)
}

func TestCookie_EmptyMessage(t *testing.T) {
	mgr := newManager(t, newTestConfig())

	_, err := mgr.Cookie(flash.Message{})

	assert.Error(t, err)
}

func TestRead_RoundTrip(t *testing.T) {
	cfg := newTestConfig()
	cfg.BlockKey = validBlockKey
	mgr := newManager(t, cfg)
	sent := flash.Message{Text: "Your password has been reset successfully.", Severity: recovery.SeveritySuccess}

	cookie, err := mgr.Cookie(sent)
	require.NoError(t, err)

	got, ok := mgr.Read(requestWith(cookie))

	require.True(t, ok)
	assert.Equal(t, sent, got)
}

func TestRead_NoCookie(t *testing.T) {
	mgr := newManager(t, newTestConfig())

	_, ok := mgr.Read(requestWith(nil))

	assert.False(t, ok)
}

func TestRead_TamperedCookie(t *testing.T) {
	mgr := newManager(t, newTestConfig())
	cookie, err := mgr.Cookie(flash.Message{Text: "done"})
	require.NoError(t, err)

	cookie.Value = cookie.Value[:len(cookie.Value)-4] + "abcd"
	_, ok := mgr.Read(requestWith(cookie))

	assert.False(t, ok)
}

func TestRead_DifferentManager(t *testing.T) {
	cookie, err := newManager(t, newTestConfig()).Cookie(flash.Message{Text: "done"})
	require.NoError(t, err)

	other := newManager(t, &config.FlashConfig{
		CookieName: "_test_flash",
		HashKey:    validBlockKey,
	})
	_, ok := other.Read(requestWith(cookie))

	assert.False(t, ok)
}

func TestPop(t *testing.T) {
	mgr := newManager(t, newTestConfig())
	cookie, err := mgr.Cookie(flash.Message{Text: "done", Severity: recovery.SeverityError})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	msg, ok := mgr.Pop(rec, requestWith(cookie))

	require.True(t, ok)
	assert.Equal(t, "done", msg.Text)
	assert.Equal(t, recovery.SeverityError, msg.Severity)

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, "_test_flash", cleared[0].Name)
	assert.Equal(t, -1, cleared[0].MaxAge)
}

func TestPop_NoCookieSetsNothing(t *testing.T) {
	mgr := newManager(t, newTestConfig())
	rec := httptest.NewRecorder()

	_, ok := mgr.Pop(rec, requestWith(nil))

	assert.False(t, ok)
	assert.Empty(t, rec.Result().Cookies())
}
