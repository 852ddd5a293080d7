// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/config"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/flash"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/handlers"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/i18n"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/recovery"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/repository"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/services/account"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/services/email"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	// Initialize i18n for template rendering
	_ = i18n.Init()
}

const strongPassword = "vK8#qLz!2mPw9xRt"

// recordingSender keeps sent mails in memory.
type recordingSender struct {
	mu   sync.Mutex
	sent []email.Message
}

func (s *recordingSender) Send(_ context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

var tokenPattern = regexp.MustCompile(`token=([0-9a-f]+)`)

// lastToken returns the reset token of the last mail.
func (s *recordingSender) lastToken(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.sent, "no mail sent")
	m := tokenPattern.FindStringSubmatch(s.sent[len(s.sent)-1].Body)
	require.Len(t, m, 2, "mail carries no reset link")
	return m[1]
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

// stubAPI answers widget calls without a server.
type stubAPI struct {
	requestErr  error
	resetResult recovery.Result
	resetErr    error

	emails []string
	resets []recovery.ResetPasswordRequest
}

func (s *stubAPI) RequestPasswordReset(_ context.Context, addr string) error {
	s.emails = append(s.emails, addr)
	return s.requestErr
}

func (s *stubAPI) ResetPassword(_ context.Context, req recovery.ResetPasswordRequest) (recovery.Result, error) {
	s.resets = append(s.resets, req)
	return s.resetResult, s.resetErr
}

type testEnv struct {
	e       *echo.Echo
	db      *sqlx.DB
	repo    *repository.Repository
	sender  *recordingSender
	api     *stubAPI
	flashes *flash.Manager
	h       *handlers.Handlers
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, repo := testutil.NewTestDB(t)
	sender := &recordingSender{}
	mailer := email.NewService(sender, "http://localhost:8080", time.Hour)
	accounts := account.NewService(repo, mailer, account.DefaultPasswordPolicy(), account.WithHashCost(bcrypt.MinCost))

	flashes, err := flash.NewManager(&config.FlashConfig{CookieName: "_flash"}, false)
	require.NoError(t, err)

	api := &stubAPI{resetResult: recovery.Result{Kind: recovery.ResultSuccess, StatusCode: http.StatusOK}}

	e := echo.New()
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	return &testEnv{
		e:       e,
		db:      db,
		repo:    repo,
		sender:  sender,
		api:     api,
		flashes: flashes,
		h:       handlers.New(db, accounts, api, flashes),
	}
}

func htmxHeaders(currentURL string) map[string]string {
	return map[string]string{
		"HX-Request":             "true",
		"HX-Current-URL":         currentURL,
		echo.HeaderContentType: echo.MIMEApplicationForm,
	}
}

func form(values map[string]string) *strings.Reader {
	v := url.Values{}
	for k, val := range values {
		v.Set(k, val)
	}
	return strings.NewReader(v.Encode())
}

// requestWithCookies returns a request carrying the cookies set on rec.
func requestWithCookies(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	return req
}

func TestNew(t *testing.T) {
	env := newTestEnv(t)

	assert.NotNil(t, env.h)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	c, rec := testutil.NewEchoContext(env.e, http.MethodGet, "/health", nil)

	err := env.h.Health(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealth_DatabaseDown(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.Close())
	c, rec := testutil.NewEchoContext(env.e, http.MethodGet, "/health", nil)

	err := env.h.Health(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
}

func TestHome(t *testing.T) {
	env := newTestEnv(t)
	c, rec := testutil.NewEchoContext(env.e, http.MethodGet, "/", nil)

	err := env.h.Home(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!doctype html>")
	assert.Contains(t, rec.Body.String(), `href="/forgot-password"`)
	assert.NotContains(t, rec.Body.String(), "toast")
}

func TestHome_ShowsFlash(t *testing.T) {
	env := newTestEnv(t)
	cookie, err := env.flashes.Cookie(flash.Message{Text: recovery.MsgPasswordReset, Severity: recovery.SeveritySuccess})
	require.NoError(t, err)

	c, rec := testutil.NewEchoContext(env.e, http.MethodGet, "/", nil)
	c.Request().AddCookie(cookie)

	require.NoError(t, env.h.Home(c))

	assert.Contains(t, rec.Body.String(), recovery.MsgPasswordReset)
	assert.Contains(t, rec.Body.String(), "toast-success")

	// The flash is consumed
	var cleared bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "_flash" && ck.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestDismissNotification(t *testing.T) {
	env := newTestEnv(t)
	c, rec := testutil.NewEchoContext(env.e, http.MethodGet, "/notifications/dismiss", nil)

	require.NoError(t, env.h.DismissNotification(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHTTPErrorHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler
	e.GET("/boom", func(echo.Context) error { return errors.New("kaputt") })
	e.GET("/api/boom", func(echo.Context) error { return errors.New("kaputt") })

	t.Run("page not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "does not exist")
	})

	t.Run("page internal error hides details", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "kaputt")
	})

	t.Run("api error uses envelope", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"internalErrorCode":"INTERNAL_ERROR","messageId":"INTERNAL_ERROR","errorMessage":"Internal Server Error."}`, rec.Body.String())
	})

	t.Run("api not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/missing", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		res := recovery.ParseResponse(rec.Code, rec.Body.Bytes())
		assert.Equal(t, recovery.ResultGeneralError, res.Kind)
	})
}
