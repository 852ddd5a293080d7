// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package recovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account API paths.
const (
	ResetPasswordPath      = "/api/users/reset-password"
	EmailResetPasswordPath = "/api/users/email-reset-password"
)

// DefaultTimeout bounds a single API call when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// maxResponseBytes limits how much of a response body is read.
const maxResponseBytes = 1 << 20

// HeaderRequestID correlates widget calls with API logs.
const HeaderRequestID = "X-Request-ID"

// ResetPasswordRequest is the body of a reset call.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// FieldError is a server validation failure tied to one input.
type FieldError struct {
	FieldName    string `json:"fieldName"`
	ErrorMessage string `json:"errorMessage"`
}

// ResultKind tags the variant of a Result.
type ResultKind int

const (
	ResultSuccess ResultKind = iota
	ResultFieldErrors
	ResultGeneralError
)

func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultFieldErrors:
		return "field_errors"
	case ResultGeneralError:
		return "general_error"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// Result is the classified answer of the account API.
// FieldErrors is set for ResultFieldErrors, Message for ResultGeneralError.
type Result struct {
	Kind        ResultKind
	FieldErrors []FieldError
	Message     string
	StatusCode  int
}

// APIError is returned when the API answered but rejected the call.
type APIError struct {
	Result Result
}

func (e *APIError) Error() string {
	switch e.Result.Kind {
	case ResultFieldErrors:
		parts := make([]string, 0, len(e.Result.FieldErrors))
		for _, fe := range e.Result.FieldErrors {
			parts = append(parts, fe.FieldName+": "+fe.ErrorMessage)
		}
		return "account api rejected fields: " + strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("account api error (status %d): %s", e.Result.StatusCode, e.Result.Message)
	}
}

// TransportError means the exchange with the API could not be completed:
// no connection, a timeout, or a connection dropped mid-response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds each API call. Zero or negative values keep the default.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHeader adds a header to every API call.
func WithHeader(name, value string) ClientOption {
	return func(c *Client) {
		c.header.Add(name, value)
	}
}

// Client talks to the account API.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	header  http.Header
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{},
		timeout: DefaultTimeout,
		header:  http.Header{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResetPassword sends PUT /api/users/reset-password. A non-nil error is
// always a *TransportError; rejections are reported through Result.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (Result, error) {
	return c.call(ctx, http.MethodPut, ResetPasswordPath, req)
}

// RequestPasswordReset sends POST /api/users/email-reset-password. Rejections
// are returned as *APIError, failed exchanges as *TransportError.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	res, err := c.call(ctx, http.MethodPost, EmailResetPasswordPath, map[string]string{"email": email})
	if err != nil {
		return err
	}
	if res.Kind != ResultSuccess {
		return &APIError{Result: res}
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, path string, body any) (Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return Result{}, fmt.Errorf("encoding request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("building request: %w", err)
	}
	for name, values := range c.header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, &TransportError{Method: method, URL: target, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, &TransportError{Method: method, URL: target, Err: err}
	}

	return ParseResponse(resp.StatusCode, data), nil
}

// ParseResponse classifies an API answer. An errors list counts as field
// errors even when empty; only an empty list yields to a general message. A
// 2xx answer carrying neither is a success.
func ParseResponse(status int, body []byte) Result {
	var envelope struct {
		Errors       *[]FieldError `json:"errors"`
		ErrorMessage string        `json:"errorMessage"`
	}

	decoded := true
	if len(bytes.TrimSpace(body)) > 0 {
		decoded = json.Unmarshal(body, &envelope) == nil
	}

	hasErrors := decoded && envelope.Errors != nil
	ok := status >= 200 && status < 300
	switch {
	case hasErrors && len(*envelope.Errors) > 0:
		return Result{Kind: ResultFieldErrors, FieldErrors: *envelope.Errors, StatusCode: status}
	case decoded && envelope.ErrorMessage != "":
		return Result{Kind: ResultGeneralError, Message: envelope.ErrorMessage, StatusCode: status}
	case hasErrors:
		return Result{Kind: ResultFieldErrors, FieldErrors: *envelope.Errors, StatusCode: status}
	case !ok || !decoded:
		return Result{Kind: ResultGeneralError, Message: MsgUnexpectedResponse, StatusCode: status}
	default:
		return Result{Kind: ResultSuccess, StatusCode: status}
	}
}
