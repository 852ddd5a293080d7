// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package recovery

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Status is the submission state of a widget.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrValidation is returned when local field validation fails.
	ErrValidation = errors.New("recovery: invalid input")
	// ErrMissingToken is returned when the page address carries no reset token.
	ErrMissingToken = errors.New("recovery: missing reset token")
	// ErrInFlight is returned when a submission is already running.
	ErrInFlight = errors.New("recovery: submission in progress")
	// ErrCancelled is returned when a dismissed widget is submitted.
	ErrCancelled = errors.New("recovery: widget dismissed")
)

// Option configures a widget.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now for notification timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// failureMessage picks the notification text for a failed call. Transport
// failures are recognised by type, never by their text.
func failureMessage(err error) string {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return MsgConnectionFailed
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Result.Message != "" {
		return apiErr.Result.Message
	}
	return MsgUnexpectedResponse
}

func logFailure(ctx context.Context, widget string, err error) {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		slog.WarnContext(ctx, "account api unreachable", "widget", widget, "error", err)
		return
	}
	slog.DebugContext(ctx, "account api rejected submission", "widget", widget, "error", err)
}
