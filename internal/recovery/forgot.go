// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package recovery

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ResetRequester starts an email based password reset for a validated address.
type ResetRequester interface {
	RequestPasswordReset(ctx context.Context, email string) error
}

// ForgotPasswordForm is the state of the forgot-password widget.
type ForgotPasswordForm struct {
	mu           sync.Mutex
	opts         options
	email        string
	emailError   string
	status       Status
	notification Notification
	cancelled    bool
}

// NewForgotPasswordForm returns an idle, empty widget.
func NewForgotPasswordForm(opts ...Option) *ForgotPasswordForm {
	return &ForgotPasswordForm{opts: newOptions(opts)}
}

// SetEmail stores the raw input and clears the field error.
func (f *ForgotPasswordForm) SetEmail(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email = v
	f.emailError = ""
}

func (f *ForgotPasswordForm) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

func (f *ForgotPasswordForm) EmailError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.emailError
}

func (f *ForgotPasswordForm) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// CanSubmit reports whether the submit control is enabled.
func (f *ForgotPasswordForm) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status != StatusLoading && !f.cancelled
}

// Notification returns the current notification, hidden once expired.
func (f *ForgotPasswordForm) Notification() Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.notification
	if n.Expired(f.opts.now()) {
		n.Dismiss()
	}
	return n
}

func (f *ForgotPasswordForm) DismissNotification() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notification.Dismiss()
}

// Validate checks the email field and sets its error.
func (f *ForgotPasswordForm) Validate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateLocked()
}

func (f *ForgotPasswordForm) validateLocked() bool {
	if strings.TrimSpace(f.email) == "" {
		f.emailError = MsgEmptyEmail
		return false
	}
	f.emailError = ""
	return true
}

// Cancel dismisses the widget. Nothing is sent and the input is kept.
func (f *ForgotPasswordForm) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = true
}

func (f *ForgotPasswordForm) Cancelled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled
}

// Submit validates the email and hands the trimmed address to requester.
// Invalid input returns ErrValidation without calling requester.
func (f *ForgotPasswordForm) Submit(ctx context.Context, requester ResetRequester) error {
	f.mu.Lock()
	if f.cancelled {
		f.mu.Unlock()
		return ErrCancelled
	}
	if f.status == StatusLoading {
		f.mu.Unlock()
		return ErrInFlight
	}
	if !f.validateLocked() {
		f.mu.Unlock()
		return ErrValidation
	}
	email := strings.TrimSpace(f.email)
	f.status = StatusLoading
	f.notification.Dismiss()
	f.mu.Unlock()

	err := requester.RequestPasswordReset(ctx, email)

	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.opts.now()

	if err == nil {
		f.status = StatusSucceeded
		f.notification = newNotification(SeveritySuccess, MsgResetEmailSent, now)
		return nil
	}

	f.status = StatusFailed
	logFailure(ctx, "forgot_password", err)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Result.Kind == ResultFieldErrors {
		for _, fe := range apiErr.Result.FieldErrors {
			if fe.FieldName == "email" {
				f.emailError = fe.ErrorMessage
			}
		}
		return err
	}

	f.notification = newNotification(SeverityError, failureMessage(err), now)
	return err
}
