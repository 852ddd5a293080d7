// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package recovery

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"
)

// PasswordResetter completes a reset with a token and the new password.
type PasswordResetter interface {
	ResetPassword(ctx context.Context, req ResetPasswordRequest) (Result, error)
}

// ResetPasswordForm is the state of the reset-password widget.
//
// Status moves Idle/Failed -> Loading -> Succeeded/Failed. Failed
// validation or a missing token leaves the status untouched.
type ResetPasswordForm struct {
	mu                   sync.Mutex
	opts                 options
	newPassword          string
	confirmPassword      string
	passwordError        string
	confirmPasswordError string
	status               Status
	notification         Notification
}

// NewResetPasswordForm returns an idle, empty widget.
func NewResetPasswordForm(opts ...Option) *ResetPasswordForm {
	return &ResetPasswordForm{opts: newOptions(opts)}
}

// SetNewPassword stores the new password and clears only its error.
func (f *ResetPasswordForm) SetNewPassword(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.newPassword = v
	f.passwordError = ""
}

// SetConfirmPassword stores the confirmation and clears only its error.
func (f *ResetPasswordForm) SetConfirmPassword(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmPassword = v
	f.confirmPasswordError = ""
}

func (f *ResetPasswordForm) NewPassword() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.newPassword
}

func (f *ResetPasswordForm) ConfirmPassword() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.confirmPassword
}

func (f *ResetPasswordForm) PasswordError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.passwordError
}

func (f *ResetPasswordForm) ConfirmPasswordError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.confirmPasswordError
}

func (f *ResetPasswordForm) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Loading reports whether a submission is in flight.
func (f *ResetPasswordForm) Loading() bool {
	return f.Status() == StatusLoading
}

// CanSubmit reports whether the submit control is enabled.
func (f *ResetPasswordForm) CanSubmit() bool {
	return !f.Loading()
}

// Notification returns the current notification, hidden once expired.
func (f *ResetPasswordForm) Notification() Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.notification
	if n.Expired(f.opts.now()) {
		n.Dismiss()
	}
	return n
}

func (f *ResetPasswordForm) DismissNotification() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notification.Dismiss()
}

// Validate checks both password fields and sets or clears their errors.
func (f *ResetPasswordForm) Validate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateLocked()
}

func (f *ResetPasswordForm) validateLocked() bool {
	password := strings.TrimSpace(f.newPassword)
	confirm := strings.TrimSpace(f.confirmPassword)

	passwordOK := utf8.RuneCountInString(password) >= MinPasswordLength
	confirmOK := confirm != "" && confirm == password

	f.passwordError = ""
	if !passwordOK {
		f.passwordError = MsgPasswordTooShort
	}
	f.confirmPasswordError = ""
	if !confirmOK {
		f.confirmPasswordError = MsgPasswordsDoNotMatch
	}

	return passwordOK && confirmOK
}

// Submit validates the fields, reads the token from tokens and calls api.
//
// It returns ErrValidation or ErrMissingToken before any call is made,
// ErrInFlight while another submission runs, an *APIError when the server
// rejected the reset and a *TransportError when it could not be reached.
func (f *ResetPasswordForm) Submit(ctx context.Context, api PasswordResetter, tokens TokenSource) error {
	f.mu.Lock()
	if f.status == StatusLoading {
		f.mu.Unlock()
		return ErrInFlight
	}
	if !f.validateLocked() {
		f.mu.Unlock()
		return ErrValidation
	}

	var token string
	ok := false
	if tokens != nil {
		token, ok = tokens.Token()
	}
	if !ok || token == "" {
		f.notification = newNotification(SeverityError, MsgInvalidToken, f.opts.now())
		f.mu.Unlock()
		return ErrMissingToken
	}

	req := ResetPasswordRequest{
		Token:    token,
		Password: strings.TrimSpace(f.newPassword),
	}
	f.status = StatusLoading
	f.notification.Dismiss()
	f.mu.Unlock()

	res, err := api.ResetPassword(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.opts.now()

	if err != nil {
		f.status = StatusFailed
		f.notification = newNotification(SeverityError, failureMessage(err), now)
		logFailure(ctx, "reset_password", err)
		return err
	}

	switch res.Kind {
	case ResultSuccess:
		f.newPassword = ""
		f.confirmPassword = ""
		f.status = StatusSucceeded
		f.notification = newNotification(SeveritySuccess, MsgPasswordReset, now)
		return nil

	case ResultFieldErrors:
		f.status = StatusFailed
		for _, fe := range res.FieldErrors {
			if fe.FieldName == "password" {
				f.passwordError = fe.ErrorMessage
			}
		}
		apiErr := &APIError{Result: res}
		logFailure(ctx, "reset_password", apiErr)
		return apiErr

	default:
		f.status = StatusFailed
		apiErr := &APIError{Result: res}
		f.notification = newNotification(SeverityError, failureMessage(apiErr), now)
		logFailure(ctx, "reset_password", apiErr)
		return apiErr
	}
}
