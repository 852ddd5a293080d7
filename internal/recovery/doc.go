// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package recovery holds the state of the account recovery widgets and the
// client for the account API they call.
//
// ForgotPasswordForm collects an email address and hands it to a
// ResetRequester. ResetPasswordForm collects a new password, reads the reset
// token from the page address and completes the reset through a
// PasswordResetter. Both raise a Notification after a terminal outcome that
// stays visible for NotificationTimeout at most.
//
// Each widget guards its state with a mutex and releases it while the API
// call runs, so only one submission per widget can be in flight.
package recovery
