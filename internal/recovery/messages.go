// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package recovery

// Fixed user-facing messages of the recovery widgets.
const (
	MsgEmptyEmail          = "Empty email."
	MsgPasswordTooShort    = "Password must be at least 8 characters."
	MsgPasswordsDoNotMatch = "Passwords do not match."
	MsgPasswordReset       = "Your password has been reset successfully."
	MsgResetEmailSent      = "If an account exists for this email, we have sent a link to reset the password."
	MsgInvalidToken        = "Invalid or missing reset token."
	MsgConnectionFailed    = "Connection could not be established."
	MsgUnexpectedResponse  = "The server sent an unexpected response. Please try again."
)

// MinPasswordLength is the minimum number of characters of a trimmed new password.
const MinPasswordLength = 8
