// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/recovery"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/services/account"
	"github.com/labstack/echo/v4"
)

// Internal error codes and message ids of the error envelope.
const (
	CodeValidationFailed = "THE_CURRENT_REQUEST_VALIDATION_FAILED"
	CodeInvalidToken     = "INVALID_TOKEN"
	CodeTokenExpired     = "TOKEN_EXPIRED"
	CodeMalformedRequest = "MALFORMED_REQUEST"
	CodeTooManyRequests  = "TOO_MANY_REQUESTS"
	CodeNotFound         = "NOT_FOUND"
	CodeInternalError    = "INTERNAL_ERROR"

	MessageValidationFailed = "INPUT_VALIDATION_FAILED"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	InternalErrorCode string                `json:"internalErrorCode"`
	MessageID         string                `json:"messageId"`
	ErrorMessage      string                `json:"errorMessage"`
	Errors            []recovery.FieldError `json:"errors,omitempty"`
}

// APIError writes an error envelope.
func APIError(c echo.Context, status int, code, message string) error {
	return c.JSON(status, ErrorResponse{
		InternalErrorCode: code,
		MessageID:         code,
		ErrorMessage:      message,
	})
}

func apiValidationError(c echo.Context, fields []recovery.FieldError) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		InternalErrorCode: CodeValidationFailed,
		MessageID:         MessageValidationFailed,
		ErrorMessage:      "Input validation failed.",
		Errors:            fields,
	})
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type emailResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordResponse struct {
	Email string `json:"email"`
}

// APIResetPassword redeems a reset token and stores the new password.
func (h *Handlers) APIResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return APIError(c, http.StatusBadRequest, CodeMalformedRequest, "Malformed request.")
	}
	if err := c.Validate(&req); err != nil {
		if fields := fieldErrors(err); fields != nil {
			return apiValidationError(c, fields)
		}
		return err
	}

	user, err := h.accounts.ResetPassword(c.Request().Context(), req.Token, req.Password)
	var verr *account.ValidationError
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, resetPasswordResponse{Email: user.Email})
	case errors.As(err, &verr):
		return apiValidationError(c, accountFieldErrors(verr))
	case errors.Is(err, account.ErrTokenExpired):
		return APIError(c, http.StatusGone, CodeTokenExpired, "Token expired.")
	case errors.Is(err, account.ErrInvalidToken), errors.Is(err, account.ErrTokenUsed):
		return APIError(c, http.StatusBadRequest, CodeInvalidToken, "Invalid token.")
	default:
		return err
	}
}

// APIEmailResetPassword mails a reset link. Unknown addresses get the same
// answer as known ones.
func (h *Handlers) APIEmailResetPassword(c echo.Context) error {
	var req emailResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return APIError(c, http.StatusBadRequest, CodeMalformedRequest, "Malformed request.")
	}
	if err := c.Validate(&req); err != nil {
		if fields := fieldErrors(err); fields != nil {
			return apiValidationError(c, fields)
		}
		return err
	}

	err := h.accounts.RequestReset(c.Request().Context(), req.Email)
	if errors.Is(err, account.ErrUserNotFound) {
		slog.DebugContext(c.Request().Context(), "password reset requested for unknown email")
	} else if err != nil {
		return err
	}
	return c.NoContent(http.StatusAccepted)
}

func accountFieldErrors(verr *account.ValidationError) []recovery.FieldError {
	out := make([]recovery.FieldError, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		out = append(out, recovery.FieldError{FieldName: f.Field, ErrorMessage: f.Message})
	}
	return out
}
