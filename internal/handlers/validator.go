// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"reflect"
	"strings"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/recovery"
	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator to implement echo.Validator.
// Field names in errors follow the json tags of the request struct.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate implements the echo.Validator interface.
func (v *Validator) Validate(i any) error {
	return v.validate.Struct(i)
}

// fieldMessages holds the user facing text per field and failed tag.
var fieldMessages = map[string]string{
	"email.required":    recovery.MsgEmptyEmail,
	"email.email":       "Invalid email address.",
	"password.required": recovery.MsgPasswordTooShort,
	"password.min":      recovery.MsgPasswordTooShort,
	"token.required":    recovery.MsgInvalidToken,
}

// fieldErrors converts validator errors into the API's field errors. It
// returns nil when err holds none.
func fieldErrors(err error) []recovery.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]recovery.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = "Invalid value."
		}
		out = append(out, recovery.FieldError{FieldName: fe.Field(), ErrorMessage: msg})
	}
	return out
}
