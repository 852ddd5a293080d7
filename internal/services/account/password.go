// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package account

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nbutton23/zxcvbn-go"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

// Password rule messages, shown next to the password field.
const (
	MsgPasswordTooCommon = "This password is too common."
	MsgPasswordTooLong   = "Password must be at most 72 bytes long."
)

// PasswordPolicy decides whether a new password is acceptable.
type PasswordPolicy struct {
	MinLength int // in characters, after trimming
	MinScore  int // zxcvbn score 0-4
}

// DefaultPasswordPolicy returns the policy used when nothing is configured.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength: 8,
		MinScore:  2,
	}
}

// Check returns a user-facing message describing the first violated rule,
// or an empty string when the password is acceptable. userInputs (email,
// name) are penalised by the strength estimator.
func (p PasswordPolicy) Check(password string, userInputs ...string) string {
	trimmed := strings.TrimSpace(password)

	if utf8.RuneCountInString(trimmed) < p.MinLength {
		return fmt.Sprintf("Password must be at least %d characters.", p.MinLength)
	}
	if len(password) > maxPasswordBytes {
		return MsgPasswordTooLong
	}

	if p.MinScore <= 0 {
		return ""
	}

	inputs := make([]string, 0, len(userInputs))
	for _, in := range userInputs {
		if in != "" {
			inputs = append(inputs, in)
		}
	}
	if zxcvbn.PasswordStrength(password, inputs).Score < p.MinScore {
		return MsgPasswordTooCommon
	}

	return ""
}
