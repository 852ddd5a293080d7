// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email issues password reset tokens and mails reset links.
package email

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/i18n"
)

const (
	// TokenLength is the number of random bytes for reset tokens.
	TokenLength = 32
	// DefaultTokenExpiry is used when no TTL is configured.
	DefaultTokenExpiry = time.Hour
	// ResetPath is the page that consumes the token query parameter.
	ResetPath = "/reset-password"
)

// Message is a plain text mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Service handles reset token generation and reset mails.
type Service struct {
	sender   Sender
	baseURL  string
	tokenTTL time.Duration
}

// NewService creates a new email service.
func NewService(sender Sender, baseURL string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenExpiry
	}
	return &Service{
		sender:   sender,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		tokenTTL: tokenTTL,
	}
}

// TokenTTL returns how long generated tokens stay valid.
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

// GenerateToken generates a new reset token.
// Returns (plaintext token, SHA256 hash for storage, expiry time, error).
func (s *Service) GenerateToken() (string, string, time.Time, error) {
	bytes := make([]byte, TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to generate random bytes: %w", err)
	}

	plaintext := hex.EncodeToString(bytes)
	hash := HashToken(plaintext)
	expiresAt := time.Now().Add(s.tokenTTL)

	return plaintext, hash, expiresAt, nil
}

// HashToken computes the SHA256 hash of a token.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// ResetLink builds the page address carrying the token.
func (s *Service) ResetLink(token string) string {
	return s.baseURL + ResetPath + "?" + url.Values{"token": {token}}.Encode()
}

// SendPasswordReset mails the reset link for token to the given recipient.
func (s *Service) SendPasswordReset(ctx context.Context, toEmail, name, token string) error {
	if name == "" {
		name = toEmail
	}

	subject := i18n.T("email_reset_subject")
	body := i18n.TData("email_reset_body", map[string]any{
		"Name":    name,
		"Link":    s.ResetLink(token),
		"Minutes": int(s.tokenTTL.Minutes()),
	})

	if err := s.sender.Send(ctx, Message{To: toEmail, Subject: subject, Body: body}); err != nil {
		return fmt.Errorf("sending reset mail: %w", err)
	}
	return nil
}
