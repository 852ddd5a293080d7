// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package account implements the server side of password recovery: issuing
// reset tokens and redeeming them for a new password.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/models"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/repository"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/services/email"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidToken = errors.New("invalid reset token")
	ErrTokenExpired = errors.New("reset token expired")
	ErrTokenUsed    = errors.New("reset token already used")
)

// FieldError names the input a validation message belongs to.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned when request values break a rule.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return e.Fields[0].Field + ": " + e.Fields[0].Message
}

func fieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Mailer issues reset tokens and delivers the link to the user.
type Mailer interface {
	GenerateToken() (plaintext, hash string, expiresAt time.Time, err error)
	SendPasswordReset(ctx context.Context, toEmail, name, token string) error
}

// Option configures a Service.
type Option func(*Service)

// WithHashCost sets the bcrypt cost for new password hashes.
func WithHashCost(cost int) Option {
	return func(s *Service) {
		s.hashCost = cost
	}
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

type Service struct {
	repo     *repository.Repository
	mailer   Mailer
	policy   PasswordPolicy
	hashCost int
	now      func() time.Time
}

func NewService(repo *repository.Repository, mailer Mailer, policy PasswordPolicy, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		mailer:   mailer,
		policy:   policy,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the password policy enforced on resets.
func (s *Service) Policy() PasswordPolicy {
	return s.policy
}

// CreateUser creates an account with the given password.
func (s *Service) CreateUser(ctx context.Context, emailAddr, name, password string) (*models.User, error) {
	if _, err := mail.ParseAddress(emailAddr); err != nil {
		return nil, fieldError("email", "Invalid email address.")
	}
	password = strings.TrimSpace(password)
	if msg := s.policy.Check(password, emailAddr, name); msg != "" {
		return nil, fieldError("password", msg)
	}

	if _, err := s.repo.GetUserByEmail(ctx, emailAddr); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, emailAddr, name, hash)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// RequestReset stores a new reset token for the account owning emailAddr and
// mails the reset link. It returns ErrUserNotFound for unknown addresses;
// callers must not reveal that to the requester.
func (s *Service) RequestReset(ctx context.Context, emailAddr string) error {
	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("looking up user: %w", err)
	}

	plaintext, hash, expiresAt, err := s.mailer.GenerateToken()
	if err != nil {
		return err
	}

	if _, err := s.repo.CreatePasswordResetToken(ctx, user.ID, hash, expiresAt); err != nil {
		return fmt.Errorf("storing reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Name, plaintext); err != nil {
		return err
	}

	slog.InfoContext(ctx, "password reset requested", "user_id", user.ID)
	return nil
}

// ResetPassword redeems token and sets password as the account's new password.
func (s *Service) ResetPassword(ctx context.Context, token, password string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	stored, err := s.repo.GetPasswordResetToken(ctx, email.HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("looking up reset token: %w", err)
	}
	if stored.Used() {
		return nil, ErrTokenUsed
	}
	if stored.Expired(s.now()) {
		return nil, ErrTokenExpired
	}

	user, err := s.repo.GetUserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	password = strings.TrimSpace(password)
	if msg := s.policy.Check(password, user.Email, user.Name); msg != "" {
		return nil, fieldError("password", msg)
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ResetPassword(ctx, stored.ID, user.ID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Redeemed by a concurrent request
			return nil, ErrTokenUsed
		}
		return nil, fmt.Errorf("resetting password: %w", err)
	}

	slog.InfoContext(ctx, "password reset completed", "user_id", user.ID)
	return user, nil
}

// PurgeExpiredTokens removes reset tokens whose expiry has passed.
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpiredPasswordResetTokens(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("deleting expired reset tokens: %w", err)
	}
	return n, nil
}

// CheckPassword reports whether password matches the account's hash.
func CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}
