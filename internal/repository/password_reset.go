// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/models"
)

// CreatePasswordResetToken stores the hash of a freshly issued reset token.
func (r *Repository) CreatePasswordResetToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) (*models.PasswordResetToken, error) {
	token := &models.PasswordResetToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return nil, err
	}
	return token, nil
}

// GetPasswordResetToken retrieves a reset token by hash.
func (r *Repository) GetPasswordResetToken(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	var token models.PasswordResetToken
	err := r.db.GetContext(ctx, &token, `SELECT * FROM password_reset_tokens WHERE token_hash = ?`, tokenHash)
	if err != nil {
		return nil, wrapError(err)
	}
	return &token, nil
}

// MarkPasswordResetTokenUsed redeems a token. It returns ErrNotFound when the
// token does not exist or was redeemed concurrently.
func (r *Repository) MarkPasswordResetTokenUsed(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used_at = ? WHERE id = ? AND used_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// DeleteUserPasswordResetTokens deletes all reset tokens of a user.
func (r *Repository) DeleteUserPasswordResetTokens(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE user_id = ?`, userID)
	return err
}

// DeleteExpiredPasswordResetTokens deletes tokens that expired before now and
// returns how many rows were removed.
func (r *Repository) DeleteExpiredPasswordResetTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE expires_at < ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ResetPassword updates the password and redeems the token in one transaction.
func (r *Repository) ResetPassword(ctx context.Context, tokenID string, userID int64, passwordHash string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used_at = ? WHERE id = ? AND used_at IS NULL`, now, tokenID)
	if err != nil {
		return err
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, passwordHash, now, userID)
	if err != nil {
		return err
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	// Any other outstanding link for this account stops working
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE user_id = ? AND id != ?`, userID, tokenID); err != nil {
		return err
	}

	return tx.Commit()
}
