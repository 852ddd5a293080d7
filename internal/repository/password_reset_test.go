// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/repository"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePasswordResetToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ada@example.com")
	expiresAt := time.Now().Add(time.Hour)

	created, err := repo.CreatePasswordResetToken(ctx, user.ID, "hash-1", expiresAt)

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	token, err := repo.GetPasswordResetToken(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, token.ID)
	assert.Equal(t, user.ID, token.UserID)
	assert.Equal(t, "hash-1", token.TokenHash)
	assert.WithinDuration(t, expiresAt, token.ExpiresAt, time.Second)
	assert.Nil(t, token.UsedAt)
}

func TestCreatePasswordResetToken_UnknownUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.CreatePasswordResetToken(context.Background(), 999, "hash", time.Now().Add(time.Hour))

	assert.Error(t, err, "foreign key should reject unknown users")
}

func TestGetPasswordResetToken_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetPasswordResetToken(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMarkPasswordResetTokenUsed(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ada@example.com")
	created, err := repo.CreatePasswordResetToken(ctx, user.ID, "hash-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, repo.MarkPasswordResetTokenUsed(ctx, created.ID))

	token, err := repo.GetPasswordResetToken(ctx, "hash-1")
	require.NoError(t, err)
	assert.NotNil(t, token.UsedAt)

	// A second redemption must fail
	err = repo.MarkPasswordResetTokenUsed(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteUserPasswordResetTokens(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ada@example.com")
	expiresAt := time.Now().Add(time.Hour)

	_, err := repo.CreatePasswordResetToken(ctx, user.ID, "token1", expiresAt)
	require.NoError(t, err)
	_, err = repo.CreatePasswordResetToken(ctx, user.ID, "token2", expiresAt)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteUserPasswordResetTokens(ctx, user.ID))

	_, err = repo.GetPasswordResetToken(ctx, "token1")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetPasswordResetToken(ctx, "token2")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteExpiredPasswordResetTokens(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ada@example.com")

	_, err := repo.CreatePasswordResetToken(ctx, user.ID, "expired", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = repo.CreatePasswordResetToken(ctx, user.ID, "valid", time.Now().Add(time.Hour))
	require.NoError(t, err)

	deleted, err := repo.DeleteExpiredPasswordResetTokens(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.GetPasswordResetToken(ctx, "expired")
	require.ErrorIs(t, err, repository.ErrNotFound)

	token, err := repo.GetPasswordResetToken(ctx, "valid")
	require.NoError(t, err)
	assert.Equal(t, "valid", token.TokenHash)
}

func TestResetPassword(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ada@example.com")
	expiresAt := time.Now().Add(time.Hour)
	redeemed, err := repo.CreatePasswordResetToken(ctx, user.ID, "redeemed", expiresAt)
	require.NoError(t, err)
	_, err = repo.CreatePasswordResetToken(ctx, user.ID, "other", expiresAt)
	require.NoError(t, err)

	require.NoError(t, repo.ResetPassword(ctx, redeemed.ID, user.ID, "new-hash"))

	updated, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", updated.PasswordHash)

	token, err := repo.GetPasswordResetToken(ctx, "redeemed")
	require.NoError(t, err)
	assert.NotNil(t, token.UsedAt)

	_, err = repo.GetPasswordResetToken(ctx, "other")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestResetPassword_TokenAlreadyUsed(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ada@example.com")
	token, err := repo.CreatePasswordResetToken(ctx, user.ID, "hash", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.MarkPasswordResetTokenUsed(ctx, token.ID))

	err = repo.ResetPassword(ctx, token.ID, user.ID, "new-hash")

	require.ErrorIs(t, err, repository.ErrNotFound)

	unchanged, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, unchanged.PasswordHash)
}
