// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/config"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/database"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/jobs"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/repository"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/services/account"
	"github.com/urfave/cli/v3"
)

// Commands returns the maintenance subcommands.
func Commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-user",
			Usage: "Create an account",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Usage: "Email address", Required: true},
				&cli.StringFlag{Name: "name", Usage: "Display name"},
				&cli.StringFlag{Name: "password", Usage: "Initial password", Required: true},
			},
			Action: CreateUser,
		},
		{
			Name:   "purge-tokens",
			Usage:  "Delete expired password reset tokens",
			Action: PurgeTokens,
		},
	}
}

// CreateUser seeds an account from the command line.
func CreateUser(ctx context.Context, cmd *cli.Command) error {
	return withAccounts(cmd, func(accounts *account.Service) error {
		user, err := accounts.CreateUser(ctx, cmd.String("email"), cmd.String("name"), cmd.String("password"))
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		slog.Info("user created", "id", user.ID, "email", user.Email)
		return nil
	})
}

// PurgeTokens runs the token cleanup job once.
func PurgeTokens(ctx context.Context, cmd *cli.Command) error {
	return withAccounts(cmd, func(accounts *account.Service) error {
		jobs.TokenCleanup(ctx, accounts)()
		return nil
	})
}

func withAccounts(cmd *cli.Command, fn func(*account.Service) error) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := database.Close(db); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	policy := account.DefaultPasswordPolicy()
	policy.MinScore = cfg.Reset.MinPasswordScore
	// Seeding and cleanup never send mail
	return fn(account.NewService(repository.New(db), nil, policy))
}
