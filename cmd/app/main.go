// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"log"
	"os"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/config"
	"codeberg.org/oliverandrich/vibeflow-recovery/internal/server"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}

	cmd := &cli.Command{
		Name:     "vibeflow-recovery",
		Usage:    "Serve the VibeFlow account recovery pages and API",
		Flags:    config.Flags(),
		Action:   server.Run,
		Commands: server.Commands(),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
