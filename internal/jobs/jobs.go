// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// TokenPurger deletes expired password reset tokens.
type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// Scheduler wraps a cron instance using the five field format and
// descriptors such as @hourly.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates a stopped scheduler.
func NewScheduler() *Scheduler {
	c := cron.New(cron.WithParser(cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)))
	return &Scheduler{cron: c}
}

// AddTokenCleanup purges expired reset tokens on spec.
func (s *Scheduler) AddTokenCleanup(ctx context.Context, spec string, purger TokenPurger) error {
	if _, err := s.cron.AddFunc(spec, TokenCleanup(ctx, purger)); err != nil {
		return fmt.Errorf("scheduling token cleanup %q: %w", spec, err)
	}
	slog.Info("scheduled token cleanup", "schedule", spec)
	return nil
}

// Len returns the number of scheduled jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// TokenCleanup returns the job body purging expired tokens.
func TokenCleanup(ctx context.Context, purger TokenPurger) func() {
	return func() {
		n, err := purger.PurgeExpiredTokens(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "failed to purge expired reset tokens", "error", err)
			return
		}
		slog.InfoContext(ctx, "purged expired reset tokens", "count", n)
	}
}
