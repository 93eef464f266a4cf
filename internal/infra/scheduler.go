package infra

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// QuestJobs is the subset of the quest engine the scheduler drives.
type QuestJobs interface {
	GenerateDailyForAll(ctx context.Context) error
	ExpireOverdue(ctx context.Context) (int, error)
}

// StartQuestScheduler runs the daily quest generation at the configured
// local time and an hourly expiry sweep. The returned shutdown function
// stops the scheduler.
func StartQuestScheduler(jobs QuestJobs, genAt string, logger *slog.Logger) (func() error, error) {
	hour, minute, err := parseClock(genAt)
	if err != nil {
		return nil, err
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(hour, minute, 0))),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := jobs.GenerateDailyForAll(ctx); err != nil {
				logger.Error("daily quest generation failed", "error", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule generation job: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, err := jobs.ExpireOverdue(ctx); err != nil {
				logger.Error("quest expiry sweep failed", "error", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule expiry job: %w", err)
	}

	sched.Start()
	logger.Info("quest scheduler started", "generate_at", genAt)
	return sched.Shutdown, nil
}

func parseClock(s string) (uint, uint, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return uint(t.Hour()), uint(t.Minute()), nil
}
