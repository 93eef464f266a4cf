package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/civicdex/platform/internal/infra"
	"github.com/civicdex/platform/internal/ledger"
	"github.com/civicdex/platform/internal/quest"
	"github.com/civicdex/platform/internal/repository"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("questgen failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("questgen connected to postgres")

	profileRepo := repository.NewProfileRepository()
	txRepo := repository.NewTransactionRepository()
	questRepo := repository.NewQuestRepository()
	outboxRepo := repository.NewOutboxRepository()

	coinLedger := ledger.NewEngine(profileRepo, txRepo, outboxRepo)
	engine := quest.NewEngine(pool, questRepo, profileRepo, outboxRepo, coinLedger, logger)

	// One-shot mode for cron-style deployments.
	if len(os.Args) > 1 && os.Args[1] == "once" {
		if err := engine.GenerateDailyForAll(ctx); err != nil {
			return err
		}
		_, err := engine.ExpireOverdue(ctx)
		return err
	}

	shutdown, err := infra.StartQuestScheduler(engine, cfg.QuestGenHour, logger)
	if err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("questgen shutting down")
	return shutdown()
}
