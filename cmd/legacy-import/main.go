// legacy-import loads a JSON export of the old backend's users and point
// history. Usage: legacy-import <export.json>
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/civicdex/platform/internal/infra"
	"github.com/civicdex/platform/internal/migration"
	"github.com/joho/godotenv"
)

type export struct {
	Users   []migration.LegacyUser       `json:"users"`
	History []migration.LegacyPointEntry `json:"history"`
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("legacy import failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: legacy-import <export.json>")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}

	var exp export
	if err := json.Unmarshal(data, &exp); err != nil {
		return fmt.Errorf("decode export: %w", err)
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	importer := migration.NewImporter(pool, logger)

	legacyIDs := make([]string, 0, len(exp.Users))
	for _, u := range exp.Users {
		if _, err := importer.ImportUser(ctx, u); err != nil {
			return err
		}
		legacyIDs = append(legacyIDs, u.ID)
	}

	for _, e := range exp.History {
		if err := importer.ImportPointEntry(ctx, e); err != nil {
			return err
		}
	}

	checks, err := importer.VerifyBalances(ctx, legacyIDs)
	if err != nil {
		return err
	}

	mismatches := 0
	for _, c := range checks {
		if !c.Match {
			mismatches++
			logger.Warn("balance mismatch", "legacy_id", c.LegacyID, "balance", c.Balance, "ledger_sum", c.LedgerSum)
		}
	}

	logger.Info("legacy import complete",
		"users", len(exp.Users),
		"entries", len(exp.History),
		"mismatches", mismatches)
	return nil
}
