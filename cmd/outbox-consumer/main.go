package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/civicdex/platform/internal/achievement"
	"github.com/civicdex/platform/internal/domain"
	"github.com/civicdex/platform/internal/infra"
	"github.com/civicdex/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const consumerGroup = "civicdex-achievement-evaluator"

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("outbox consumer failed", "error", err)
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
	logger.Info("outbox-consumer connected to postgres")

	outboxRepo := repository.NewOutboxRepository()
	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()

	// Relay: event_outbox -> Kafka.
	poller := infra.NewOutboxPoller(pool, outboxRepo, producer, logger)
	poller.Start(ctx)

	// Evaluator: wallet topic -> achievement re-evaluation. The outbox path
	// is at-least-once and the unlock upsert is idempotent, so duplicate
	// deliveries are harmless.
	consumer := infra.NewKafkaConsumer(
		cfg.KafkaBrokers,
		domain.OutboxDraft{AggregateType: domain.AggregateWallet}.Topic(),
		consumerGroup,
		cfg.KafkaEnabled,
		logger,
	)
	defer consumer.Close()

	if consumer.Enabled() {
		profileRepo := repository.NewProfileRepository()
		achievementRepo := repository.NewAchievementRepository()
		engine := achievement.NewEngine(pool, profileRepo, achievementRepo, outboxRepo, logger)

		go consumeWalletEvents(ctx, consumer, engine, logger)
	}

	<-ctx.Done()
	logger.Info("outbox-consumer shutting down")
	return nil
}

type walletEvent struct {
	EventType domain.EventType `json:"event_type"`
	Payload   json.RawMessage  `json:"payload"`
}

type balanceChangedPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

func consumeWalletEvents(ctx context.Context, consumer *infra.KafkaConsumer, engine *achievement.Engine, logger *slog.Logger) {
	for {
		msg, err := consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("read wallet event", "error", err)
			continue
		}

		var evt walletEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.Error("decode wallet event", "error", err)
			continue
		}
		if evt.EventType != domain.EventBalanceChanged {
			continue
		}

		var payload balanceChangedPayload
		if err := json.Unmarshal(evt.Payload, &payload); err != nil {
			logger.Error("decode balance payload", "error", err)
			continue
		}

		evalCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if _, err := engine.Evaluate(evalCtx, payload.UserID); err != nil {
			logger.Error("evaluate achievements", "user_id", payload.UserID, "error", err)
		}
		cancel()
	}
}
