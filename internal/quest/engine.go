package quest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/civicdex/platform/internal/domain"
	"github.com/civicdex/platform/internal/ledger"
	"github.com/civicdex/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Engine generates, tracks and resolves time-boxed quests.
type Engine struct {
	pool      *pgxpool.Pool
	quests    repository.QuestRepository
	profiles  repository.ProfileRepository
	outbox    repository.OutboxRepository
	coins     *ledger.Engine
	templates []domain.QuestTemplate
	logger    *slog.Logger
}

// NewEngine creates a quest engine using the default daily catalog.
func NewEngine(
	pool *pgxpool.Pool,
	quests repository.QuestRepository,
	profiles repository.ProfileRepository,
	outbox repository.OutboxRepository,
	coins *ledger.Engine,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		pool:      pool,
		quests:    quests,
		profiles:  profiles,
		outbox:    outbox,
		coins:     coins,
		templates: domain.DailyQuestCatalog,
		logger:    logger,
	}
}

// NewQuest instantiates a quest from a template. Every generated quest has
// required > 0, reward >= 0 and an expiry in the future.
func NewQuest(userID uuid.UUID, tpl domain.QuestTemplate, now time.Time) *domain.Quest {
	return &domain.Quest{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        tpl.Title,
		Description:  tpl.Description,
		Type:         tpl.Type,
		RewardAmount: tpl.RewardAmount,
		Progress:     0,
		Required:     tpl.Required,
		Status:       domain.QuestActive,
		ExpiresAt:    now.Add(tpl.Validity),
	}
}

// GenerateDaily instantiates today's quests for the user and returns the
// full active set. Idempotent per user per day: an active, unexpired quest
// of a template's type suppresses a new instance, and the partial unique
// index on (user, type, day) closes the race between concurrent calls.
func (e *Engine) GenerateDaily(ctx context.Context, userID uuid.UUID) ([]domain.Quest, error) {
	now := time.Now()
	for _, tpl := range e.templates {
		existing, err := e.quests.FindActiveByType(ctx, e.pool, userID, tpl.Type)
		if err != nil {
			return nil, fmt.Errorf("check existing %s quest: %w", tpl.Type, err)
		}
		if existing != nil {
			continue
		}

		q := NewQuest(userID, tpl, now)
		inserted, err := e.quests.InsertForDay(ctx, e.pool, q)
		if err != nil {
			return nil, fmt.Errorf("generate %s quest: %w", tpl.Type, err)
		}
		if inserted {
			e.logger.Info("quest generated", "user_id", userID, "type", tpl.Type, "expires_at", q.ExpiresAt)
		}
	}

	return e.quests.ListActiveByUser(ctx, e.pool, userID)
}

// GenerateDailyForAll runs daily generation across every known profile.
// Used by the scheduler; individual failures are logged and skipped so one
// bad profile does not starve the rest.
func (e *Engine) GenerateDailyForAll(ctx context.Context) error {
	ids, err := e.profiles.ListIDs(ctx, e.pool)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}

	var failed int
	for _, id := range ids {
		if _, err := e.GenerateDaily(ctx, id); err != nil {
			failed++
			e.logger.Error("daily generation failed", "user_id", id, "error", err)
		}
	}
	e.logger.Info("daily quest generation complete", "profiles", len(ids), "failed", failed)
	return nil
}

// ListActive returns the user's active quests, newest first.
func (e *Engine) ListActive(ctx context.Context, userID uuid.UUID) ([]domain.Quest, error) {
	return e.quests.ListActiveByUser(ctx, e.pool, userID)
}

// UpdateProgress applies one clamped increment for the given owner. Crossing
// the completion threshold transitions the quest and credits reward_amount
// exactly once; calls against a terminal quest are no-ops that return the
// quest as-is. Quests owned by another user surface as not found.
func (e *Engine) UpdateProgress(ctx context.Context, questID, userID uuid.UUID, increment int64) (*domain.Quest, error) {
	if err := domain.ValidateQuestIncrement(increment); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrUnavailable("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	updated, err := e.quests.ApplyProgress(ctx, tx, questID, userID, increment)
	if err != nil {
		return nil, fmt.Errorf("apply progress: %w", err)
	}

	if updated == nil {
		// Guard rejected the write: quest is absent, terminal, or overdue.
		current, err := e.quests.FindByID(ctx, tx, questID)
		if err != nil {
			return nil, fmt.Errorf("load quest: %w", err)
		}
		if current == nil || current.UserID != userID {
			return nil, domain.ErrNotFound("quest", questID.String())
		}
		return current, nil
	}

	// The guard requires status=active before the write, so observing
	// completed here means this call crossed the threshold.
	if updated.Status == domain.QuestCompleted {
		if err := e.settleCompletion(ctx, tx, updated); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrUnavailable("commit progress", err)
	}
	return updated, nil
}

// CompleteLoginQuest advances the user's active Daily Check-in quest by one
// step. No-op when none is active (already completed today, or not yet
// generated).
func (e *Engine) CompleteLoginQuest(ctx context.Context, userID uuid.UUID) (*domain.Quest, error) {
	q, err := e.quests.FindActiveByType(ctx, e.pool, userID, domain.QuestDailyLogin)
	if err != nil {
		return nil, fmt.Errorf("find login quest: %w", err)
	}
	if q == nil {
		return nil, nil
	}
	return e.UpdateProgress(ctx, q.ID, userID, 1)
}

// ExpireOverdue sweeps active quests past their expiry into the expired
// state. Run periodically by the scheduler.
func (e *Engine) ExpireOverdue(ctx context.Context) (int, error) {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return 0, domain.ErrUnavailable("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	expired, err := e.quests.ExpireOverdue(ctx, tx)
	if err != nil {
		return 0, err
	}
	for i := range expired {
		if err := e.outbox.Insert(ctx, tx, domain.NewQuestExpiredEvent(&expired[i])); err != nil {
			return 0, fmt.Errorf("publish expiry: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, domain.ErrUnavailable("commit expiry sweep", err)
	}
	if len(expired) > 0 {
		e.logger.Info("quests expired", "count", len(expired))
	}
	return len(expired), nil
}

func (e *Engine) settleCompletion(ctx context.Context, tx pgx.Tx, q *domain.Quest) error {
	if err := e.outbox.Insert(ctx, tx, domain.NewQuestCompletedEvent(q)); err != nil {
		return fmt.Errorf("publish completion: %w", err)
	}

	if q.RewardAmount == 0 {
		return nil
	}

	meta, _ := json.Marshal(map[string]string{
		"quest_id":   q.ID.String(),
		"quest_type": string(q.Type),
	})
	// The source key doubles as the dedup guard: even if the completion
	// path re-runs, the reward is credited at most once per quest.
	_, err := e.coins.Award(ctx, tx, domain.AwardParams{
		UserID:    q.UserID,
		Amount:    q.RewardAmount,
		Reason:    domain.ReasonQuestCompletion,
		SourceKey: "quest:" + q.ID.String(),
		Metadata:  meta,
	})
	if err != nil {
		return fmt.Errorf("credit quest reward: %w", err)
	}

	e.logger.Info("quest completed", "quest_id", q.ID, "user_id", q.UserID, "reward", q.RewardAmount)
	return nil
}
