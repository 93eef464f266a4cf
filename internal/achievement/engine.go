package achievement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/civicdex/platform/internal/domain"
	"github.com/civicdex/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Engine evaluates badge unlock eligibility against the CivicCoin balance.
// Unlocks are monotonic: once a badge is unlocked it never reverts.
type Engine struct {
	pool         *pgxpool.Pool
	profiles     repository.ProfileRepository
	achievements repository.AchievementRepository
	outbox       repository.OutboxRepository
	logger       *slog.Logger
}

// NewEngine creates an achievement engine.
func NewEngine(
	pool *pgxpool.Pool,
	profiles repository.ProfileRepository,
	achievements repository.AchievementRepository,
	outbox repository.OutboxRepository,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		pool:         pool,
		profiles:     profiles,
		achievements: achievements,
		outbox:       outbox,
		logger:       logger,
	}
}

// Eligible returns the catalog entries whose threshold the balance meets.
// The catalog must already be ordered ascending by required_coins; unlock
// decisions are independent per entry, the order only shapes emitted events.
func Eligible(catalog []domain.Achievement, balance int64) []domain.Achievement {
	var out []domain.Achievement
	for _, a := range catalog {
		if a.RequiredCoins <= balance {
			out = append(out, a)
		}
	}
	return out
}

// Evaluate unlocks every eligible, still-locked badge for the user and
// returns the newly unlocked achievement IDs. Safe to re-run: an unchanged
// balance produces no new unlocks and leaves unlocked_at untouched. Each
// unlock commits in its own transaction, so a failure partway through
// loses nothing and a retry picks up where it stopped.
func (e *Engine) Evaluate(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	profile, err := e.profiles.FindByID(ctx, e.pool, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return nil, domain.ErrNotFound("profile", userID.String())
	}

	catalog, err := e.achievements.ListCatalog(ctx, e.pool)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	now := time.Now()
	var unlocked []uuid.UUID
	for _, a := range Eligible(catalog, profile.CivicCoins) {
		isNew, err := e.unlockOne(ctx, userID, a, profile.CivicCoins, now)
		if err != nil {
			return unlocked, fmt.Errorf("unlock %s: %w", a.Name, err)
		}
		if !isNew {
			continue
		}
		unlocked = append(unlocked, a.ID)
		e.logger.Info("achievement unlocked",
			"user_id", userID, "achievement", a.Name, "required_coins", a.RequiredCoins)
	}
	return unlocked, nil
}

// unlockOne commits the guarded upsert and its AchievementUnlocked event
// together. An unlock row can never exist without its outbox draft.
func (e *Engine) unlockOne(ctx context.Context, userID uuid.UUID, a domain.Achievement, balance int64, now time.Time) (bool, error) {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin unlock tx: %w", err)
	}
	defer tx.Rollback(ctx)

	isNew, err := e.achievements.Unlock(ctx, tx, userID, a.ID, balance, a.RequiredCoins, now)
	if err != nil {
		return false, err
	}
	if !isNew {
		return false, nil
	}

	if err := e.outbox.Insert(ctx, tx, domain.NewAchievementUnlockedEvent(userID, a.ID, a.RequiredCoins)); err != nil {
		return false, fmt.Errorf("insert unlock event: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit unlock tx: %w", err)
	}
	return true, nil
}
