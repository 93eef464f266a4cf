package ledger

import (
	"context"
	"fmt"

	"github.com/civicdex/platform/internal/domain"
	"github.com/civicdex/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Engine is the CoinLedger: it appends immutable point transactions and
// keeps the profile's civic_coins balance in step with them.
type Engine struct {
	profiles     repository.ProfileRepository
	transactions repository.TransactionRepository
	outbox       repository.OutboxRepository
}

// NewEngine creates a ledger engine with the given repositories.
func NewEngine(
	profiles repository.ProfileRepository,
	transactions repository.TransactionRepository,
	outbox repository.OutboxRepository,
) *Engine {
	return &Engine{
		profiles:     profiles,
		transactions: transactions,
		outbox:       outbox,
	}
}

// Award appends one ledger entry and atomically increments civic_coins.
// Pattern: validate → dedup by source key → insert entry → server-side
// increment → outbox event, all within the caller's transaction, so the
// entry and the balance change commit or roll back together.
func (e *Engine) Award(ctx context.Context, tx pgx.Tx, params domain.AwardParams) (*domain.AwardResult, error) {
	if err := domain.ValidateAwardAmount(params.Amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidateReason(params.Reason); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	// Dedup: a retried award for the same triggering event returns the
	// original entry instead of applying twice.
	if params.SourceKey != "" {
		existing, err := e.transactions.FindBySourceKey(ctx, tx, params.UserID, params.SourceKey)
		if err != nil {
			return nil, fmt.Errorf("find existing award: %w", err)
		}
		if existing != nil {
			profile, err := e.profiles.FindByID(ctx, tx, params.UserID)
			if err != nil {
				return nil, fmt.Errorf("load profile: %w", err)
			}
			return &domain.AwardResult{Transaction: existing, Profile: profile, Idempotent: true}, nil
		}
	}

	// Server-side increment; never a client-computed read-modify-write.
	profile, err := e.profiles.IncrementCoins(ctx, tx, params.UserID, params.Amount)
	if err != nil {
		return nil, fmt.Errorf("increment coins: %w", err)
	}
	if profile == nil {
		return nil, domain.ErrNotFound("profile", params.UserID.String())
	}

	entry, err := e.transactions.Insert(ctx, tx, params, profile.CivicCoins)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	events := []domain.OutboxDraft{domain.NewBalanceChangedEvent(entry)}

	// Rank is derived from the balance; record transitions as they happen.
	newRank := domain.RankFor(profile.CivicCoins)
	if newRank != profile.Rank {
		if _, err := e.profiles.UpdateRank(ctx, tx, params.UserID, newRank); err != nil {
			return nil, fmt.Errorf("update rank: %w", err)
		}
		events = append(events, domain.NewRankChangedEvent(params.UserID, profile.Rank, newRank))
		profile.Rank = newRank
	}

	for _, event := range events {
		if err := e.outbox.Insert(ctx, tx, event); err != nil {
			return nil, fmt.Errorf("insert outbox event: %w", err)
		}
	}

	return &domain.AwardResult{Transaction: entry, Profile: profile, Events: events}, nil
}

// Reconcile compares the profile balance against the ledger sum and, when
// they drift, resets the balance to the sum. The ledger is the source of
// truth; drift can only appear if an increment was lost after its entry
// was recorded.
func (e *Engine) Reconcile(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int64, error) {
	sum, err := e.transactions.SumByUser(ctx, tx, userID)
	if err != nil {
		return 0, fmt.Errorf("sum ledger: %w", err)
	}

	profile, err := e.profiles.FindByID(ctx, tx, userID)
	if err != nil {
		return 0, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return 0, domain.ErrNotFound("profile", userID.String())
	}

	if drift := sum - profile.CivicCoins; drift != 0 {
		if _, err := e.profiles.IncrementCoins(ctx, tx, userID, drift); err != nil {
			return 0, fmt.Errorf("apply reconciliation: %w", err)
		}
		if newRank := domain.RankFor(sum); newRank != profile.Rank {
			if _, err := e.profiles.UpdateRank(ctx, tx, userID, newRank); err != nil {
				return 0, fmt.Errorf("update rank: %w", err)
			}
		}
	}
	return sum, nil
}
