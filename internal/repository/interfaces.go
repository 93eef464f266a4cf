package repository

import (
	"context"
	"time"

	"github.com/civicdex/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// ProfileRepository provides access to user_profiles.
type ProfileRepository interface {
	// FindByID returns a profile by user ID, or nil when absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.UserProfile, error)

	// CreateIfAbsent inserts a profile keyed by user ID, doing nothing on
	// conflict. Returns true when this call created the row.
	CreateIfAbsent(ctx context.Context, db DBTX, profile *domain.UserProfile) (bool, error)

	// IncrementCoins atomically adjusts civic_coins with server-side
	// arithmetic and returns the updated profile.
	IncrementCoins(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta int64) (*domain.UserProfile, error)

	// UpdateRank stores the derived rank. No-op when unchanged.
	UpdateRank(ctx context.Context, db DBTX, userID uuid.UUID, rank domain.Rank) (bool, error)

	// UpdateUsername changes the username, surfacing uniqueness conflicts.
	UpdateUsername(ctx context.Context, db DBTX, userID uuid.UUID, username string) error

	// ListIDs returns all profile IDs, for the daily quest generator.
	ListIDs(ctx context.Context, db DBTX) ([]uuid.UUID, error)
}

// TransactionRepository provides access to point_transactions.
type TransactionRepository interface {
	// FindBySourceKey checks the dedup index for an already-applied award.
	FindBySourceKey(ctx context.Context, db DBTX, userID uuid.UUID, sourceKey string) (*domain.PointTransaction, error)

	// Insert creates a new ledger entry with the post-update balance snapshot.
	Insert(ctx context.Context, db DBTX, params domain.AwardParams, balanceAfter int64) (*domain.PointTransaction, error)

	// ListByUser returns entries for a user, newest first.
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.PointTransaction, error)

	// SumPositiveSince returns the user's earned total (positive amounts
	// only) from the given instant. Feeds the daily earning cap.
	SumPositiveSince(ctx context.Context, db DBTX, userID uuid.UUID, since time.Time) (int64, error)

	// SumByUser returns the ledger total for a user. Source of truth for
	// balance reconciliation.
	SumByUser(ctx context.Context, db DBTX, userID uuid.UUID) (int64, error)
}

// AchievementRepository provides access to the achievements catalog and
// per-user unlock state.
type AchievementRepository interface {
	// ListCatalog returns all catalog entries, ascending by required_coins.
	ListCatalog(ctx context.Context, db DBTX) ([]domain.Achievement, error)

	// ListByUser returns the user's unlock rows.
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.UserAchievement, error)

	// Unlock performs the guarded upsert: insert unlocked, or flip an
	// existing locked row. Returns true only when this call unlocked it.
	Unlock(ctx context.Context, db DBTX, userID, achievementID uuid.UUID, progress, required int64, at time.Time) (bool, error)
}

// QuestRepository provides access to quests.
type QuestRepository interface {
	// FindByID returns a quest by ID, or nil when absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Quest, error)

	// ListActiveByUser returns unexpired active quests, oldest first.
	ListActiveByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.Quest, error)

	// FindActiveByType returns the user's active, unexpired quest of the
	// given type, or nil.
	FindActiveByType(ctx context.Context, db DBTX, userID uuid.UUID, questType domain.QuestType) (*domain.Quest, error)

	// InsertForDay inserts a quest guarded by the (user, type, day)
	// active-quest uniqueness index. Returns false when a duplicate exists.
	InsertForDay(ctx context.Context, db DBTX, quest *domain.Quest) (bool, error)

	// ApplyProgress runs the atomic clamp-and-transition update. Returns the
	// updated quest, or nil when the quest is absent, owned by another user,
	// terminal, or past its expiry (the guard rejected the write).
	ApplyProgress(ctx context.Context, db DBTX, questID, userID uuid.UUID, increment int64) (*domain.Quest, error)

	// ExpireOverdue flips active quests past expires_at to expired and
	// returns the quests it transitioned.
	ExpireOverdue(ctx context.Context, db DBTX) ([]domain.Quest, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the
	// state change it describes).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events for the outbox poller.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, []int64, error)

	// MarkPublished removes published events.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}
