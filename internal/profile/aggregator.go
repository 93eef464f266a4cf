package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/civicdex/platform/internal/domain"
	"github.com/civicdex/platform/internal/projection"
	"github.com/civicdex/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecentActivityLimit caps the profile's activity feed.
const RecentActivityLimit = 10

// snapshotTTL bounds how stale a cached profile view may be.
const snapshotTTL = 15 * time.Second

// Aggregator composes the ledger, rank and achievement state into a single
// user-facing profile snapshot. Read-only.
type Aggregator struct {
	pool         *pgxpool.Pool
	profiles     repository.ProfileRepository
	transactions repository.TransactionRepository
	achievements repository.AchievementRepository
	snapshots    projection.Store
}

// NewAggregator creates a profile aggregator. The snapshot store may be nil
// to disable caching.
func NewAggregator(
	pool *pgxpool.Pool,
	profiles repository.ProfileRepository,
	transactions repository.TransactionRepository,
	achievements repository.AchievementRepository,
	snapshots projection.Store,
) *Aggregator {
	return &Aggregator{
		pool:         pool,
		profiles:     profiles,
		transactions: transactions,
		achievements: achievements,
		snapshots:    snapshots,
	}
}

// GetUserProfile builds the composed profile view. Missing collaborator
// data degrades to empty lists, never to an error.
func (a *Aggregator) GetUserProfile(ctx context.Context, userID uuid.UUID) (*domain.ProfileView, error) {
	cacheKey := "profile:" + userID.String()
	if a.snapshots != nil {
		var cached domain.ProfileView
		if err := projection.GetJSON(ctx, a.snapshots, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	base, err := a.profiles.FindByID(ctx, a.pool, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if base == nil {
		return nil, domain.ErrNotFound("profile", userID.String())
	}

	catalog, err := a.achievements.ListCatalog(ctx, a.pool)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	unlocks, err := a.achievements.ListByUser(ctx, a.pool, userID)
	if err != nil {
		return nil, fmt.Errorf("load unlocks: %w", err)
	}
	recent, err := a.transactions.ListByUser(ctx, a.pool, userID, RecentActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}

	view := &domain.ProfileView{
		UserProfile:        *base,
		ProgressToNextRank: domain.ProgressToNext(base.CivicCoins),
		NextRank:           domain.NextRank(base.Rank),
		Badges:             BuildBadges(catalog, unlocks),
		RecentActivity:     BuildActivity(recent),
	}

	if a.snapshots != nil {
		_ = projection.SetJSON(ctx, a.snapshots, cacheKey, view, snapshotTTL)
	}
	return view, nil
}

// BuildBadges maps every catalog entry to a badge view, folding in the
// user's unlock rows. Locked entries are included with unlocked=false.
func BuildBadges(catalog []domain.Achievement, unlocks []domain.UserAchievement) []domain.Badge {
	byAchievement := make(map[uuid.UUID]domain.UserAchievement, len(unlocks))
	for _, ua := range unlocks {
		byAchievement[ua.AchievementID] = ua
	}

	badges := make([]domain.Badge, 0, len(catalog))
	for _, a := range catalog {
		b := domain.Badge{
			AchievementID: a.ID,
			Name:          a.Name,
			Description:   a.Description,
			Icon:          a.Icon,
			Category:      a.Category,
			Required:      a.RequiredCoins,
		}
		if ua, ok := byAchievement[a.ID]; ok {
			b.Unlocked = ua.Unlocked
			b.UnlockedAt = ua.UnlockedAt
			b.Progress = ua.Progress
			b.Required = ua.Required
		}
		badges = append(badges, b)
	}
	return badges
}

// BuildActivity maps ledger entries to the activity feed, newest first.
func BuildActivity(txs []domain.PointTransaction) []domain.ActivityItem {
	items := make([]domain.ActivityItem, 0, len(txs))
	for _, tx := range txs {
		title := domain.ReasonLabels[tx.Reason]
		if title == "" {
			title = string(tx.Reason)
		}
		items = append(items, domain.ActivityItem{
			Title:       title,
			Description: fmt.Sprintf("Earned %d CivicCoins", tx.Amount),
			Points:      tx.Amount,
			Timestamp:   tx.CreatedAt,
		})
	}
	return items
}
