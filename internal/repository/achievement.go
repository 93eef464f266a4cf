package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/civicdex/platform/internal/domain"
	"github.com/google/uuid"
)

type achievementRepo struct{}

// NewAchievementRepository returns a pgx-backed AchievementRepository.
func NewAchievementRepository() AchievementRepository {
	return &achievementRepo{}
}

func (r *achievementRepo) ListCatalog(ctx context.Context, db DBTX) ([]domain.Achievement, error) {
	rows, err := db.Query(ctx, `
		SELECT id, name, description, icon, category, required_coins
		FROM achievements
		ORDER BY required_coins ASC`)
	if err != nil {
		return nil, fmt.Errorf("query achievement catalog: %w", err)
	}
	defer rows.Close()

	var catalog []domain.Achievement
	for rows.Next() {
		var a domain.Achievement
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Icon, &a.Category, &a.RequiredCoins); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		catalog = append(catalog, a)
	}
	return catalog, rows.Err()
}

func (r *achievementRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.UserAchievement, error) {
	rows, err := db.Query(ctx, `
		SELECT user_id, achievement_id, unlocked, unlocked_at, progress, required
		FROM user_achievements
		WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("query user achievements: %w", err)
	}
	defer rows.Close()

	var uas []domain.UserAchievement
	for rows.Next() {
		var ua domain.UserAchievement
		if err := rows.Scan(&ua.UserID, &ua.AchievementID, &ua.Unlocked, &ua.UnlockedAt, &ua.Progress, &ua.Required); err != nil {
			return nil, fmt.Errorf("scan user achievement: %w", err)
		}
		uas = append(uas, ua)
	}
	return uas, rows.Err()
}

// Unlock uses a guarded upsert so the unlock is monotonic under concurrent
// evaluations: an already-unlocked row is never touched, unlocked_at is set
// at most once, and the row is written with progress/required in the same
// statement (no partially-unlocked state).
func (r *achievementRepo) Unlock(ctx context.Context, db DBTX, userID, achievementID uuid.UUID, progress, required int64, at time.Time) (bool, error) {
	tag, err := db.Exec(ctx, `
		INSERT INTO user_achievements (user_id, achievement_id, unlocked, unlocked_at, progress, required)
		VALUES ($1, $2, true, $3, $4, $5)
		ON CONFLICT (user_id, achievement_id) DO UPDATE
		SET unlocked = true, unlocked_at = EXCLUDED.unlocked_at,
		    progress = EXCLUDED.progress, required = EXCLUDED.required
		WHERE user_achievements.unlocked = false`,
		userID, achievementID, at, progress, required,
	)
	if err != nil {
		return false, fmt.Errorf("unlock achievement: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
