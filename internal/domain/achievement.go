package domain

import (
	"time"

	"github.com/google/uuid"
)

// Achievement is a global catalog entry. Read-only reference data.
type Achievement struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Icon          string    `json:"icon"`
	Category      string    `json:"category"`
	RequiredCoins int64     `json:"required_coins"`
}

// UserAchievement tracks one user's state against a catalog entry.
// Once Unlocked is true it never reverts; UnlockedAt is set exactly once.
type UserAchievement struct {
	UserID        uuid.UUID  `json:"user_id"`
	AchievementID uuid.UUID  `json:"achievement_id"`
	Unlocked      bool       `json:"unlocked"`
	UnlockedAt    *time.Time `json:"unlocked_at,omitempty"`
	Progress      int64      `json:"progress"`
	Required      int64      `json:"required"`
}
