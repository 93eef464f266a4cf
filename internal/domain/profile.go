package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile represents a user_profiles row.
type UserProfile struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	TrainerLevel int       `json:"trainer_level"`
	CivicCoins   int64     `json:"civic_coins"`
	TrustScore   int       `json:"trust_score"`
	Rank         Rank      `json:"rank"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Badge is the profile view of a catalog achievement, locked or unlocked.
type Badge struct {
	AchievementID uuid.UUID  `json:"achievement_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Icon          string     `json:"icon"`
	Category      string     `json:"category"`
	Unlocked      bool       `json:"unlocked"`
	UnlockedAt    *time.Time `json:"unlocked_at,omitempty"`
	Progress      int64      `json:"progress"`
	Required      int64      `json:"required"`
}

// ActivityItem is one entry in the profile's recent activity feed.
type ActivityItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Points      int64     `json:"points"`
	Timestamp   time.Time `json:"timestamp"`
}

// ProfileView is the composed user-facing profile snapshot.
type ProfileView struct {
	UserProfile
	ProgressToNextRank int            `json:"progress_to_next_rank"`
	NextRank           Rank           `json:"next_rank,omitempty"`
	Badges             []Badge        `json:"badges"`
	RecentActivity     []ActivityItem `json:"recent_activity"`
}
