package profile

import (
	"testing"
	"time"

	"github.com/civicdex/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBadges(t *testing.T) {
	unlockedID := uuid.New()
	lockedID := uuid.New()
	at := time.Now()

	catalog := []domain.Achievement{
		{ID: unlockedID, Name: "First Steps", RequiredCoins: 0, Icon: "steps", Category: "starter"},
		{ID: lockedID, Name: "Issue Scout", RequiredCoins: 500, Icon: "scout", Category: "rank"},
	}
	unlocks := []domain.UserAchievement{
		{AchievementID: unlockedID, Unlocked: true, UnlockedAt: &at, Progress: 120, Required: 0},
	}

	badges := BuildBadges(catalog, unlocks)
	require.Len(t, badges, 2)

	assert.True(t, badges[0].Unlocked)
	assert.Equal(t, &at, badges[0].UnlockedAt)
	assert.Equal(t, int64(120), badges[0].Progress)

	// Locked catalog entries still appear, with the threshold carried over.
	assert.False(t, badges[1].Unlocked)
	assert.Nil(t, badges[1].UnlockedAt)
	assert.Equal(t, int64(500), badges[1].Required)
}

func TestBuildBadges_EmptyInputs(t *testing.T) {
	assert.Empty(t, BuildBadges(nil, nil))
	assert.Len(t, BuildBadges([]domain.Achievement{{ID: uuid.New()}}, nil), 1)
}

func TestBuildActivity(t *testing.T) {
	now := time.Now()
	txs := []domain.PointTransaction{
		{Amount: 50, Reason: domain.ReasonIssueReport, CreatedAt: now},
		{Amount: 25, Reason: domain.ReasonIssueVerification, CreatedAt: now.Add(-time.Hour)},
		{Amount: 10, Reason: "legacy_reason", CreatedAt: now.Add(-2 * time.Hour)},
	}

	items := BuildActivity(txs)
	require.Len(t, items, 3)

	assert.Equal(t, "Issue Reported", items[0].Title)
	assert.Equal(t, "Earned 50 CivicCoins", items[0].Description)
	assert.Equal(t, int64(50), items[0].Points)
	assert.Equal(t, now, items[0].Timestamp)

	// Unknown reason codes fall back to the raw code rather than erroring.
	assert.Equal(t, "legacy_reason", items[2].Title)
}

func TestBuildActivity_Empty(t *testing.T) {
	assert.Empty(t, BuildActivity(nil))
}
