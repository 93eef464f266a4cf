package quest

import (
	"testing"
	"time"

	"github.com/civicdex/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuest(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	tpl := domain.QuestTemplate{
		Type:         domain.QuestVerifyIssues,
		Title:        "Trusted Eyes",
		Description:  "Verify 3 issues reported by others",
		Required:     3,
		RewardAmount: 75,
		Validity:     48 * time.Hour,
	}

	q := NewQuest(userID, tpl, now)

	require.NotEqual(t, uuid.Nil, q.ID)
	assert.Equal(t, userID, q.UserID)
	assert.Equal(t, domain.QuestVerifyIssues, q.Type)
	assert.Equal(t, domain.QuestActive, q.Status)
	assert.Zero(t, q.Progress)
	assert.Equal(t, int64(3), q.Required)
	assert.Equal(t, int64(75), q.RewardAmount)
	assert.Equal(t, now.Add(48*time.Hour), q.ExpiresAt)
}

func TestNewQuest_ContractHoldsForCatalog(t *testing.T) {
	// Every generated quest must have required > 0, reward >= 0 and an
	// expiry in the future at generation time.
	userID := uuid.New()
	now := time.Now()
	for _, tpl := range domain.DailyQuestCatalog {
		q := NewQuest(userID, tpl, now)
		assert.Positive(t, q.Required, "quest %s", q.Type)
		assert.GreaterOrEqual(t, q.RewardAmount, int64(0), "quest %s", q.Type)
		assert.True(t, q.ExpiresAt.After(now), "quest %s", q.Type)
	}
}

func TestNewQuest_IsNewWindow(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	tpl := domain.QuestTemplate{Type: domain.QuestDailyLogin, Required: 1, Validity: 48 * time.Hour}

	q := NewQuest(userID, tpl, now)

	// Freshly generated with a 48h window: flagged as new until the last
	// 24h of its life.
	assert.True(t, q.IsNew(now))
	assert.True(t, q.IsNew(now.Add(23*time.Hour)))
	assert.False(t, q.IsNew(now.Add(25*time.Hour)))
}
