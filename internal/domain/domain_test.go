package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Validator Tests ---

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid simple", "ash_ketchum", false},
		{"valid with dot", "misty.water", false},
		{"valid minimum length", "abc", false},
		{"valid maximum length", "a2345678901234567890", false},
		{"empty", "", true},
		{"too short", "ab", true},
		{"too long", "a23456789012345678901", true},
		{"spaces", "ash ketchum", true},
		{"dash not allowed", "ash-ketchum", true},
		{"unicode not allowed", "trainér", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateAwardAmount(t *testing.T) {
	require.NoError(t, ValidateAwardAmount(25))
	// Negative amounts are corrections and stay valid.
	require.NoError(t, ValidateAwardAmount(-25))
	require.Error(t, ValidateAwardAmount(0))
}

func TestValidateReason(t *testing.T) {
	for _, r := range []PointReason{
		ReasonIssueReport, ReasonIssueVerification, ReasonQuestCompletion,
		ReasonBadgeEarned, ReasonRankUp, ReasonOther,
	} {
		require.NoError(t, ValidateReason(r))
	}
	require.Error(t, ValidateReason("bribery"))
}

func TestValidateQuestIncrement(t *testing.T) {
	require.NoError(t, ValidateQuestIncrement(1))
	require.Error(t, ValidateQuestIncrement(0))
	require.Error(t, ValidateQuestIncrement(-1))
}

// --- AppError Tests ---

func TestAppError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := ErrNotFound("quest", "abc-123")
		assert.Equal(t, "NOT_FOUND: quest abc-123 not found", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := ErrUnavailable("store unreachable", cause)
		assert.Contains(t, err.Error(), "UNAVAILABLE")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrInternal("wrapped", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestErrorFactories(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"ErrNotFound", ErrNotFound("profile", "123"), "NOT_FOUND", 404},
		{"ErrConflict", ErrConflict("username taken"), "CONFLICT", 409},
		{"ErrValidation", ErrValidation("bad input"), "VALIDATION_ERROR", 400},
		{"ErrUnauthorized", ErrUnauthorized("no token"), "UNAUTHORIZED", 401},
		{"ErrUnavailable", ErrUnavailable("store down", nil), "UNAVAILABLE", 503},
		{"ErrInternal", ErrInternal("oops", nil), "INTERNAL_ERROR", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.Status)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

// --- Quest Tests ---

func TestQuest_IsTerminal(t *testing.T) {
	assert.False(t, (&Quest{Status: QuestActive}).IsTerminal())
	assert.True(t, (&Quest{Status: QuestCompleted}).IsTerminal())
	assert.True(t, (&Quest{Status: QuestExpired}).IsTerminal())
}

func TestQuest_IsNew(t *testing.T) {
	now := time.Now()

	t.Run("more than 24h left", func(t *testing.T) {
		q := &Quest{ExpiresAt: now.Add(36 * time.Hour)}
		assert.True(t, q.IsNew(now))
	})

	t.Run("exactly 24h left", func(t *testing.T) {
		q := &Quest{ExpiresAt: now.Add(24 * time.Hour)}
		assert.False(t, q.IsNew(now))
	})

	t.Run("under 24h left", func(t *testing.T) {
		q := &Quest{ExpiresAt: now.Add(6 * time.Hour)}
		assert.False(t, q.IsNew(now))
	})

	t.Run("already expired", func(t *testing.T) {
		q := &Quest{ExpiresAt: now.Add(-1 * time.Hour)}
		assert.False(t, q.IsNew(now))
	})
}

func TestDailyQuestCatalog(t *testing.T) {
	seen := map[QuestType]bool{}
	for _, tpl := range DailyQuestCatalog {
		assert.Positive(t, tpl.Required, "template %s", tpl.Type)
		assert.GreaterOrEqual(t, tpl.RewardAmount, int64(0), "template %s", tpl.Type)
		assert.Positive(t, tpl.Validity, "template %s", tpl.Type)
		assert.False(t, seen[tpl.Type], "duplicate template type %s", tpl.Type)
		seen[tpl.Type] = true
	}
	assert.True(t, seen[QuestDailyLogin], "catalog must include the daily check-in")
}

// --- Event Factory Tests ---

func TestNewBalanceChangedEvent(t *testing.T) {
	userID := uuid.New()
	tx := &PointTransaction{
		ID:           uuid.New(),
		UserID:       userID,
		Amount:       50,
		Reason:       ReasonIssueReport,
		BalanceAfter: 150,
	}

	event := NewBalanceChangedEvent(tx)

	assert.NotEqual(t, uuid.Nil, event.EventID)
	assert.Equal(t, AggregateWallet, event.AggregateType)
	assert.Equal(t, userID.String(), event.AggregateID)
	assert.Equal(t, EventBalanceChanged, event.EventType)
	assert.Equal(t, userID.String(), event.PartitionKey)
	assert.Equal(t, "civic.wallet", event.Topic())
	assert.False(t, event.OccurredAt.IsZero())

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, float64(50), payload["amount"])
	assert.Equal(t, float64(150), payload["balance_after"])
}

func TestNewAchievementUnlockedEvent(t *testing.T) {
	userID := uuid.New()
	achievementID := uuid.New()

	event := NewAchievementUnlockedEvent(userID, achievementID, 500)

	assert.Equal(t, AggregateAchievement, event.AggregateType)
	assert.Equal(t, achievementID.String(), event.AggregateID)
	assert.Equal(t, userID.String(), event.PartitionKey)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, float64(500), payload["required_coins"])
}

func TestNewQuestCompletedEvent(t *testing.T) {
	quest := &Quest{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		Type:         QuestVerifyIssues,
		RewardAmount: 75,
	}

	event := NewQuestCompletedEvent(quest)

	assert.Equal(t, EventQuestCompleted, event.EventType)
	assert.Equal(t, quest.ID.String(), event.AggregateID)
	assert.Equal(t, quest.UserID.String(), event.PartitionKey)
}

func TestNewRankChangedEvent(t *testing.T) {
	userID := uuid.New()
	event := NewRankChangedEvent(userID, RankNoviceTrainer, RankIssueScout)

	assert.Equal(t, EventRankChanged, event.EventType)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, string(RankNoviceTrainer), payload["from"])
	assert.Equal(t, string(RankIssueScout), payload["to"])
}
