package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NewBalanceChangedEvent creates the wallet event emitted for every ledger entry.
// The achievement engine consumes it to re-evaluate unlocks.
func NewBalanceChangedEvent(tx *PointTransaction) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"user_id":       tx.UserID.String(),
		"amount":        tx.Amount,
		"reason":        tx.Reason,
		"balance_after": tx.BalanceAfter,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateWallet,
		AggregateID:   tx.UserID.String(),
		EventType:     EventBalanceChanged,
		PartitionKey:  tx.UserID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewProfileCreatedEvent creates a profile lifecycle event.
func NewProfileCreatedEvent(profile *UserProfile) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{
		"user_id":  profile.ID.String(),
		"username": profile.Username,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateProfile,
		AggregateID:   profile.ID.String(),
		EventType:     EventProfileCreated,
		PartitionKey:  profile.ID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewAchievementUnlockedEvent records a one-way badge unlock.
func NewAchievementUnlockedEvent(userID, achievementID uuid.UUID, requiredCoins int64) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"user_id":        userID.String(),
		"achievement_id": achievementID.String(),
		"required_coins": requiredCoins,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateAchievement,
		AggregateID:   achievementID.String(),
		EventType:     EventAchievementUnlocked,
		PartitionKey:  userID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewQuestCompletedEvent records a quest reaching its target.
func NewQuestCompletedEvent(quest *Quest) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"user_id":       quest.UserID.String(),
		"quest_id":      quest.ID.String(),
		"type":          quest.Type,
		"reward_amount": quest.RewardAmount,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateQuest,
		AggregateID:   quest.ID.String(),
		EventType:     EventQuestCompleted,
		PartitionKey:  quest.UserID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewQuestExpiredEvent records a quest timing out before completion.
func NewQuestExpiredEvent(quest *Quest) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"user_id":  quest.UserID.String(),
		"quest_id": quest.ID.String(),
		"type":     quest.Type,
		"progress": quest.Progress,
		"required": quest.Required,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateQuest,
		AggregateID:   quest.ID.String(),
		EventType:     EventQuestExpired,
		PartitionKey:  quest.UserID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewRankChangedEvent records a rank transition after a balance change.
func NewRankChangedEvent(userID uuid.UUID, from, to Rank) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{
		"user_id": userID.String(),
		"from":    string(from),
		"to":      string(to),
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateProfile,
		AggregateID:   userID.String(),
		EventType:     EventRankChanged,
		PartitionKey:  userID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
