package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a domain event published through the outbox.
type EventType string

const (
	EventProfileCreated      EventType = "civic.profile.created"
	EventBalanceChanged      EventType = "civic.wallet.balance.changed"
	EventAchievementUnlocked EventType = "civic.achievement.unlocked"
	EventQuestGenerated      EventType = "civic.quest.generated"
	EventQuestCompleted      EventType = "civic.quest.completed"
	EventQuestExpired        EventType = "civic.quest.expired"
	EventRankChanged         EventType = "civic.profile.rank.changed"
)

// AggregateType identifies the aggregate an event belongs to.
type AggregateType string

const (
	AggregateProfile     AggregateType = "profile"
	AggregateWallet      AggregateType = "wallet"
	AggregateQuest       AggregateType = "quest"
	AggregateAchievement AggregateType = "achievement"
)

// OutboxDraft is an event staged in the outbox table, written in the same
// database transaction as the state change it describes.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// Topic maps an aggregate type to its Kafka topic.
func (d OutboxDraft) Topic() string {
	return "civic." + string(d.AggregateType)
}
