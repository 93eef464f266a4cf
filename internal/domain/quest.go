package domain

import (
	"time"

	"github.com/google/uuid"
)

// QuestType enumerates the quest categories a user can be assigned.
type QuestType string

const (
	QuestVerifyIssues   QuestType = "verify_issues"
	QuestReportIssues   QuestType = "report_issues"
	QuestHelpFoundItems QuestType = "help_found_items"
	QuestVisitLocations QuestType = "visit_locations"
	QuestDailyLogin     QuestType = "daily_login"
)

// QuestStatus is the quest lifecycle state. Completed and expired are terminal.
type QuestStatus string

const (
	QuestActive    QuestStatus = "active"
	QuestCompleted QuestStatus = "completed"
	QuestExpired   QuestStatus = "expired"
)

// Quest represents a quests row: a time-boxed, progress-tracked task.
type Quest struct {
	ID           uuid.UUID   `json:"id"`
	UserID       uuid.UUID   `json:"user_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Type         QuestType   `json:"type"`
	RewardAmount int64       `json:"reward_amount"`
	Progress     int64       `json:"progress"`
	Required     int64       `json:"required"`
	Status       QuestStatus `json:"status"`
	ExpiresAt    time.Time   `json:"expires_at"`
	CreatedAt    time.Time   `json:"created_at"`
}

// IsTerminal reports whether the quest can accept further progress.
func (q *Quest) IsTerminal() bool {
	return q.Status == QuestCompleted || q.Status == QuestExpired
}

// IsNew flags quests with more than 24h of life left. Display-only; the
// mobile client uses it as a "fresh quest" marker because quests are
// generated with fixed validity windows.
func (q *Quest) IsNew(now time.Time) bool {
	return q.ExpiresAt.Sub(now) > 24*time.Hour
}

// QuestTemplate is a catalog entry the daily generator instantiates from.
type QuestTemplate struct {
	Type         QuestType
	Title        string
	Description  string
	Required     int64
	RewardAmount int64
	Validity     time.Duration
}

// DailyQuestCatalog is the default per-day quest set.
var DailyQuestCatalog = []QuestTemplate{
	{QuestDailyLogin, "Daily Check-in", "Open the app and check in today", 1, 10, 48 * time.Hour},
	{QuestReportIssues, "Neighbourhood Watch", "Report 2 civic issues in your area", 2, 50, 48 * time.Hour},
	{QuestVerifyIssues, "Trusted Eyes", "Verify 3 issues reported by others", 3, 75, 48 * time.Hour},
	{QuestVisitLocations, "District Patrol", "Visit 2 highlighted locations", 2, 40, 48 * time.Hour},
}
