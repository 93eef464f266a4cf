package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PointReason enumerates the known point-earning reason codes.
type PointReason string

const (
	ReasonIssueReport       PointReason = "issue_report"
	ReasonIssueVerification PointReason = "issue_verification"
	ReasonQuestCompletion   PointReason = "quest_completion"
	ReasonBadgeEarned       PointReason = "badge_earned"
	ReasonRankUp            PointReason = "rank_up"
	ReasonOther             PointReason = "other"
)

// ReasonLabels maps reason codes to user-facing activity titles.
var ReasonLabels = map[PointReason]string{
	ReasonIssueReport:       "Issue Reported",
	ReasonIssueVerification: "Issue Verified",
	ReasonQuestCompletion:   "Quest Completed",
	ReasonBadgeEarned:       "Badge Earned",
	ReasonRankUp:            "Rank Up",
	ReasonOther:             "CivicCoins Earned",
}

// KnownReason reports whether the reason code is part of the closed set.
func KnownReason(r PointReason) bool {
	_, ok := ReasonLabels[r]
	return ok
}

// PointTransaction represents a point_transactions row (append-only ledger entry).
type PointTransaction struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Amount       int64           `json:"amount"`
	Reason       PointReason     `json:"reason"`
	BalanceAfter int64           `json:"balance_after"`
	SourceKey    *string         `json:"source_key,omitempty"`
	Metadata     json.RawMessage `json:"metadata"`
	CreatedAt    time.Time       `json:"created_at"`
}

// AwardParams is the input to the atomic Award operation.
type AwardParams struct {
	UserID    uuid.UUID
	Amount    int64
	Reason    PointReason
	SourceKey string // dedup key for the triggering event; empty skips the check
	Metadata  json.RawMessage
}

// AwardResult is returned from CoinLedger awards.
type AwardResult struct {
	Transaction *PointTransaction
	Profile     *UserProfile
	Events      []OutboxDraft
	Idempotent  bool // true if a duplicate source key returned the existing entry
}
