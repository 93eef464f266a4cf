package migration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/civicdex/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Importer loads users and point history exported from the legacy backend
// into the current schema. Every write is idempotent, so a crashed import
// can simply be re-run.
type Importer struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewImporter creates a legacy-data importer.
func NewImporter(pool *pgxpool.Pool, logger *slog.Logger) *Importer {
	return &Importer{pool: pool, logger: logger}
}

// DeterministicUUID generates a UUID from a legacy string ID using SHA256.
// The same legacy ID always maps to the same UUID across import runs.
func DeterministicUUID(namespace, legacyID string) uuid.UUID {
	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte(":"))
	h.Write([]byte(legacyID))
	digest := h.Sum(nil)

	var id uuid.UUID
	copy(id[:], digest[:16])
	id[6] = (id[6] & 0x0f) | 0x50 // version 5
	id[8] = (id[8] & 0x3f) | 0x80 // variant RFC4122
	return id
}

// SHA256Hex returns the full SHA256 hex digest of namespace:legacyID.
func SHA256Hex(namespace, legacyID string) string {
	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte(":"))
	h.Write([]byte(legacyID))
	return hex.EncodeToString(h.Sum(nil))
}

// LegacyUser is one row of the legacy user export.
type LegacyUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	Points    int64  `json:"points"`
}

// LegacyPointEntry is one row of the legacy point history export.
type LegacyPointEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Points    int64     `json:"points"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// MapReason translates a legacy reason string to a current reason code.
func MapReason(legacy string) domain.PointReason {
	switch legacy {
	case "report", "issue_report":
		return domain.ReasonIssueReport
	case "verify", "issue_verification":
		return domain.ReasonIssueVerification
	case "quest", "quest_completion":
		return domain.ReasonQuestCompletion
	case "badge", "badge_earned":
		return domain.ReasonBadgeEarned
	default:
		return domain.ReasonOther
	}
}

// ImportUser inserts a legacy user as a profile with its carried-over
// balance and the rank that balance maps to. Re-runs are no-ops.
func (im *Importer) ImportUser(ctx context.Context, u LegacyUser) (uuid.UUID, error) {
	id := DeterministicUUID("user", u.ID)

	_, err := im.pool.Exec(ctx, `
		INSERT INTO user_profiles (id, username, avatar_url, civic_coins, rank)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		id, u.Username, u.AvatarURL, u.Points, string(domain.RankFor(u.Points)))
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert legacy user %s: %w", u.ID, err)
	}

	im.logger.Info("imported legacy user", "legacy_id", u.ID, "user_id", id, "points", u.Points)
	return id, nil
}

// ImportPointEntry inserts one legacy ledger row. The legacy ID becomes the
// source key, so a re-run cannot double-count history.
func (im *Importer) ImportPointEntry(ctx context.Context, e LegacyPointEntry) error {
	userID := DeterministicUUID("user", e.UserID)
	sourceKey := "legacy:" + e.ID

	_, err := im.pool.Exec(ctx, `
		INSERT INTO point_transactions (id, user_id, amount, reason, balance_after, source_key, created_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6)
		ON CONFLICT (user_id, source_key) WHERE source_key IS NOT NULL DO NOTHING`,
		DeterministicUUID("transaction", e.ID), userID, e.Points, string(MapReason(e.Reason)), sourceKey, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert legacy entry %s: %w", e.ID, err)
	}
	return nil
}

// BalanceCheck holds one user's imported balance against their ledger sum.
type BalanceCheck struct {
	LegacyID   string    `json:"legacy_id"`
	UserID     uuid.UUID `json:"user_id"`
	Balance    int64     `json:"balance"`
	LedgerSum  int64     `json:"ledger_sum"`
	Match      bool      `json:"match"`
}

// VerifyBalances compares carried-over balances against imported history.
// Mismatched users should be reconciled before the import is signed off.
func (im *Importer) VerifyBalances(ctx context.Context, legacyIDs []string) ([]BalanceCheck, error) {
	var checks []BalanceCheck

	for _, legacyID := range legacyIDs {
		userID := DeterministicUUID("user", legacyID)

		var balance, sum int64
		err := im.pool.QueryRow(ctx, `
			SELECT p.civic_coins, COALESCE(SUM(t.amount), 0)
			FROM user_profiles p
			LEFT JOIN point_transactions t ON t.user_id = p.id
			WHERE p.id = $1
			GROUP BY p.civic_coins`, userID).Scan(&balance, &sum)
		if err != nil {
			im.logger.Warn("imported user not found", "legacy_id", legacyID, "user_id", userID)
			checks = append(checks, BalanceCheck{LegacyID: legacyID, UserID: userID})
			continue
		}

		checks = append(checks, BalanceCheck{
			LegacyID:  legacyID,
			UserID:    userID,
			Balance:   balance,
			LedgerSum: sum,
			Match:     balance == sum,
		})
	}

	return checks, nil
}
