package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/civicdex/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type profileRepo struct{}

// NewProfileRepository returns a pgx-backed ProfileRepository.
func NewProfileRepository() ProfileRepository {
	return &profileRepo{}
}

const profileColumns = `id, username, avatar_url, trainer_level, civic_coins, trust_score, rank, created_at, updated_at`

func (r *profileRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.UserProfile, error) {
	row := db.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM user_profiles WHERE id = $1`, id)
	return scanProfile(row)
}

// CreateIfAbsent is race-safe: two concurrent sign-ups for the same user ID
// resolve to a single row, and only one caller observes created=true.
func (r *profileRepo) CreateIfAbsent(ctx context.Context, db DBTX, profile *domain.UserProfile) (bool, error) {
	tag, err := db.Exec(ctx, `
		INSERT INTO user_profiles (id, username, avatar_url, trainer_level, civic_coins, trust_score, rank)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`,
		profile.ID, profile.Username, profile.AvatarURL,
		profile.TrainerLevel, profile.CivicCoins, profile.TrustScore, string(profile.Rank),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, domain.ErrConflict(fmt.Sprintf("username %q is already taken", profile.Username))
		}
		return false, fmt.Errorf("insert profile: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *profileRepo) IncrementCoins(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta int64) (*domain.UserProfile, error) {
	row := tx.QueryRow(ctx, `
		UPDATE user_profiles
		SET civic_coins = civic_coins + $2, updated_at = now()
		WHERE id = $1
		RETURNING `+profileColumns, userID, delta)
	return scanProfile(row)
}

func (r *profileRepo) UpdateRank(ctx context.Context, db DBTX, userID uuid.UUID, rank domain.Rank) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE user_profiles SET rank = $2, updated_at = now()
		WHERE id = $1 AND rank <> $2`, userID, string(rank))
	if err != nil {
		return false, fmt.Errorf("update rank: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *profileRepo) UpdateUsername(ctx context.Context, db DBTX, userID uuid.UUID, username string) error {
	tag, err := db.Exec(ctx, `
		UPDATE user_profiles SET username = $2, updated_at = now()
		WHERE id = $1`, userID, username)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict(fmt.Sprintf("username %q is already taken", username))
		}
		return fmt.Errorf("update username: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("profile", userID.String())
	}
	return nil
}

func (r *profileRepo) ListIDs(ctx context.Context, db DBTX) ([]uuid.UUID, error) {
	rows, err := db.Query(ctx, `SELECT id FROM user_profiles ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query profile ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan profile id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanProfile(row pgx.Row) (*domain.UserProfile, error) {
	var p domain.UserProfile
	var rank string
	err := row.Scan(&p.ID, &p.Username, &p.AvatarURL, &p.TrainerLevel,
		&p.CivicCoins, &p.TrustScore, &rank, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	p.Rank = domain.Rank(rank)
	return &p, nil
}

// isUniqueViolation detects Postgres error 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
