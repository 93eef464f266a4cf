package repository

import (
	"context"
	"fmt"

	"github.com/civicdex/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type questRepo struct{}

// NewQuestRepository returns a pgx-backed QuestRepository.
func NewQuestRepository() QuestRepository {
	return &questRepo{}
}

const questColumns = `id, user_id, title, description, type, reward_amount, progress, required, status, expires_at, created_at`

func (r *questRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Quest, error) {
	row := db.QueryRow(ctx, `
		SELECT `+questColumns+`
		FROM quests WHERE id = $1`, id)
	return scanQuest(row)
}

func (r *questRepo) ListActiveByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.Quest, error) {
	rows, err := db.Query(ctx, `
		SELECT `+questColumns+`
		FROM quests
		WHERE user_id = $1 AND status = 'active' AND expires_at > now()
		ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query active quests: %w", err)
	}
	defer rows.Close()

	return collectQuests(rows)
}

func (r *questRepo) FindActiveByType(ctx context.Context, db DBTX, userID uuid.UUID, questType domain.QuestType) (*domain.Quest, error) {
	row := db.QueryRow(ctx, `
		SELECT `+questColumns+`
		FROM quests
		WHERE user_id = $1 AND type = $2 AND status = 'active' AND expires_at > now()
		ORDER BY created_at DESC
		LIMIT 1`, userID, string(questType))
	return scanQuest(row)
}

// InsertForDay relies on the partial unique index over
// (user_id, type, created_day) WHERE status = 'active' so that concurrent
// daily generations for the same user cannot duplicate a quest.
func (r *questRepo) InsertForDay(ctx context.Context, db DBTX, quest *domain.Quest) (bool, error) {
	tag, err := db.Exec(ctx, `
		INSERT INTO quests (id, user_id, title, description, type, reward_amount, progress, required, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, type, created_day) WHERE status = 'active' DO NOTHING`,
		quest.ID, quest.UserID, quest.Title, quest.Description, string(quest.Type),
		quest.RewardAmount, quest.Progress, quest.Required, string(quest.Status), quest.ExpiresAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert quest: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ApplyProgress clamps and transitions in one statement. Under READ
// COMMITTED a concurrent updater blocks on the row lock and re-checks the
// status guard afterwards, so two racing increments cannot both observe the
// completion transition.
func (r *questRepo) ApplyProgress(ctx context.Context, db DBTX, questID, userID uuid.UUID, increment int64) (*domain.Quest, error) {
	row := db.QueryRow(ctx, `
		UPDATE quests
		SET progress = LEAST(progress + $2, required),
		    status = CASE WHEN progress + $2 >= required THEN 'completed' ELSE status END
		WHERE id = $1 AND user_id = $3 AND status = 'active' AND expires_at > now()
		RETURNING `+questColumns, questID, increment, userID)
	return scanQuest(row)
}

func (r *questRepo) ExpireOverdue(ctx context.Context, db DBTX) ([]domain.Quest, error) {
	rows, err := db.Query(ctx, `
		UPDATE quests SET status = 'expired'
		WHERE status = 'active' AND expires_at <= now()
		RETURNING `+questColumns)
	if err != nil {
		return nil, fmt.Errorf("expire quests: %w", err)
	}
	defer rows.Close()

	return collectQuests(rows)
}

func scanQuest(row pgx.Row) (*domain.Quest, error) {
	var q domain.Quest
	var questType, status string
	err := row.Scan(&q.ID, &q.UserID, &q.Title, &q.Description, &questType,
		&q.RewardAmount, &q.Progress, &q.Required, &status, &q.ExpiresAt, &q.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan quest: %w", err)
	}
	q.Type = domain.QuestType(questType)
	q.Status = domain.QuestStatus(status)
	return &q, nil
}

func collectQuests(rows pgx.Rows) ([]domain.Quest, error) {
	var quests []domain.Quest
	for rows.Next() {
		var q domain.Quest
		var questType, status string
		err := rows.Scan(&q.ID, &q.UserID, &q.Title, &q.Description, &questType,
			&q.RewardAmount, &q.Progress, &q.Required, &status, &q.ExpiresAt, &q.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan quest row: %w", err)
		}
		q.Type = domain.QuestType(questType)
		q.Status = domain.QuestStatus(status)
		quests = append(quests, q)
	}
	return quests, rows.Err()
}
