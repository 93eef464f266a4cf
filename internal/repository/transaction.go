package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/civicdex/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type transactionRepo struct{}

// NewTransactionRepository returns a pgx-backed TransactionRepository.
func NewTransactionRepository() TransactionRepository {
	return &transactionRepo{}
}

const txColumns = `id, user_id, amount, reason, balance_after, source_key, metadata, created_at`

func (r *transactionRepo) FindBySourceKey(ctx context.Context, db DBTX, userID uuid.UUID, sourceKey string) (*domain.PointTransaction, error) {
	row := db.QueryRow(ctx, `
		SELECT `+txColumns+`
		FROM point_transactions
		WHERE user_id = $1 AND source_key = $2`, userID, sourceKey)
	return scanTransaction(row)
}

func (r *transactionRepo) Insert(ctx context.Context, db DBTX, params domain.AwardParams, balanceAfter int64) (*domain.PointTransaction, error) {
	meta := params.Metadata
	if meta == nil {
		meta = json.RawMessage(`{}`)
	}

	var sourceKey *string
	if params.SourceKey != "" {
		sourceKey = &params.SourceKey
	}

	row := db.QueryRow(ctx, `
		INSERT INTO point_transactions (user_id, amount, reason, balance_after, source_key, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+txColumns,
		params.UserID, params.Amount, string(params.Reason), balanceAfter, sourceKey, meta,
	)
	entry, err := scanTransaction(row)
	if err != nil {
		// Two sessions can both pass the pre-insert source-key lookup;
		// the loser lands on the partial unique index.
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict(fmt.Sprintf("award with source key %q already recorded", params.SourceKey))
		}
		return nil, err
	}
	return entry, nil
}

func (r *transactionRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.PointTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := db.Query(ctx, `
		SELECT `+txColumns+`
		FROM point_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.PointTransaction
	for rows.Next() {
		var tx domain.PointTransaction
		var reason string
		err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &reason,
			&tx.BalanceAfter, &tx.SourceKey, &tx.Metadata, &tx.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		tx.Reason = domain.PointReason(reason)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *transactionRepo) SumPositiveSince(ctx context.Context, db DBTX, userID uuid.UUID, since time.Time) (int64, error) {
	var sum int64
	err := db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM point_transactions
		WHERE user_id = $1 AND amount > 0 AND created_at >= $2`, userID, since).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum earned since: %w", err)
	}
	return sum, nil
}

func (r *transactionRepo) SumByUser(ctx context.Context, db DBTX, userID uuid.UUID) (int64, error) {
	var sum int64
	err := db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM point_transactions
		WHERE user_id = $1`, userID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return sum, nil
}

func scanTransaction(row pgx.Row) (*domain.PointTransaction, error) {
	var tx domain.PointTransaction
	var reason string
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Amount, &reason,
		&tx.BalanceAfter, &tx.SourceKey, &tx.Metadata, &tx.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	tx.Reason = domain.PointReason(reason)
	return &tx, nil
}
