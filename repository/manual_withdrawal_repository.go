package repository

import (
	"context"
	"fmt"

	"luckypot/database"
	"luckypot/models"
	"luckypot/service"

	"github.com/jackc/pgx/v5"
)

// ManualWithdrawalRepository implements the service.ManualWithdrawalRepository interface
type ManualWithdrawalRepository struct {
	q queryable
}

// NewManualWithdrawalRepository creates a new manual queue repository
func NewManualWithdrawalRepository(db *database.DB) *ManualWithdrawalRepository {
	return &ManualWithdrawalRepository{q: db.Pool}
}

// newManualWithdrawalRepositoryWithTx creates a new manual queue repository with a transaction
func newManualWithdrawalRepositoryWithTx(tx queryable) *ManualWithdrawalRepository {
	return &ManualWithdrawalRepository{q: tx}
}

// Enqueue adds a withdrawal to the manual review queue
func (r *ManualWithdrawalRepository) Enqueue(ctx context.Context, mw *models.ManualWithdrawal) error {
	query := `
		INSERT INTO manual_withdrawals (transaction_ref, user_id, amount, priority, status, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, queued_at
	`

	if mw.Status == "" {
		mw.Status = models.ManualStatusPending
	}

	err := r.q.QueryRow(ctx, query,
		mw.TransactionRef,
		mw.UserID,
		mw.Amount,
		mw.Priority,
		mw.Status,
		mw.Details,
	).Scan(&mw.ID, &mw.QueuedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return service.NewConflictError("withdrawal %q is already queued", mw.TransactionRef)
		}
		return fmt.Errorf("failed to enqueue withdrawal %q: %w", mw.TransactionRef, err)
	}

	return nil
}

// GetByRef retrieves a queued withdrawal by reference
func (r *ManualWithdrawalRepository) GetByRef(ctx context.Context, transactionRef string) (*models.ManualWithdrawal, error) {
	query := `
		SELECT id, transaction_ref, user_id, amount, priority, status, details, notes, queued_at, processed_at
		FROM manual_withdrawals
		WHERE transaction_ref = $1
	`

	var mw models.ManualWithdrawal
	err := r.q.QueryRow(ctx, query, transactionRef).Scan(
		&mw.ID,
		&mw.TransactionRef,
		&mw.UserID,
		&mw.Amount,
		&mw.Priority,
		&mw.Status,
		&mw.Details,
		&mw.Notes,
		&mw.QueuedAt,
		&mw.ProcessedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get queued withdrawal %q: %w", transactionRef, err)
	}

	return &mw, nil
}

// ListActive returns pending queued withdrawals ordered by priority then age
func (r *ManualWithdrawalRepository) ListActive(ctx context.Context) ([]*models.QueueEntry, error) {
	query := `
		SELECT
			mw.id, mw.transaction_ref, mw.user_id, mw.amount, mw.priority,
			mw.status, mw.details, mw.notes, mw.queued_at, mw.processed_at,
			u.username
		FROM manual_withdrawals mw
		JOIN users u ON u.id = mw.user_id
		WHERE mw.status = 'pending'
		ORDER BY
			CASE mw.priority
				WHEN 'urgent' THEN 4
				WHEN 'high' THEN 3
				WHEN 'normal' THEN 2
				ELSE 1
			END DESC,
			mw.queued_at ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list manual withdrawal queue: %w", err)
	}
	defer rows.Close()

	var entries []*models.QueueEntry
	for rows.Next() {
		var entry models.QueueEntry
		err := rows.Scan(
			&entry.ID,
			&entry.TransactionRef,
			&entry.UserID,
			&entry.Amount,
			&entry.Priority,
			&entry.Status,
			&entry.Details,
			&entry.Notes,
			&entry.QueuedAt,
			&entry.ProcessedAt,
			&entry.Username,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate queue entries: %w", err)
	}

	return entries, nil
}

// Stats aggregates the pending queue for the admin dashboard
func (r *ManualWithdrawalRepository) Stats(ctx context.Context) (*models.QueueStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_pending,
			COALESCE(SUM(amount), 0) AS total_amount,
			COUNT(*) FILTER (WHERE priority = 'high') AS high_count,
			COUNT(*) FILTER (WHERE priority = 'urgent') AS urgent_count
		FROM manual_withdrawals
		WHERE status = 'pending'
	`

	var stats models.QueueStats
	err := r.q.QueryRow(ctx, query).Scan(
		&stats.TotalPending,
		&stats.TotalAmount,
		&stats.HighCount,
		&stats.UrgentCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue stats: %w", err)
	}

	return &stats, nil
}

// Resolve marks a pending queue entry as approved or rejected, keeping the
// row as an audit record of the operator's decision
func (r *ManualWithdrawalRepository) Resolve(ctx context.Context, transactionRef, status string, notes *string) error {
	query := `
		UPDATE manual_withdrawals
		SET status = $2, notes = $3, processed_at = NOW()
		WHERE transaction_ref = $1 AND status = 'pending'
	`

	result, err := r.q.Exec(ctx, query, transactionRef, status, notes)
	if err != nil {
		return fmt.Errorf("failed to resolve queued withdrawal %q: %w", transactionRef, err)
	}

	if result.RowsAffected() == 0 {
		return service.NewNotFoundError("pending queued withdrawal %q not found", transactionRef)
	}

	return nil
}
