package repository

import (
	"context"
	"fmt"

	"luckypot/database"
	"luckypot/models"
	"luckypot/service"

	"github.com/jackc/pgx/v5"
)

// WithdrawalRepository implements the service.WithdrawalRepository interface
// over the gateway_transactions table
type WithdrawalRepository struct {
	q queryable
}

// NewWithdrawalRepository creates a new gateway transaction repository
func NewWithdrawalRepository(db *database.DB) *WithdrawalRepository {
	return &WithdrawalRepository{q: db.Pool}
}

// newWithdrawalRepositoryWithTx creates a new gateway transaction repository with a transaction
func newWithdrawalRepositoryWithTx(tx queryable) *WithdrawalRepository {
	return &WithdrawalRepository{q: tx}
}

const gatewayTransactionColumns = `id, transaction_ref, user_id, amount, type, status,
	method, account_details, provider_ref, checkout_url, error_message, created_at, updated_at`

func scanGatewayTransaction(row pgx.Row) (*models.GatewayTransaction, error) {
	var gt models.GatewayTransaction
	err := row.Scan(
		&gt.ID,
		&gt.TransactionRef,
		&gt.UserID,
		&gt.Amount,
		&gt.Type,
		&gt.Status,
		&gt.Method,
		&gt.AccountDetails,
		&gt.ProviderRef,
		&gt.CheckoutURL,
		&gt.ErrorMessage,
		&gt.CreatedAt,
		&gt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &gt, nil
}

// Create persists a new gateway transaction
func (r *WithdrawalRepository) Create(ctx context.Context, gt *models.GatewayTransaction) error {
	query := `
		INSERT INTO gateway_transactions
			(transaction_ref, user_id, amount, type, status, method, account_details, checkout_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	if gt.Status == "" {
		gt.Status = models.GatewayStatusPending
	}

	err := r.q.QueryRow(ctx, query,
		gt.TransactionRef,
		gt.UserID,
		gt.Amount,
		gt.Type,
		gt.Status,
		gt.Method,
		gt.AccountDetails,
		gt.CheckoutURL,
	).Scan(&gt.ID, &gt.CreatedAt, &gt.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			if constraintName(err) == "idx_gateway_transactions_outstanding_withdrawal" {
				return service.NewConflictError("user %d already has an outstanding withdrawal", gt.UserID)
			}
			return service.NewConflictError("transaction reference %q already exists", gt.TransactionRef)
		}
		return fmt.Errorf("failed to create gateway transaction %q: %w", gt.TransactionRef, err)
	}

	return nil
}

// GetByRef retrieves a gateway transaction by reference
func (r *WithdrawalRepository) GetByRef(ctx context.Context, transactionRef string) (*models.GatewayTransaction, error) {
	query := `SELECT ` + gatewayTransactionColumns + ` FROM gateway_transactions WHERE transaction_ref = $1`

	gt, err := scanGatewayTransaction(r.q.QueryRow(ctx, query, transactionRef))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gateway transaction %q: %w", transactionRef, err)
	}

	return gt, nil
}

// GetByRefForUpdate retrieves a gateway transaction by reference, locking the
// row until the enclosing transaction ends
func (r *WithdrawalRepository) GetByRefForUpdate(ctx context.Context, transactionRef string) (*models.GatewayTransaction, error) {
	query := `SELECT ` + gatewayTransactionColumns + ` FROM gateway_transactions WHERE transaction_ref = $1 FOR UPDATE`

	gt, err := scanGatewayTransaction(r.q.QueryRow(ctx, query, transactionRef))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gateway transaction %q for update: %w", transactionRef, err)
	}

	return gt, nil
}

// GetOutstandingWithdrawal returns the user's unfinished withdrawal, if any
func (r *WithdrawalRepository) GetOutstandingWithdrawal(ctx context.Context, userID int64) (*models.GatewayTransaction, error) {
	query := `
		SELECT ` + gatewayTransactionColumns + `
		FROM gateway_transactions
		WHERE user_id = $1
		  AND type = 'withdraw'
		  AND status IN ('pending', 'processing', 'manual_processing')
	`

	gt, err := scanGatewayTransaction(r.q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outstanding withdrawal for user %d: %w", userID, err)
	}

	return gt, nil
}

// Update persists the mutable fields of a gateway transaction
func (r *WithdrawalRepository) Update(ctx context.Context, gt *models.GatewayTransaction) error {
	query := `
		UPDATE gateway_transactions
		SET status = $1, provider_ref = $2, checkout_url = $3, error_message = $4, updated_at = NOW()
		WHERE transaction_ref = $5
	`

	result, err := r.q.Exec(ctx, query,
		gt.Status,
		gt.ProviderRef,
		gt.CheckoutURL,
		gt.ErrorMessage,
		gt.TransactionRef,
	)
	if err != nil {
		return fmt.Errorf("failed to update gateway transaction %q: %w", gt.TransactionRef, err)
	}

	if result.RowsAffected() == 0 {
		return service.NewNotFoundError("gateway transaction %q not found", gt.TransactionRef)
	}

	return nil
}
