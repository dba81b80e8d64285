package service

import (
	"context"
	"fmt"

	"luckypot/events"
	"luckypot/models"
)

// credit adds amount to the user's balance and appends the matching ledger
// entry. This and debit are the only entry points for balance changes.
func credit(ctx context.Context, uow UnitOfWork, userID, amount int64, txType models.TransactionType, reference *string, gameID *int64) error {
	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return NewNotFoundError("user %d not found", userID)
	}

	if err := uow.UserRepository().AddBalance(ctx, userID, amount); err != nil {
		return fmt.Errorf("failed to credit user %d: %w", userID, err)
	}

	entry := &models.LedgerEntry{
		UserID:    userID,
		Amount:    amount,
		Type:      txType,
		Reference: reference,
		GameID:    gameID,
	}
	if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record credit: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          userID,
		OldBalance:      user.Balance,
		NewBalance:      user.Balance + amount,
		TransactionType: txType,
		ChangeAmount:    amount,
	})

	return nil
}

// debit deducts amount from the user's balance and appends the matching
// ledger entry with a negative amount. The deduction is conditional, so an
// uncovered debit surfaces as an insufficient-funds error without mutating
// anything.
func debit(ctx context.Context, uow UnitOfWork, userID, amount int64, txType models.TransactionType, reference *string, gameID *int64) error {
	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return NewNotFoundError("user %d not found", userID)
	}

	if err := uow.UserRepository().DeductBalance(ctx, userID, amount); err != nil {
		return err
	}

	entry := &models.LedgerEntry{
		UserID:    userID,
		Amount:    -amount,
		Type:      txType,
		Reference: reference,
		GameID:    gameID,
	}
	if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record debit: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          userID,
		OldBalance:      user.Balance,
		NewBalance:      user.Balance - amount,
		TransactionType: txType,
		ChangeAmount:    -amount,
	})

	return nil
}
