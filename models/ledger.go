package models

import (
	"time"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeGameCreation      TransactionType = "game_creation"
	TransactionTypeGameJoin          TransactionType = "game_join"
	TransactionTypeGameRefund        TransactionType = "game_refund"
	TransactionTypeGameWin           TransactionType = "game_win"
	TransactionTypeDeposit           TransactionType = "deposit"
	TransactionTypeWithdrawalRequest TransactionType = "withdrawal_request"
	TransactionTypeWithdrawalRefund  TransactionType = "withdrawal_refund"
)

// LedgerEntry represents a single append-only balance mutation.
// Amount is signed: negative for debits, positive for credits.
type LedgerEntry struct {
	ID        int64           `db:"id"`
	UserID    int64           `db:"user_id"`
	Amount    int64           `db:"amount"`
	Type      TransactionType `db:"type"`
	Reference *string         `db:"reference"`
	GameID    *int64          `db:"game_id"`
	CreatedAt time.Time       `db:"created_at"`
}
