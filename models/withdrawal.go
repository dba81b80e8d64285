package models

import (
	"time"
)

// GatewayTransactionType distinguishes money-in from money-out
type GatewayTransactionType string

const (
	GatewayTransactionTypeDeposit  GatewayTransactionType = "deposit"
	GatewayTransactionTypeWithdraw GatewayTransactionType = "withdraw"
)

// GatewayTransactionStatus represents the state of a gateway transaction
type GatewayTransactionStatus string

const (
	GatewayStatusPending          GatewayTransactionStatus = "pending"
	GatewayStatusProcessing       GatewayTransactionStatus = "processing"
	GatewayStatusManualProcessing GatewayTransactionStatus = "manual_processing"
	GatewayStatusCompleted        GatewayTransactionStatus = "completed"
	GatewayStatusFailed           GatewayTransactionStatus = "failed"
)

// Outstanding reports whether the transaction still holds escrowed funds
func (s GatewayTransactionStatus) Outstanding() bool {
	switch s {
	case GatewayStatusPending, GatewayStatusProcessing, GatewayStatusManualProcessing:
		return true
	}
	return false
}

// PayoutMethod represents how a withdrawal leaves the system
type PayoutMethod string

const (
	PayoutMethodBankTransfer PayoutMethod = "bank_transfer"
	PayoutMethodMobileMoney  PayoutMethod = "mobile_money"
)

// AccountDetails holds the destination account for a withdrawal.
// Bank transfers carry BankCode/AccountNumber/AccountName; mobile money
// carries Provider/PhoneNumber.
type AccountDetails struct {
	BankCode      string `json:"bank_code,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	AccountName   string `json:"account_name,omitempty"`
	Provider      string `json:"provider,omitempty"`
	PhoneNumber   string `json:"phone_number,omitempty"`
}

// GatewayTransaction represents a deposit or withdrawal tracked against
// the external payment gateway
type GatewayTransaction struct {
	ID             int64                    `db:"id"`
	TransactionRef string                   `db:"transaction_ref"`
	UserID         int64                    `db:"user_id"`
	Amount         int64                    `db:"amount"`
	Type           GatewayTransactionType   `db:"type"`
	Status         GatewayTransactionStatus `db:"status"`
	Method         *PayoutMethod            `db:"method"`
	AccountDetails *AccountDetails          `db:"account_details"`
	ProviderRef    *string                  `db:"provider_ref"`
	CheckoutURL    *string                  `db:"checkout_url"`
	ErrorMessage   *string                  `db:"error_message"`
	CreatedAt      time.Time                `db:"created_at"`
	UpdatedAt      time.Time                `db:"updated_at"`
}
