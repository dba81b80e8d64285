// Package gateway talks to the external payment provider for deposit
// checkouts, payment verification and outbound transfers.
package gateway

import (
	"context"
)

// PaymentRequest initializes a hosted checkout for a deposit
type PaymentRequest struct {
	TxRef       string
	Amount      int64 // cents
	Email       string
	FirstName   string
	LastName    string
	CallbackURL string
	ReturnURL   string
}

// PaymentInit is the result of a successful checkout initialization
type PaymentInit struct {
	CheckoutURL string
}

// VerifyResult is the provider's view of a transaction
type VerifyResult struct {
	TxRef  string
	Status string // "success", "failed" or "pending"
	Amount int64  // cents
}

// Succeeded reports whether the provider settled the payment
func (v *VerifyResult) Succeeded() bool {
	return v.Status == "success"
}

// TransferRequest submits an outbound transfer to a bank account or
// mobile money wallet
type TransferRequest struct {
	Reference     string
	Amount        int64 // cents
	AccountName   string
	AccountNumber string
	BankCode      string
}

// TransferReceipt acknowledges an accepted transfer
type TransferReceipt struct {
	Reference   string
	ProviderRef string
}

// PaymentGateway initializes and verifies inbound payments
type PaymentGateway interface {
	// InitializePayment creates a hosted checkout session
	InitializePayment(ctx context.Context, req *PaymentRequest) (*PaymentInit, error)

	// VerifyTransaction fetches the authoritative state of a transaction
	VerifyTransaction(ctx context.Context, txRef string) (*VerifyResult, error)
}

// TransferGateway submits outbound transfers
type TransferGateway interface {
	// SubmitTransfer queues a payout with the provider
	SubmitTransfer(ctx context.Context, req *TransferRequest) (*TransferReceipt, error)
}
