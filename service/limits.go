package service

import (
	"fmt"
	"strings"

	"luckypot/models"

	"github.com/google/uuid"
)

// All amounts are in cents.
const (
	MinBetAmount = 1      // 0.01
	MaxBetAmount = 100000 // 1,000.00

	MinPlayers = 2
	MaxPlayers = 100

	MinPaymentAmount = 100     // 1.00
	MaxPaymentAmount = 5000000 // 50,000.00

	// AutoWithdrawalThreshold is the largest amount paid out without
	// operator review.
	AutoWithdrawalThreshold = 1000000 // 10,000.00

	// Manual queue priority bands.
	highPriorityThreshold   = 1500000 // 15,000.00
	urgentPriorityThreshold = 5000000 // 50,000.00
)

// supportedBanks are the bank codes the transfer gateway can pay out to
// directly. Anything else goes through the manual queue.
var supportedBanks = map[string]bool{
	"CBE": true,
	"AIB": true,
	"BOA": true,
	"UB":  true,
}

// supportedMobileProviders are the wallets the transfer gateway can pay out
// to directly.
var supportedMobileProviders = map[string]bool{
	"mbirr":     true,
	"hellocash": true,
	"telebirr":  true,
}

// priorityForAmount assigns the manual queue band for a withdrawal amount
func priorityForAmount(amount int64) models.QueuePriority {
	switch {
	case amount >= urgentPriorityThreshold:
		return models.QueuePriorityUrgent
	case amount >= highPriorityThreshold:
		return models.QueuePriorityHigh
	default:
		return models.QueuePriorityNormal
	}
}

// destinationSupported reports whether the transfer gateway can pay the
// destination out directly
func destinationSupported(method models.PayoutMethod, details models.AccountDetails) bool {
	switch method {
	case models.PayoutMethodBankTransfer:
		return supportedBanks[details.BankCode]
	case models.PayoutMethodMobileMoney:
		return supportedMobileProviders[details.Provider]
	}
	return false
}

// newTransactionRef generates a prefixed unique transaction reference
func newTransactionRef(prefix string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate transaction reference: %w", err)
	}
	return prefix + strings.ReplaceAll(id.String(), "-", ""), nil
}
