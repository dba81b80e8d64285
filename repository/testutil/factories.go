package testutil

import (
	"time"

	"luckypot/models"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(username string) *models.User {
	now := time.Now()
	return &models.User{
		Username:  username,
		Balance:   100000,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestUserWithBalance creates a test user with a specific balance
func CreateTestUserWithBalance(username string, balance int64) *models.User {
	user := CreateTestUser(username)
	user.Balance = balance
	return user
}

// CreateTestGame creates a waiting game with default values
func CreateTestGame(createdBy int64) *models.Game {
	now := time.Now()
	return &models.Game{
		Title:      "test game",
		Status:     models.GameStatusWaiting,
		BetAmount:  1000,
		MaxPlayers: 3,
		CreatedBy:  createdBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CreateTestGameWithStakes creates a game with a specific bet and player cap
func CreateTestGameWithStakes(createdBy int64, betAmount int64, maxPlayers int) *models.Game {
	game := CreateTestGame(createdBy)
	game.BetAmount = betAmount
	game.MaxPlayers = maxPlayers
	return game
}

// CreateTestLedgerEntry creates a ledger entry with default values
func CreateTestLedgerEntry(userID int64, amount int64, txType models.TransactionType) *models.LedgerEntry {
	return &models.LedgerEntry{
		UserID:    userID,
		Amount:    amount,
		Type:      txType,
		CreatedAt: time.Now(),
	}
}

// CreateTestWithdrawal creates a pending withdrawal gateway transaction
func CreateTestWithdrawal(userID int64, ref string, amount int64) *models.GatewayTransaction {
	method := models.PayoutMethodBankTransfer
	now := time.Now()
	return &models.GatewayTransaction{
		TransactionRef: ref,
		UserID:         userID,
		Amount:         amount,
		Type:           models.GatewayTransactionTypeWithdraw,
		Status:         models.GatewayStatusPending,
		Method:         &method,
		AccountDetails: &models.AccountDetails{
			BankCode:      "CBE",
			AccountNumber: "1000222233334",
			AccountName:   "Test Account",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestDeposit creates a pending deposit gateway transaction
func CreateTestDeposit(userID int64, ref string, amount int64) *models.GatewayTransaction {
	now := time.Now()
	return &models.GatewayTransaction{
		TransactionRef: ref,
		UserID:         userID,
		Amount:         amount,
		Type:           models.GatewayTransactionTypeDeposit,
		Status:         models.GatewayStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CreateTestManualWithdrawal creates a queued manual withdrawal
func CreateTestManualWithdrawal(userID int64, ref string, amount int64, priority models.QueuePriority) *models.ManualWithdrawal {
	return &models.ManualWithdrawal{
		TransactionRef: ref,
		UserID:         userID,
		Amount:         amount,
		Priority:       priority,
		Status:         "pending",
		Details: &models.AccountDetails{
			BankCode:      "CBE",
			AccountNumber: "1000222233334",
			AccountName:   "Test Account",
		},
		QueuedAt: time.Now(),
	}
}
