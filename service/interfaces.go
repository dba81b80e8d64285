package service

import (
	"context"

	"luckypot/events"
	"luckypot/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by ID, nil if not found
	GetByID(ctx context.Context, userID int64) (*models.User, error)

	// GetByUsername retrieves a user by username, nil if not found
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Create creates a new user with the initial balance
	Create(ctx context.Context, username string, initialBalance int64) (*models.User, error)

	// AddBalance adds to a user's balance atomically
	AddBalance(ctx context.Context, userID int64, amount int64) error

	// DeductBalance deducts from a user's balance atomically, failing with
	// an insufficient-funds error when the balance cannot cover the amount
	DeductBalance(ctx context.Context, userID int64, amount int64) error
}

// LedgerRepository defines the interface for the append-only transaction ledger
type LedgerRepository interface {
	// Record appends a ledger entry
	Record(ctx context.Context, entry *models.LedgerEntry) error

	// GetByUser returns a user's ledger entries, newest first
	GetByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.LedgerEntry, error)
}

// GameRepository defines the interface for game data access
type GameRepository interface {
	// Create persists a new game in waiting status
	Create(ctx context.Context, game *models.Game) error

	// GetByID retrieves a game by ID, nil if not found
	GetByID(ctx context.Context, gameID int64) (*models.Game, error)

	// GetByIDForUpdate retrieves a game by ID with a row lock held for the
	// rest of the transaction, nil if not found
	GetByIDForUpdate(ctx context.Context, gameID int64) (*models.Game, error)

	// UpdateStatus transitions a game to a new status
	UpdateStatus(ctx context.Context, gameID int64, status models.GameStatus) error

	// AddPlayer inserts a player entry, failing with a conflict error when
	// the user or the lucky number is already taken in this game
	AddPlayer(ctx context.Context, player *models.GamePlayer) error

	// CountPlayers returns the number of players in a game
	CountPlayers(ctx context.Context, gameID int64) (int, error)

	// GetPlayers returns all player entries for a game
	GetPlayers(ctx context.Context, gameID int64) ([]*models.GamePlayer, error)

	// GetPlayerByNumber returns the player holding a lucky number, nil if untaken
	GetPlayerByNumber(ctx context.Context, gameID int64, luckyNumber int) (*models.GamePlayer, error)

	// TakenNumbers returns the lucky numbers already claimed in a game
	TakenNumbers(ctx context.Context, gameID int64) ([]int, error)

	// CreateResult persists the outcome of a completed game
	CreateResult(ctx context.Context, result *models.GameResult) error

	// GetActive returns waiting and started games with player counts
	GetActive(ctx context.Context) ([]*models.GameSummary, error)

	// GetHistory returns completed games with winner names, newest first
	GetHistory(ctx context.Context, limit, offset int) ([]*models.GameHistoryEntry, error)
}

// WithdrawalRepository defines the interface for gateway transaction data access
type WithdrawalRepository interface {
	// Create persists a new gateway transaction
	Create(ctx context.Context, gt *models.GatewayTransaction) error

	// GetByRef retrieves a gateway transaction by reference, nil if not found
	GetByRef(ctx context.Context, transactionRef string) (*models.GatewayTransaction, error)

	// GetByRefForUpdate retrieves a gateway transaction by reference with a
	// row lock held for the rest of the transaction, nil if not found
	GetByRefForUpdate(ctx context.Context, transactionRef string) (*models.GatewayTransaction, error)

	// GetOutstandingWithdrawal returns the user's unfinished withdrawal,
	// nil if none
	GetOutstandingWithdrawal(ctx context.Context, userID int64) (*models.GatewayTransaction, error)

	// Update persists the mutable fields of a gateway transaction
	Update(ctx context.Context, gt *models.GatewayTransaction) error
}

// ManualWithdrawalRepository defines the interface for the manual review queue
type ManualWithdrawalRepository interface {
	// Enqueue adds a withdrawal to the manual review queue
	Enqueue(ctx context.Context, mw *models.ManualWithdrawal) error

	// GetByRef retrieves a queued withdrawal by reference, nil if not found
	GetByRef(ctx context.Context, transactionRef string) (*models.ManualWithdrawal, error)

	// ListActive returns queued withdrawals ordered by priority then age
	ListActive(ctx context.Context) ([]*models.QueueEntry, error)

	// Stats aggregates the pending queue
	Stats(ctx context.Context) (*models.QueueStats, error)

	// Resolve marks a pending queue entry as approved or rejected,
	// recording the operator's notes and the processing time
	Resolve(ctx context.Context, transactionRef, status string, notes *string) error
}

// UnitOfWork represents a business transaction: repositories bound to a
// single database transaction plus the transactional event bus
type UnitOfWork interface {
	// Begin starts the transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes buffered events
	Commit() error

	// Rollback rolls back the transaction and discards buffered events.
	// Safe to call after Commit.
	Rollback() error

	UserRepository() UserRepository
	LedgerRepository() LedgerRepository
	GameRepository() GameRepository
	WithdrawalRepository() WithdrawalRepository
	ManualWithdrawalRepository() ManualWithdrawalRepository

	// EventBus returns the transactional event bus for this unit of work
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// NumberPicker draws the winning lucky number
type NumberPicker interface {
	// Pick returns a uniformly distributed number in [1, maxPlayers]
	Pick(maxPlayers int) (int, error)
}

// Notifier delivers user-facing notifications after state changes
type Notifier interface {
	GameWon(ctx context.Context, gameID, winnerID int64, totalWin int64)
	WithdrawalQueued(ctx context.Context, transactionRef string, userID int64, amount int64)
	WithdrawalCompleted(ctx context.Context, transactionRef string, userID int64, amount int64)
	WithdrawalFailed(ctx context.Context, transactionRef string, userID int64, amount int64)
}

// UserService defines the interface for user operations
type UserService interface {
	// GetOrCreateUser retrieves an existing user or creates a new one with
	// the configured starting balance
	GetOrCreateUser(ctx context.Context, username string) (*models.User, error)

	// GetUser retrieves a user by ID
	GetUser(ctx context.Context, userID int64) (*models.User, error)

	// GetLedger returns a page of the user's transaction history
	GetLedger(ctx context.Context, userID int64, limit, offset int) ([]*models.LedgerEntry, error)
}

// GameService defines the interface for game lifecycle operations
type GameService interface {
	// CreateGame creates a game and debits the creator's entry
	CreateGame(ctx context.Context, creatorID int64, title string, betAmount int64, maxPlayers int, luckyNumber int) (*models.Game, error)

	// JoinGame debits the entry and claims a lucky number; the draw runs
	// inside the same transaction when the game fills up
	JoinGame(ctx context.Context, gameID, userID int64, luckyNumber int) (*models.Game, error)

	// CancelGame cancels a game and refunds every player
	CancelGame(ctx context.Context, gameID, requesterID int64) error

	// DrawWinner draws a winner for a full game whose automatic draw failed
	DrawWinner(ctx context.Context, gameID int64) (*models.GameResult, error)

	// GetActiveGames returns joinable and running games with player counts
	GetActiveGames(ctx context.Context) ([]*models.GameSummary, error)

	// GetAvailableNumbers returns the lucky numbers still open in a game
	GetAvailableNumbers(ctx context.Context, gameID int64) ([]int, error)

	// GetHistory returns completed games, newest first
	GetHistory(ctx context.Context, limit, offset int) ([]*models.GameHistoryEntry, error)
}

// WithdrawalService defines the interface for withdrawal operations
type WithdrawalService interface {
	// Submit escrows the amount and routes the withdrawal automatically or
	// to the manual queue
	Submit(ctx context.Context, userID int64, amount int64, method models.PayoutMethod, details models.AccountDetails) (*models.GatewayTransaction, error)

	// AdminApprove marks a manually queued withdrawal as paid out,
	// recording the operator's notes against the queue entry
	AdminApprove(ctx context.Context, transactionRef, notes string) error

	// AdminReject refunds a manually queued withdrawal
	AdminReject(ctx context.Context, transactionRef string, reason string) error

	// CompleteTransfer finalizes an automatic withdrawal after the gateway
	// confirms the transfer
	CompleteTransfer(ctx context.Context, transactionRef string) error

	// FailTransfer refunds an automatic withdrawal after the gateway
	// reports the transfer failed
	FailTransfer(ctx context.Context, transactionRef string, reason string) error
}

// QueueService defines read operations over the manual review queue
type QueueService interface {
	// List returns the queue ordered by priority then age
	List(ctx context.Context) ([]*models.QueueEntry, error)

	// Stats aggregates the pending queue
	Stats(ctx context.Context) (*models.QueueStats, error)
}

// DepositService defines the interface for deposit operations
type DepositService interface {
	// Initiate creates a pending deposit and returns it with the gateway
	// checkout URL populated
	Initiate(ctx context.Context, userID int64, amount int64) (*models.GatewayTransaction, error)

	// Confirm re-verifies a deposit with the gateway and credits the user
	Confirm(ctx context.Context, transactionRef string) error

	// Fail marks a pending deposit as failed
	Fail(ctx context.Context, transactionRef string, reason string) error
}
