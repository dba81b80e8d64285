package service

import (
	"context"

	"luckypot/events"
	"luckypot/gateway"
	"luckypot/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, username string, initialBalance int64) (*models.User, error) {
	args := m.Called(ctx, username, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) AddBalance(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockUserRepository) DeductBalance(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

// MockGameRepository is a mock implementation of GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) Create(ctx context.Context, game *models.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameRepository) GetByID(ctx context.Context, gameID int64) (*models.Game, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func (m *MockGameRepository) GetByIDForUpdate(ctx context.Context, gameID int64) (*models.Game, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func (m *MockGameRepository) UpdateStatus(ctx context.Context, gameID int64, status models.GameStatus) error {
	args := m.Called(ctx, gameID, status)
	return args.Error(0)
}

func (m *MockGameRepository) AddPlayer(ctx context.Context, player *models.GamePlayer) error {
	args := m.Called(ctx, player)
	return args.Error(0)
}

func (m *MockGameRepository) CountPlayers(ctx context.Context, gameID int64) (int, error) {
	args := m.Called(ctx, gameID)
	return args.Int(0), args.Error(1)
}

func (m *MockGameRepository) GetPlayers(ctx context.Context, gameID int64) ([]*models.GamePlayer, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GamePlayer), args.Error(1)
}

func (m *MockGameRepository) GetPlayerByNumber(ctx context.Context, gameID int64, luckyNumber int) (*models.GamePlayer, error) {
	args := m.Called(ctx, gameID, luckyNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GamePlayer), args.Error(1)
}

func (m *MockGameRepository) TakenNumbers(ctx context.Context, gameID int64) ([]int, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockGameRepository) CreateResult(ctx context.Context, result *models.GameResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockGameRepository) GetActive(ctx context.Context) ([]*models.GameSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameSummary), args.Error(1)
}

func (m *MockGameRepository) GetHistory(ctx context.Context, limit, offset int) ([]*models.GameHistoryEntry, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameHistoryEntry), args.Error(1)
}

// MockWithdrawalRepository is a mock implementation of WithdrawalRepository
type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) Create(ctx context.Context, gt *models.GatewayTransaction) error {
	args := m.Called(ctx, gt)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) GetByRef(ctx context.Context, transactionRef string) (*models.GatewayTransaction, error) {
	args := m.Called(ctx, transactionRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GatewayTransaction), args.Error(1)
}

func (m *MockWithdrawalRepository) GetByRefForUpdate(ctx context.Context, transactionRef string) (*models.GatewayTransaction, error) {
	args := m.Called(ctx, transactionRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GatewayTransaction), args.Error(1)
}

func (m *MockWithdrawalRepository) GetOutstandingWithdrawal(ctx context.Context, userID int64) (*models.GatewayTransaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GatewayTransaction), args.Error(1)
}

func (m *MockWithdrawalRepository) Update(ctx context.Context, gt *models.GatewayTransaction) error {
	args := m.Called(ctx, gt)
	return args.Error(0)
}

// MockManualWithdrawalRepository is a mock implementation of ManualWithdrawalRepository
type MockManualWithdrawalRepository struct {
	mock.Mock
}

func (m *MockManualWithdrawalRepository) Enqueue(ctx context.Context, mw *models.ManualWithdrawal) error {
	args := m.Called(ctx, mw)
	return args.Error(0)
}

func (m *MockManualWithdrawalRepository) GetByRef(ctx context.Context, transactionRef string) (*models.ManualWithdrawal, error) {
	args := m.Called(ctx, transactionRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ManualWithdrawal), args.Error(1)
}

func (m *MockManualWithdrawalRepository) ListActive(ctx context.Context) ([]*models.QueueEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QueueEntry), args.Error(1)
}

func (m *MockManualWithdrawalRepository) Stats(ctx context.Context) (*models.QueueStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QueueStats), args.Error(1)
}

func (m *MockManualWithdrawalRepository) Resolve(ctx context.Context, transactionRef, status string, notes *string) error {
	args := m.Called(ctx, transactionRef, status, notes)
	return args.Error(0)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// set once via SetRepositories; Begin/Commit/Rollback use expectations.
type MockUnitOfWork struct {
	mock.Mock
	userRepo       UserRepository
	ledgerRepo     LedgerRepository
	gameRepo       GameRepository
	withdrawalRepo WithdrawalRepository
	manualRepo     ManualWithdrawalRepository
	publisher      *CapturingPublisher
}

// SetRepositories wires the repositories returned by the accessor methods
func (m *MockUnitOfWork) SetRepositories(user UserRepository, ledger LedgerRepository, game GameRepository, withdrawal WithdrawalRepository, manual ManualWithdrawalRepository) {
	m.userRepo = user
	m.ledgerRepo = ledger
	m.gameRepo = game
	m.withdrawalRepo = withdrawal
	m.manualRepo = manual
	m.publisher = &CapturingPublisher{}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) LedgerRepository() LedgerRepository {
	return m.ledgerRepo
}

func (m *MockUnitOfWork) GameRepository() GameRepository {
	return m.gameRepo
}

func (m *MockUnitOfWork) WithdrawalRepository() WithdrawalRepository {
	return m.withdrawalRepo
}

func (m *MockUnitOfWork) ManualWithdrawalRepository() ManualWithdrawalRepository {
	return m.manualRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.publisher
}

// Events returns the events published through this unit of work
func (m *MockUnitOfWork) Events() []events.Event {
	return m.publisher.Events
}

// CapturingPublisher records published events for assertions
type CapturingPublisher struct {
	Events []events.Event
}

func (p *CapturingPublisher) Publish(event events.Event) {
	p.Events = append(p.Events, event)
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockNumberPicker is a mock implementation of NumberPicker
type MockNumberPicker struct {
	mock.Mock
}

func (m *MockNumberPicker) Pick(maxPlayers int) (int, error) {
	args := m.Called(maxPlayers)
	return args.Int(0), args.Error(1)
}

// MockPaymentGateway is a mock implementation of gateway.PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) InitializePayment(ctx context.Context, req *gateway.PaymentRequest) (*gateway.PaymentInit, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.PaymentInit), args.Error(1)
}

func (m *MockPaymentGateway) VerifyTransaction(ctx context.Context, txRef string) (*gateway.VerifyResult, error) {
	args := m.Called(ctx, txRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.VerifyResult), args.Error(1)
}

// MockTransferGateway is a mock implementation of gateway.TransferGateway
type MockTransferGateway struct {
	mock.Mock
}

func (m *MockTransferGateway) SubmitTransfer(ctx context.Context, req *gateway.TransferRequest) (*gateway.TransferReceipt, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.TransferReceipt), args.Error(1)
}
