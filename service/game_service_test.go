package service

import (
	"context"
	"testing"

	"luckypot/events"
	"luckypot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupGameServiceTest() (GameService, *MockUnitOfWork, *MockUserRepository, *MockLedgerRepository, *MockGameRepository, *MockNumberPicker) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockGameRepo := new(MockGameRepository)
	mockPicker := new(MockNumberPicker)

	mockUoW.SetRepositories(mockUserRepo, mockLedgerRepo, mockGameRepo, nil, nil)
	mockFactory.On("Create").Return(mockUoW)

	service := NewGameService(mockFactory, mockPicker)
	return service, mockUoW, mockUserRepo, mockLedgerRepo, mockGameRepo, mockPicker
}

func TestGameService_CreateGame_Validation(t *testing.T) {
	ctx := context.Background()
	service, _, _, _, _, _ := setupGameServiceTest()

	tests := []struct {
		name        string
		title       string
		betAmount   int64
		maxPlayers  int
		luckyNumber int
	}{
		{"empty title", "  ", 1000, 5, 1},
		{"bet too small", "pot", 0, 5, 1},
		{"bet too large", "pot", MaxBetAmount + 1, 5, 1},
		{"too few players", "pot", 1000, 1, 1},
		{"too many players", "pot", 1000, MaxPlayers + 1, 1},
		{"lucky number too small", "pot", 1000, 5, 0},
		{"lucky number above cap", "pot", 1000, 5, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game, err := service.CreateGame(ctx, 1, tt.title, tt.betAmount, tt.maxPlayers, tt.luckyNumber)
			require.Error(t, err)
			assert.Nil(t, game)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

func TestGameService_CreateGame_Success(t *testing.T) {
	ctx := context.Background()
	service, mockUoW, mockUserRepo, mockLedgerRepo, mockGameRepo, _ := setupGameServiceTest()

	creator := &models.User{ID: 1, Username: "creator", Balance: 10000}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("Create", ctx, mock.AnythingOfType("*models.Game")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Game).ID = 42
	}).Return(nil)
	mockUserRepo.On("GetByID", ctx, int64(1)).Return(creator, nil)
	mockUserRepo.On("DeductBalance", ctx, int64(1), int64(1000)).Return(nil)
	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.Amount == -1000 && e.Type == models.TransactionTypeGameCreation && e.GameID != nil && *e.GameID == 42
	})).Return(nil)
	mockGameRepo.On("AddPlayer", ctx, mock.MatchedBy(func(p *models.GamePlayer) bool {
		return p.GameID == 42 && p.UserID == 1 && p.LuckyNumber == 3
	})).Return(nil)

	game, err := service.CreateGame(ctx, 1, "friday pot", 1000, 5, 3)
	require.NoError(t, err)
	require.NotNil(t, game)
	assert.Equal(t, int64(42), game.ID)
	assert.Equal(t, models.GameStatusWaiting, game.Status)

	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
	mockGameRepo.AssertExpectations(t)
}

func TestGameService_CreateGame_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	service, mockUoW, mockUserRepo, mockLedgerRepo, mockGameRepo, _ := setupGameServiceTest()

	broke := &models.User{ID: 2, Username: "broke", Balance: 10}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("Create", ctx, mock.AnythingOfType("*models.Game")).Return(nil)
	mockUserRepo.On("GetByID", ctx, int64(2)).Return(broke, nil)
	mockUserRepo.On("DeductBalance", ctx, int64(2), int64(1000)).
		Return(NewInsufficientFundsError("insufficient balance: have 10, need 1000"))

	game, err := service.CreateGame(ctx, 2, "pot", 1000, 5, 1)
	require.Error(t, err)
	assert.Nil(t, game)
	assert.Equal(t, KindInsufficientFunds, KindOf(err))

	mockUoW.AssertNotCalled(t, "Commit")
	mockLedgerRepo.AssertNotCalled(t, "Record")
	mockGameRepo.AssertNotCalled(t, "AddPlayer")
	assert.Empty(t, mockUoW.Events())
}

func TestGameService_JoinGame_NotFinalSeat(t *testing.T) {
	ctx := context.Background()
	service, mockUoW, mockUserRepo, mockLedgerRepo, mockGameRepo, mockPicker := setupGameServiceTest()

	game := &models.Game{ID: 7, Status: models.GameStatusWaiting, BetAmount: 500, MaxPlayers: 4, CreatedBy: 1}
	joiner := &models.User{ID: 3, Username: "joiner", Balance: 2000}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("GetByIDForUpdate", ctx, int64(7)).Return(game, nil)
	mockUserRepo.On("GetByID", ctx, int64(3)).Return(joiner, nil)
	mockUserRepo.On("DeductBalance", ctx, int64(3), int64(500)).Return(nil)
	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.Amount == -500 && e.Type == models.TransactionTypeGameJoin
	})).Return(nil)
	mockGameRepo.On("AddPlayer", ctx, mock.AnythingOfType("*models.GamePlayer")).Return(nil)
	mockGameRepo.On("CountPlayers", ctx, int64(7)).Return(2, nil)

	result, err := service.JoinGame(ctx, 7, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, models.GameStatusWaiting, result.Status)

	// Not full yet, so no draw
	mockPicker.AssertNotCalled(t, "Pick")
	mockGameRepo.AssertNotCalled(t, "UpdateStatus")
	mockUoW.AssertExpectations(t)
}

func TestGameService_JoinGame_FinalSeatRunsDraw(t *testing.T) {
	ctx := context.Background()
	service, mockUoW, mockUserRepo, mockLedgerRepo, mockGameRepo, mockPicker := setupGameServiceTest()

	game := &models.Game{ID: 7, Status: models.GameStatusWaiting, BetAmount: 500, MaxPlayers: 3, CreatedBy: 1}
	joiner := &models.User{ID: 3, Username: "joiner", Balance: 2000}
	winner := &models.User{ID: 2, Username: "winner", Balance: 100}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("GetByIDForUpdate", ctx, int64(7)).Return(game, nil)
	mockUserRepo.On("GetByID", ctx, int64(3)).Return(joiner, nil)
	mockUserRepo.On("DeductBalance", ctx, int64(3), int64(500)).Return(nil)
	mockGameRepo.On("AddPlayer", ctx, mock.AnythingOfType("*models.GamePlayer")).Return(nil)
	mockGameRepo.On("CountPlayers", ctx, int64(7)).Return(3, nil)
	mockGameRepo.On("UpdateStatus", ctx, int64(7), models.GameStatusStarted).Return(nil)

	mockPicker.On("Pick", 3).Return(2, nil)
	mockGameRepo.On("GetPlayerByNumber", ctx, int64(7), 2).
		Return(&models.GamePlayer{GameID: 7, UserID: 2, LuckyNumber: 2}, nil)
	mockUserRepo.On("GetByID", ctx, int64(2)).Return(winner, nil)
	mockUserRepo.On("AddBalance", ctx, int64(2), int64(1500)).Return(nil)
	mockGameRepo.On("CreateResult", ctx, mock.MatchedBy(func(r *models.GameResult) bool {
		return r.GameID == 7 && r.WinningNumber == 2 && r.WinningUserID == 2 && r.TotalWin == 1500
	})).Return(nil)
	mockGameRepo.On("UpdateStatus", ctx, int64(7), models.GameStatusCompleted).Return(nil)

	mockLedgerRepo.On("Record", ctx, mock.AnythingOfType("*models.LedgerEntry")).Return(nil)

	result, err := service.JoinGame(ctx, 7, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, models.GameStatusCompleted, result.Status)

	var completed *events.GameCompletedEvent
	for _, ev := range mockUoW.Events() {
		if e, ok := ev.(events.GameCompletedEvent); ok {
			completed = &e
		}
	}
	require.NotNil(t, completed)
	assert.Equal(t, int64(2), completed.WinnerID)
	assert.Equal(t, int64(1500), completed.TotalWin)

	mockUoW.AssertExpectations(t)
	mockGameRepo.AssertExpectations(t)
	mockPicker.AssertExpectations(t)
}

func TestGameService_JoinGame_TakenNumberConflicts(t *testing.T) {
	ctx := context.Background()
	service, mockUoW, mockUserRepo, mockLedgerRepo, mockGameRepo, _ := setupGameServiceTest()

	game := &models.Game{ID: 7, Status: models.GameStatusWaiting, BetAmount: 500, MaxPlayers: 4, CreatedBy: 1}
	joiner := &models.User{ID: 3, Username: "joiner", Balance: 2000}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("GetByIDForUpdate", ctx, int64(7)).Return(game, nil)
	mockUserRepo.On("GetByID", ctx, int64(3)).Return(joiner, nil)
	mockUserRepo.On("DeductBalance", ctx, int64(3), int64(500)).Return(nil)
	mockLedgerRepo.On("Record", ctx, mock.AnythingOfType("*models.LedgerEntry")).Return(nil)
	mockGameRepo.On("AddPlayer", ctx, mock.AnythingOfType("*models.GamePlayer")).
		Return(NewConflictError("lucky number 2 is already taken in game 7"))

	result, err := service.JoinGame(ctx, 7, 3, 2)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, KindConflict, KindOf(err))

	// The debit rolls back with everything else
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestGameService_JoinGame_ClosedGame(t *testing.T) {
	ctx := context.Background()
	service, mockUoW, mockUserRepo, _, mockGameRepo, _ := setupGameServiceTest()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	t.Run("missing game", func(t *testing.T) {
		mockGameRepo.On("GetByIDForUpdate", ctx, int64(404)).Return(nil, nil).Once()

		_, err := service.JoinGame(ctx, 404, 3, 1)
		require.Error(t, err)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("started game", func(t *testing.T) {
		started := &models.Game{ID: 8, Status: models.GameStatusStarted, BetAmount: 500, MaxPlayers: 2}
		mockGameRepo.On("GetByIDForUpdate", ctx, int64(8)).Return(started, nil).Once()

		_, err := service.JoinGame(ctx, 8, 3, 1)
		require.Error(t, err)
		assert.Equal(t, KindConflict, KindOf(err))
	})

	mockUserRepo.AssertNotCalled(t, "DeductBalance")
}

func TestGameService_CancelGame(t *testing.T) {
	ctx := context.Background()

	t.Run("refunds every player", func(t *testing.T) {
		service, mockUoW, mockUserRepo, mockLedgerRepo, mockGameRepo, _ := setupGameServiceTest()

		game := &models.Game{ID: 9, Status: models.GameStatusWaiting, BetAmount: 700, MaxPlayers: 5, CreatedBy: 1}

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)

		mockGameRepo.On("GetByIDForUpdate", ctx, int64(9)).Return(game, nil)
		mockGameRepo.On("GetPlayers", ctx, int64(9)).Return([]*models.GamePlayer{
			{GameID: 9, UserID: 1, LuckyNumber: 1},
			{GameID: 9, UserID: 3, LuckyNumber: 4},
		}, nil)
		mockUserRepo.On("GetByID", ctx, int64(1)).Return(&models.User{ID: 1, Balance: 0}, nil)
		mockUserRepo.On("GetByID", ctx, int64(3)).Return(&models.User{ID: 3, Balance: 50}, nil)
		mockUserRepo.On("AddBalance", ctx, int64(1), int64(700)).Return(nil)
		mockUserRepo.On("AddBalance", ctx, int64(3), int64(700)).Return(nil)
		mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
			return e.Amount == 700 && e.Type == models.TransactionTypeGameRefund
		})).Return(nil).Times(2)
		mockGameRepo.On("UpdateStatus", ctx, int64(9), models.GameStatusCanceled).Return(nil)

		err := service.CancelGame(ctx, 9, 1)
		require.NoError(t, err)

		mockUoW.AssertExpectations(t)
		mockUserRepo.AssertExpectations(t)
		mockLedgerRepo.AssertExpectations(t)
	})

	t.Run("only the creator may cancel", func(t *testing.T) {
		service, mockUoW, _, _, mockGameRepo, _ := setupGameServiceTest()

		game := &models.Game{ID: 9, Status: models.GameStatusWaiting, BetAmount: 700, MaxPlayers: 5, CreatedBy: 1}

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockGameRepo.On("GetByIDForUpdate", ctx, int64(9)).Return(game, nil)

		err := service.CancelGame(ctx, 9, 3)
		require.Error(t, err)
		assert.Equal(t, KindConflict, KindOf(err))
		mockGameRepo.AssertNotCalled(t, "GetPlayers")
	})

	t.Run("completed games cannot be canceled", func(t *testing.T) {
		service, mockUoW, _, _, mockGameRepo, _ := setupGameServiceTest()

		game := &models.Game{ID: 9, Status: models.GameStatusCompleted, BetAmount: 700, MaxPlayers: 5, CreatedBy: 1}

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockGameRepo.On("GetByIDForUpdate", ctx, int64(9)).Return(game, nil)

		err := service.CancelGame(ctx, 9, 1)
		require.Error(t, err)
		assert.Equal(t, KindConflict, KindOf(err))
	})
}

func TestGameService_DrawWinner(t *testing.T) {
	ctx := context.Background()

	t.Run("only started games can be drawn", func(t *testing.T) {
		service, mockUoW, _, _, mockGameRepo, mockPicker := setupGameServiceTest()

		game := &models.Game{ID: 11, Status: models.GameStatusWaiting, BetAmount: 100, MaxPlayers: 2}

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockGameRepo.On("GetByIDForUpdate", ctx, int64(11)).Return(game, nil)

		result, err := service.DrawWinner(ctx, 11)
		require.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, KindConflict, KindOf(err))
		mockPicker.AssertNotCalled(t, "Pick")
	})

	t.Run("missing winner is an integrity error", func(t *testing.T) {
		service, mockUoW, _, _, mockGameRepo, mockPicker := setupGameServiceTest()

		game := &models.Game{ID: 11, Status: models.GameStatusStarted, BetAmount: 100, MaxPlayers: 2}

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockGameRepo.On("GetByIDForUpdate", ctx, int64(11)).Return(game, nil)
		mockPicker.On("Pick", 2).Return(2, nil)
		mockGameRepo.On("GetPlayerByNumber", ctx, int64(11), 2).Return(nil, nil)

		result, err := service.DrawWinner(ctx, 11)
		require.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, KindIntegrity, KindOf(err))
		mockUoW.AssertNotCalled(t, "Commit")
	})

	t.Run("pays the full pot", func(t *testing.T) {
		service, mockUoW, mockUserRepo, mockLedgerRepo, mockGameRepo, mockPicker := setupGameServiceTest()

		game := &models.Game{ID: 11, Status: models.GameStatusStarted, BetAmount: 100, MaxPlayers: 4}

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockGameRepo.On("GetByIDForUpdate", ctx, int64(11)).Return(game, nil)
		mockPicker.On("Pick", 4).Return(3, nil)
		mockGameRepo.On("GetPlayerByNumber", ctx, int64(11), 3).
			Return(&models.GamePlayer{GameID: 11, UserID: 5, LuckyNumber: 3}, nil)
		mockUserRepo.On("GetByID", ctx, int64(5)).Return(&models.User{ID: 5, Balance: 0}, nil)
		mockUserRepo.On("AddBalance", ctx, int64(5), int64(400)).Return(nil)
		mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
			return e.Amount == 400 && e.Type == models.TransactionTypeGameWin
		})).Return(nil)
		mockGameRepo.On("CreateResult", ctx, mock.AnythingOfType("*models.GameResult")).Return(nil)
		mockGameRepo.On("UpdateStatus", ctx, int64(11), models.GameStatusCompleted).Return(nil)

		result, err := service.DrawWinner(ctx, 11)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, int64(400), result.TotalWin)
		assert.Equal(t, int64(5), result.WinningUserID)
	})
}
