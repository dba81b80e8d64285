package service

import (
	"context"
	"fmt"
	"strings"

	"luckypot/events"
	"luckypot/models"

	log "github.com/sirupsen/logrus"
)

type gameService struct {
	uowFactory UnitOfWorkFactory
	picker     NumberPicker
}

// NewGameService creates a new game service
func NewGameService(uowFactory UnitOfWorkFactory, picker NumberPicker) GameService {
	return &gameService{
		uowFactory: uowFactory,
		picker:     picker,
	}
}

// CreateGame creates a game and debits the creator's entry
func (s *gameService) CreateGame(ctx context.Context, creatorID int64, title string, betAmount int64, maxPlayers int, luckyNumber int) (*models.Game, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("title is required")
	}
	if betAmount < MinBetAmount || betAmount > MaxBetAmount {
		return nil, NewValidationError("bet amount must be between %d and %d cents", MinBetAmount, MaxBetAmount)
	}
	if maxPlayers < MinPlayers || maxPlayers > MaxPlayers {
		return nil, NewValidationError("max players must be between %d and %d", MinPlayers, MaxPlayers)
	}
	if luckyNumber < 1 || luckyNumber > maxPlayers {
		return nil, NewValidationError("lucky number must be between 1 and %d", maxPlayers)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game := &models.Game{
		Title:      title,
		Status:     models.GameStatusWaiting,
		BetAmount:  betAmount,
		MaxPlayers: maxPlayers,
		CreatedBy:  creatorID,
	}
	if err := uow.GameRepository().Create(ctx, game); err != nil {
		return nil, err
	}

	if err := debit(ctx, uow, creatorID, betAmount, models.TransactionTypeGameCreation, nil, &game.ID); err != nil {
		return nil, err
	}

	if err := uow.GameRepository().AddPlayer(ctx, &models.GamePlayer{
		GameID:      game.ID,
		UserID:      creatorID,
		LuckyNumber: luckyNumber,
	}); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameID":     game.ID,
		"creatorID":  creatorID,
		"betAmount":  betAmount,
		"maxPlayers": maxPlayers,
	}).Info("Game created")

	return game, nil
}

// JoinGame debits the entry and claims a lucky number. When the join fills
// the game, the draw runs inside the same transaction, so either the join,
// the start and the payout all land or none do.
func (s *gameService) JoinGame(ctx context.Context, gameID, userID int64, luckyNumber int) (*models.Game, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().GetByIDForUpdate(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, NewNotFoundError("game %d not found", gameID)
	}
	if !game.IsJoinable() {
		return nil, NewConflictError("game %d is not open for joining", gameID)
	}
	if luckyNumber < 1 || luckyNumber > game.MaxPlayers {
		return nil, NewValidationError("lucky number must be between 1 and %d", game.MaxPlayers)
	}

	if err := debit(ctx, uow, userID, game.BetAmount, models.TransactionTypeGameJoin, nil, &game.ID); err != nil {
		return nil, err
	}

	if err := uow.GameRepository().AddPlayer(ctx, &models.GamePlayer{
		GameID:      game.ID,
		UserID:      userID,
		LuckyNumber: luckyNumber,
	}); err != nil {
		return nil, err
	}

	count, err := uow.GameRepository().CountPlayers(ctx, game.ID)
	if err != nil {
		return nil, err
	}

	if count == game.MaxPlayers {
		if err := uow.GameRepository().UpdateStatus(ctx, game.ID, models.GameStatusStarted); err != nil {
			return nil, err
		}
		game.Status = models.GameStatusStarted

		uow.EventBus().Publish(events.GameStartedEvent{
			GameID:      game.ID,
			PlayerCount: count,
		})

		if _, err := s.draw(ctx, uow, game); err != nil {
			return nil, err
		}
		game.Status = models.GameStatusCompleted
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameID":      game.ID,
		"userID":      userID,
		"luckyNumber": luckyNumber,
		"playerCount": count,
	}).Info("Player joined game")

	return game, nil
}

// CancelGame cancels a game and refunds every player's entry
func (s *gameService) CancelGame(ctx context.Context, gameID, requesterID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().GetByIDForUpdate(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return NewNotFoundError("game %d not found", gameID)
	}
	if game.CreatedBy != requesterID {
		return NewConflictError("only the creator can cancel game %d", gameID)
	}
	if game.Status != models.GameStatusWaiting && game.Status != models.GameStatusStarted {
		return NewConflictError("game %d can no longer be canceled", gameID)
	}

	players, err := uow.GameRepository().GetPlayers(ctx, game.ID)
	if err != nil {
		return err
	}

	for _, player := range players {
		if err := credit(ctx, uow, player.UserID, game.BetAmount, models.TransactionTypeGameRefund, nil, &game.ID); err != nil {
			return err
		}
	}

	if err := uow.GameRepository().UpdateStatus(ctx, game.ID, models.GameStatusCanceled); err != nil {
		return err
	}

	uow.EventBus().Publish(events.GameCanceledEvent{
		GameID:         game.ID,
		RefundedCount:  len(players),
		RefundPerEntry: game.BetAmount,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameID":   game.ID,
		"refunded": len(players),
	}).Info("Game canceled")

	return nil
}

// DrawWinner draws a winner for a full game whose automatic draw did not
// complete, for example when the process died between start and payout
func (s *gameService) DrawWinner(ctx context.Context, gameID int64) (*models.GameResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().GetByIDForUpdate(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, NewNotFoundError("game %d not found", gameID)
	}
	if game.Status != models.GameStatusStarted {
		return nil, NewConflictError("game %d is not awaiting a draw", gameID)
	}

	result, err := s.draw(ctx, uow, game)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

// draw picks the winning number, pays the pot and completes the game. The
// caller holds the game row lock and has verified the game is started.
func (s *gameService) draw(ctx context.Context, uow UnitOfWork, game *models.Game) (*models.GameResult, error) {
	winningNumber, err := s.picker.Pick(game.MaxPlayers)
	if err != nil {
		return nil, fmt.Errorf("failed to pick winning number: %w", err)
	}

	// Lucky numbers are unique within [1, max_players] and the game is
	// full, so every number is held by exactly one player.
	winner, err := uow.GameRepository().GetPlayerByNumber(ctx, game.ID, winningNumber)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, NewIntegrityError("game %d has no player holding winning number %d", game.ID, winningNumber)
	}

	totalWin := game.Pot()
	if err := credit(ctx, uow, winner.UserID, totalWin, models.TransactionTypeGameWin, nil, &game.ID); err != nil {
		return nil, err
	}

	result := &models.GameResult{
		GameID:        game.ID,
		WinningNumber: winningNumber,
		WinningUserID: winner.UserID,
		TotalWin:      totalWin,
	}
	if err := uow.GameRepository().CreateResult(ctx, result); err != nil {
		return nil, err
	}

	if err := uow.GameRepository().UpdateStatus(ctx, game.ID, models.GameStatusCompleted); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.GameCompletedEvent{
		GameID:        game.ID,
		WinnerID:      winner.UserID,
		WinningNumber: winningNumber,
		TotalWin:      totalWin,
	})

	log.WithFields(log.Fields{
		"gameID":        game.ID,
		"winnerID":      winner.UserID,
		"winningNumber": winningNumber,
		"totalWin":      totalWin,
	}).Info("Game completed")

	return result, nil
}

// GetActiveGames returns joinable and running games with player counts
func (s *gameService) GetActiveGames(ctx context.Context) ([]*models.GameSummary, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	games, err := uow.GameRepository().GetActive(ctx)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return games, nil
}

// GetAvailableNumbers returns the lucky numbers still open in a game
func (s *gameService) GetAvailableNumbers(ctx context.Context, gameID int64) ([]int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, NewNotFoundError("game %d not found", gameID)
	}

	taken, err := uow.GameRepository().TakenNumbers(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	takenSet := make(map[int]bool, len(taken))
	for _, n := range taken {
		takenSet[n] = true
	}

	available := make([]int, 0, game.MaxPlayers-len(taken))
	for n := 1; n <= game.MaxPlayers; n++ {
		if !takenSet[n] {
			available = append(available, n)
		}
	}

	return available, nil
}

// GetHistory returns completed games, newest first
func (s *gameService) GetHistory(ctx context.Context, limit, offset int) ([]*models.GameHistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	history, err := uow.GameRepository().GetHistory(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return history, nil
}
