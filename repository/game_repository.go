package repository

import (
	"context"
	"fmt"
	"strings"

	"luckypot/database"
	"luckypot/models"
	"luckypot/service"

	"github.com/jackc/pgx/v5"
)

// GameRepository implements the service.GameRepository interface
type GameRepository struct {
	q queryable
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{q: db.Pool}
}

// newGameRepositoryWithTx creates a new game repository with a transaction
func newGameRepositoryWithTx(tx queryable) *GameRepository {
	return &GameRepository{q: tx}
}

const gameColumns = `id, title, status, bet_amount, max_players, created_by, created_at, updated_at`

func scanGame(row pgx.Row) (*models.Game, error) {
	var game models.Game
	err := row.Scan(
		&game.ID,
		&game.Title,
		&game.Status,
		&game.BetAmount,
		&game.MaxPlayers,
		&game.CreatedBy,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// Create persists a new game in waiting status
func (r *GameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (title, status, bet_amount, max_players, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	if game.Status == "" {
		game.Status = models.GameStatusWaiting
	}

	err := r.q.QueryRow(ctx, query,
		game.Title,
		game.Status,
		game.BetAmount,
		game.MaxPlayers,
		game.CreatedBy,
	).Scan(&game.ID, &game.CreatedAt, &game.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	return nil
}

// GetByID retrieves a game by ID
func (r *GameRepository) GetByID(ctx context.Context, gameID int64) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	game, err := scanGame(r.q.QueryRow(ctx, query, gameID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %d: %w", gameID, err)
	}

	return game, nil
}

// GetByIDForUpdate retrieves a game by ID, locking the row until the
// enclosing transaction ends
func (r *GameRepository) GetByIDForUpdate(ctx context.Context, gameID int64) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1 FOR UPDATE`

	game, err := scanGame(r.q.QueryRow(ctx, query, gameID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %d for update: %w", gameID, err)
	}

	return game, nil
}

// UpdateStatus transitions a game to a new status
func (r *GameRepository) UpdateStatus(ctx context.Context, gameID int64, status models.GameStatus) error {
	query := `
		UPDATE games
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, status, gameID)
	if err != nil {
		return fmt.Errorf("failed to update status of game %d: %w", gameID, err)
	}

	if result.RowsAffected() == 0 {
		return service.NewNotFoundError("game %d not found", gameID)
	}

	return nil
}

// AddPlayer inserts a player entry. A duplicate user or a taken lucky number
// surfaces as a conflict error.
func (r *GameRepository) AddPlayer(ctx context.Context, player *models.GamePlayer) error {
	query := `
		INSERT INTO game_players (game_id, user_id, lucky_number)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		player.GameID,
		player.UserID,
		player.LuckyNumber,
	).Scan(&player.ID, &player.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(constraintName(err), "lucky_number") {
				return service.NewConflictError("lucky number %d is already taken in game %d", player.LuckyNumber, player.GameID)
			}
			return service.NewConflictError("user %d has already joined game %d", player.UserID, player.GameID)
		}
		return fmt.Errorf("failed to add player %d to game %d: %w", player.UserID, player.GameID, err)
	}

	return nil
}

// CountPlayers returns the number of players in a game
func (r *GameRepository) CountPlayers(ctx context.Context, gameID int64) (int, error) {
	query := `SELECT COUNT(*) FROM game_players WHERE game_id = $1`

	var count int
	if err := r.q.QueryRow(ctx, query, gameID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count players of game %d: %w", gameID, err)
	}

	return count, nil
}

// GetPlayers returns all player entries for a game
func (r *GameRepository) GetPlayers(ctx context.Context, gameID int64) ([]*models.GamePlayer, error) {
	query := `
		SELECT id, game_id, user_id, lucky_number, created_at
		FROM game_players
		WHERE game_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get players of game %d: %w", gameID, err)
	}
	defer rows.Close()

	var players []*models.GamePlayer
	for rows.Next() {
		var player models.GamePlayer
		err := rows.Scan(
			&player.ID,
			&player.GameID,
			&player.UserID,
			&player.LuckyNumber,
			&player.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game player: %w", err)
		}
		players = append(players, &player)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game players: %w", err)
	}

	return players, nil
}

// GetPlayerByNumber returns the player holding a lucky number
func (r *GameRepository) GetPlayerByNumber(ctx context.Context, gameID int64, luckyNumber int) (*models.GamePlayer, error) {
	query := `
		SELECT id, game_id, user_id, lucky_number, created_at
		FROM game_players
		WHERE game_id = $1 AND lucky_number = $2
	`

	var player models.GamePlayer
	err := r.q.QueryRow(ctx, query, gameID, luckyNumber).Scan(
		&player.ID,
		&player.GameID,
		&player.UserID,
		&player.LuckyNumber,
		&player.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player by number %d in game %d: %w", luckyNumber, gameID, err)
	}

	return &player, nil
}

// TakenNumbers returns the lucky numbers already claimed in a game
func (r *GameRepository) TakenNumbers(ctx context.Context, gameID int64) ([]int, error) {
	query := `SELECT lucky_number FROM game_players WHERE game_id = $1 ORDER BY lucky_number`

	rows, err := r.q.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get taken numbers of game %d: %w", gameID, err)
	}
	defer rows.Close()

	var numbers []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan lucky number: %w", err)
		}
		numbers = append(numbers, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lucky numbers: %w", err)
	}

	return numbers, nil
}

// CreateResult persists the outcome of a completed game
func (r *GameRepository) CreateResult(ctx context.Context, result *models.GameResult) error {
	query := `
		INSERT INTO game_results (game_id, winning_number, winning_user_id, total_win)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		result.GameID,
		result.WinningNumber,
		result.WinningUserID,
		result.TotalWin,
	).Scan(&result.ID, &result.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return service.NewConflictError("game %d already has a result", result.GameID)
		}
		return fmt.Errorf("failed to create result for game %d: %w", result.GameID, err)
	}

	return nil
}

// GetActive returns waiting and started games with player counts, newest first
func (r *GameRepository) GetActive(ctx context.Context) ([]*models.GameSummary, error) {
	query := `
		SELECT
			g.id, g.title, g.status, g.bet_amount, g.max_players, g.created_by,
			g.created_at, g.updated_at,
			COUNT(gp.id) AS player_count,
			u.username AS creator_name
		FROM games g
		JOIN users u ON u.id = g.created_by
		LEFT JOIN game_players gp ON gp.game_id = g.id
		WHERE g.status IN ('waiting', 'started')
		GROUP BY g.id, u.username
		ORDER BY g.created_at DESC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active games: %w", err)
	}
	defer rows.Close()

	var games []*models.GameSummary
	for rows.Next() {
		var summary models.GameSummary
		err := rows.Scan(
			&summary.ID,
			&summary.Title,
			&summary.Status,
			&summary.BetAmount,
			&summary.MaxPlayers,
			&summary.CreatedBy,
			&summary.CreatedAt,
			&summary.UpdatedAt,
			&summary.PlayerCount,
			&summary.CreatorName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game summary: %w", err)
		}
		games = append(games, &summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate active games: %w", err)
	}

	return games, nil
}

// GetHistory returns completed games with winner names, newest first
func (r *GameRepository) GetHistory(ctx context.Context, limit, offset int) ([]*models.GameHistoryEntry, error) {
	query := `
		SELECT
			g.id, g.title, g.bet_amount, g.max_players,
			gr.winning_number, gr.winning_user_id, u.username, gr.total_win, gr.created_at
		FROM game_results gr
		JOIN games g ON g.id = gr.game_id
		JOIN users u ON u.id = gr.winning_user_id
		ORDER BY gr.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get game history: %w", err)
	}
	defer rows.Close()

	var entries []*models.GameHistoryEntry
	for rows.Next() {
		var entry models.GameHistoryEntry
		err := rows.Scan(
			&entry.GameID,
			&entry.Title,
			&entry.BetAmount,
			&entry.MaxPlayers,
			&entry.WinningNumber,
			&entry.WinnerID,
			&entry.WinnerName,
			&entry.TotalWin,
			&entry.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game history entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game history: %w", err)
	}

	return entries, nil
}
