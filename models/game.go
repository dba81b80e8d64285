package models

import (
	"time"
)

// GameStatus represents the lifecycle state of a game
type GameStatus string

const (
	GameStatusWaiting   GameStatus = "waiting"
	GameStatusStarted   GameStatus = "started"
	GameStatusCompleted GameStatus = "completed"
	GameStatusCanceled  GameStatus = "canceled"
)

// Game represents a number-pot game
type Game struct {
	ID         int64      `db:"id"`
	Title      string     `db:"title"`
	Status     GameStatus `db:"status"`
	BetAmount  int64      `db:"bet_amount"`
	MaxPlayers int        `db:"max_players"`
	CreatedBy  int64      `db:"created_by"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

// Pot returns the total amount staked when the game fills up
func (g *Game) Pot() int64 {
	return g.BetAmount * int64(g.MaxPlayers)
}

// IsJoinable reports whether new players may still enter
func (g *Game) IsJoinable() bool {
	return g.Status == GameStatusWaiting
}

// GamePlayer represents one player's entry in a game
type GamePlayer struct {
	ID          int64     `db:"id"`
	GameID      int64     `db:"game_id"`
	UserID      int64     `db:"user_id"`
	LuckyNumber int       `db:"lucky_number"`
	CreatedAt   time.Time `db:"created_at"`
}

// GameResult represents the outcome of a completed game
type GameResult struct {
	ID            int64     `db:"id"`
	GameID        int64     `db:"game_id"`
	WinningNumber int       `db:"winning_number"`
	WinningUserID int64     `db:"winning_user_id"`
	TotalWin      int64     `db:"total_win"`
	CreatedAt     time.Time `db:"created_at"`
}

// GameSummary is the listing read model: a game plus its current player count
type GameSummary struct {
	Game
	PlayerCount int    `db:"player_count"`
	CreatorName string `db:"creator_name"`
}

// GameHistoryEntry is the history read model joining the winner's name
type GameHistoryEntry struct {
	GameID        int64     `db:"game_id"`
	Title         string    `db:"title"`
	BetAmount     int64     `db:"bet_amount"`
	MaxPlayers    int       `db:"max_players"`
	WinningNumber int       `db:"winning_number"`
	WinnerID      int64     `db:"winner_id"`
	WinnerName    string    `db:"winner_name"`
	TotalWin      int64     `db:"total_win"`
	CompletedAt   time.Time `db:"completed_at"`
}
