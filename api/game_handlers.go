package api

import (
	"net/http"
)

type createGameRequest struct {
	Title       string `json:"title"`
	BetAmount   int64  `json:"bet_amount"`
	MaxPlayers  int    `json:"max_players"`
	LuckyNumber int    `json:"lucky_number"`
}

// CreateGame handles POST /api/games
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	game, err := h.games.CreateGame(r.Context(), userIDFrom(r), req.Title, req.BetAmount, req.MaxPlayers, req.LuckyNumber)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, game)
}

type joinGameRequest struct {
	LuckyNumber int `json:"lucky_number"`
}

// JoinGame handles POST /api/games/{gameID}/join
func (h *Handler) JoinGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r, "gameID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req joinGameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	game, err := h.games.JoinGame(r.Context(), gameID, userIDFrom(r), req.LuckyNumber)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, game)
}

// CancelGame handles POST /api/games/{gameID}/cancel
func (h *Handler) CancelGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r, "gameID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.games.CancelGame(r.Context(), gameID, userIDFrom(r)); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "canceled"})
}

// DrawGame handles POST /api/games/{gameID}/draw
func (h *Handler) DrawGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r, "gameID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.games.DrawWinner(r.Context(), gameID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListGames handles GET /api/games
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.games.GetActiveGames(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

// GetAvailableNumbers handles GET /api/games/{gameID}/numbers
func (h *Handler) GetAvailableNumbers(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r, "gameID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	numbers, err := h.games.GetAvailableNumbers(r.Context(), gameID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"available_numbers": numbers})
}

// GetGameHistory handles GET /api/games/history
func (h *Handler) GetGameHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.games.GetHistory(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"games": history})
}
