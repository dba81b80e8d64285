package api

import (
	"net/http"
)

type registerRequest struct {
	Username string `json:"username"`
}

// RegisterUser handles POST /api/users. It returns the existing user for a
// known username, so the fronting session layer can treat it as a login.
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.GetOrCreateUser(r.Context(), req.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// GetMe handles GET /api/users/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), userIDFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// GetTransactions handles GET /api/wallet/transactions
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	entries, err := h.users.GetLedger(r.Context(), userIDFrom(r), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"transactions": entries})
}
