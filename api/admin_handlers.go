package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListQueue handles GET /admin/withdrawals
func (h *Handler) ListQueue(w http.ResponseWriter, r *http.Request) {
	entries, err := h.queue.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"withdrawals": entries})
}

// QueueStats handles GET /admin/withdrawals/stats
func (h *Handler) QueueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queue.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

type approveRequest struct {
	Notes string `json:"notes"`
}

// ApproveWithdrawal handles POST /admin/withdrawals/{ref}/approve
func (h *Handler) ApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")

	// Notes are optional, so tolerate an empty body.
	var req approveRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := h.withdrawals.AdminApprove(r.Context(), ref, req.Notes); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// RejectWithdrawal handles POST /admin/withdrawals/{ref}/reject
func (h *Handler) RejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")

	var req rejectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.withdrawals.AdminReject(r.Context(), ref, req.Reason); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "failed"})
}
