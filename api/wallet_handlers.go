package api

import (
	"net/http"

	"luckypot/models"
)

type depositRequest struct {
	Amount int64 `json:"amount"`
}

// InitiateDeposit handles POST /api/wallet/deposits
func (h *Handler) InitiateDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	gt, err := h.deposits.Initiate(r.Context(), userIDFrom(r), req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"transaction_ref": gt.TransactionRef,
		"checkout_url":    gt.CheckoutURL,
	})
}

type verifyDepositRequest struct {
	TransactionRef string `json:"transaction_ref"`
}

// VerifyDeposit handles POST /api/wallet/deposits/verify. It re-checks the
// deposit with the gateway, so the user can poll after returning from
// checkout even when no webhook has arrived yet.
func (h *Handler) VerifyDeposit(w http.ResponseWriter, r *http.Request) {
	var req verifyDepositRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.TransactionRef == "" {
		writeError(w, http.StatusBadRequest, "transaction_ref required")
		return
	}

	if err := h.deposits.Confirm(r.Context(), req.TransactionRef); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

type withdrawalRequest struct {
	Amount        int64  `json:"amount"`
	Method        string `json:"method"`
	BankCode      string `json:"bank_code"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	Provider      string `json:"provider"`
	PhoneNumber   string `json:"phone_number"`
}

// SubmitWithdrawal handles POST /api/wallet/withdrawals
func (h *Handler) SubmitWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req withdrawalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	gt, err := h.withdrawals.Submit(r.Context(), userIDFrom(r), req.Amount, models.PayoutMethod(req.Method), models.AccountDetails{
		BankCode:      req.BankCode,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		Provider:      req.Provider,
		PhoneNumber:   req.PhoneNumber,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"transaction_ref": gt.TransactionRef,
		"status":          gt.Status,
	})
}
