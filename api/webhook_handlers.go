package api

import (
	"encoding/json"
	"io"
	"net/http"

	"luckypot/gateway"

	log "github.com/sirupsen/logrus"
)

type webhookPayload struct {
	Event     string `json:"event"`
	TxRef     string `json:"tx_ref"`
	Reference string `json:"reference"`
	Message   string `json:"message"`
}

func (p *webhookPayload) transactionRef() string {
	if p.TxRef != "" {
		return p.TxRef
	}
	return p.Reference
}

// PaymentWebhook handles POST /webhooks/payments. The signature is checked
// against the raw body before anything is parsed; deposit confirmations are
// additionally re-verified with the gateway inside the service.
func (h *Handler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get("Chapa-Signature")
	if signature == "" {
		signature = r.Header.Get("X-Chapa-Signature")
	}
	if !gateway.VerifySignature(body, signature, h.webhookSecret) {
		log.Warn("Webhook rejected: bad signature")
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	ref := payload.transactionRef()
	if ref == "" {
		writeError(w, http.StatusBadRequest, "missing transaction reference")
		return
	}

	reason := payload.Message
	if reason == "" {
		reason = "reported failed by gateway"
	}

	switch payload.Event {
	case "charge.success":
		err = h.deposits.Confirm(r.Context(), ref)
	case "charge.failed":
		err = h.deposits.Fail(r.Context(), ref, reason)
	case "transfer.success":
		err = h.withdrawals.CompleteTransfer(r.Context(), ref)
	case "transfer.failed":
		err = h.withdrawals.FailTransfer(r.Context(), ref, reason)
	default:
		log.WithField("event", payload.Event).Info("Ignoring webhook event")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if err != nil {
		log.WithFields(log.Fields{
			"event":          payload.Event,
			"transactionRef": ref,
			"error":          err,
		}).Warn("Webhook processing failed")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
