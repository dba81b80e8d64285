package api

import (
	"encoding/json"
	"net/http"

	"luckypot/service"

	log "github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps a domain error to an HTTP status. Messages for
// client errors come straight from the domain error; internal failures get
// a generic body so nothing leaks.
func writeServiceError(w http.ResponseWriter, err error) {
	switch service.KindOf(err) {
	case service.KindValidation:
		writeError(w, http.StatusBadRequest, err.Error())
	case service.KindNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case service.KindConflict:
		writeError(w, http.StatusConflict, err.Error())
	case service.KindInsufficientFunds:
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case service.KindExternalService:
		log.WithError(err).Warn("Upstream gateway error")
		writeError(w, http.StatusBadGateway, "payment gateway unavailable")
	case service.KindIntegrity:
		log.WithError(err).Error("Integrity error")
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		log.WithError(err).Error("Unhandled error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
