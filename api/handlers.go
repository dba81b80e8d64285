package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"luckypot/service"

	"github.com/go-chi/chi/v5"
)

// Handler wraps the application services and exposes HTTP handlers
type Handler struct {
	users         service.UserService
	games         service.GameService
	deposits      service.DepositService
	withdrawals   service.WithdrawalService
	queue         service.QueueService
	webhookSecret string
}

// NewHandler returns a new Handler over the application services
func NewHandler(
	users service.UserService,
	games service.GameService,
	deposits service.DepositService,
	withdrawals service.WithdrawalService,
	queue service.QueueService,
	webhookSecret string,
) *Handler {
	return &Handler{
		users:         users,
		games:         games,
		deposits:      deposits,
		withdrawals:   withdrawals,
		queue:         queue,
		webhookSecret: webhookSecret,
	}
}

// decodeJSON decodes a capped request body, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return errors.New("invalid JSON")
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}
