package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP routing tree over a Handler
func NewRouter(h *Handler, adminToken string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", h.RegisterUser)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Get("/users/me", h.GetMe)

			r.Route("/games", func(r chi.Router) {
				r.Get("/", h.ListGames)
				r.Post("/", h.CreateGame)
				r.Get("/history", h.GetGameHistory)
				r.Get("/{gameID}/numbers", h.GetAvailableNumbers)
				r.Post("/{gameID}/join", h.JoinGame)
				r.Post("/{gameID}/cancel", h.CancelGame)
				r.Post("/{gameID}/draw", h.DrawGame)
			})

			r.Route("/wallet", func(r chi.Router) {
				r.Post("/deposits", h.InitiateDeposit)
				r.Post("/deposits/verify", h.VerifyDeposit)
				r.Post("/withdrawals", h.SubmitWithdrawal)
				r.Get("/transactions", h.GetTransactions)
			})
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(requireAdmin(adminToken))

		r.Get("/withdrawals", h.ListQueue)
		r.Get("/withdrawals/stats", h.QueueStats)
		r.Post("/withdrawals/{ref}/approve", h.ApproveWithdrawal)
		r.Post("/withdrawals/{ref}/reject", h.RejectWithdrawal)
	})

	// Webhooks authenticate with the HMAC signature, not a user header
	r.Post("/webhooks/payments", h.PaymentWebhook)

	return r
}
