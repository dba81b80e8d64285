package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"luckypot/api"
	"luckypot/config"
	"luckypot/database"
	"luckypot/events"
	"luckypot/gateway"
	"luckypot/repository"
	"luckypot/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting luckypot server...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// The Chapa client serves both directions: checkout for deposits and
	// transfers for withdrawals
	chapa := gateway.NewChapaClient(cfg.GatewayBaseURL, cfg.GatewaySecretKey)

	// Initialize services
	userService := service.NewUserService(uowFactory)
	gameService := service.NewGameService(uowFactory, service.NewNumberPicker())
	depositService := service.NewDepositService(uowFactory, chapa)
	withdrawalService := service.NewWithdrawalService(uowFactory, chapa)
	queueService := service.NewQueueService(uowFactory)

	// Route domain events to the notifier after commit
	subscribeNotifications(eventBus, service.NewLogNotifier())

	// Initialize HTTP server
	handler := api.NewHandler(userService, gameService, depositService, withdrawalService, queueService, cfg.WebhookSecret)
	server := api.NewServer(cfg.ListenAddr, api.NewRouter(handler, cfg.AdminToken))

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s in %s mode...", cfg.ListenAddr, cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		db.Close()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}

	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}

// subscribeNotifications wires committed domain events to the notifier
func subscribeNotifications(bus *events.Bus, notifier service.Notifier) {
	bus.Subscribe(events.EventTypeGameCompleted, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.GameCompletedEvent); ok {
			notifier.GameWon(ctx, e.GameID, e.WinnerID, e.TotalWin)
		}
	})

	bus.Subscribe(events.EventTypeWithdrawalStateChange, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.WithdrawalStateChangeEvent)
		if !ok {
			return
		}
		switch e.NewStatus {
		case "manual_processing":
			notifier.WithdrawalQueued(ctx, e.TransactionRef, e.UserID, e.Amount)
		case "completed":
			notifier.WithdrawalCompleted(ctx, e.TransactionRef, e.UserID, e.Amount)
		case "failed":
			notifier.WithdrawalFailed(ctx, e.TransactionRef, e.UserID, e.Amount)
		}
	})
}
