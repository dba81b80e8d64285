package events

import (
	"context"
	"sync"

	"luckypot/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange         EventType = "balance_change"
	EventTypeUserCreated           EventType = "user_created"
	EventTypeGameStarted           EventType = "game_started"
	EventTypeGameCompleted         EventType = "game_completed"
	EventTypeGameCanceled          EventType = "game_canceled"
	EventTypeWithdrawalStateChange EventType = "withdrawal_state_change"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64
	OldBalance      int64
	NewBalance      int64
	TransactionType models.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a new user creation
type UserCreatedEvent struct {
	UserID         int64
	Username       string
	InitialBalance int64
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// GameStartedEvent represents a game reaching its player cap and starting
type GameStartedEvent struct {
	GameID      int64
	PlayerCount int
}

func (e GameStartedEvent) Type() EventType {
	return EventTypeGameStarted
}

// GameCompletedEvent represents a finished draw with a winner
type GameCompletedEvent struct {
	GameID        int64
	WinnerID      int64
	WinningNumber int
	TotalWin      int64
}

func (e GameCompletedEvent) Type() EventType {
	return EventTypeGameCompleted
}

// GameCanceledEvent represents a canceled game after all refunds
type GameCanceledEvent struct {
	GameID         int64
	RefundedCount  int
	RefundPerEntry int64
}

func (e GameCanceledEvent) Type() EventType {
	return EventTypeGameCanceled
}

// WithdrawalStateChangeEvent represents a withdrawal request state transition
type WithdrawalStateChangeEvent struct {
	TransactionRef string
	UserID         int64
	Amount         int64
	OldStatus      string
	NewStatus      string
}

func (e WithdrawalStateChangeEvent) Type() EventType {
	return EventTypeWithdrawalStateChange
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// A transactional event bus for holding pending events coupled to the Unit of Work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Events outlive the transaction context that produced them
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
