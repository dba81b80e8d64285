package models

import (
	"time"
)

// QueuePriority represents the urgency band of a queued manual withdrawal
type QueuePriority string

const (
	QueuePriorityLow    QueuePriority = "low"
	QueuePriorityNormal QueuePriority = "normal"
	QueuePriorityHigh   QueuePriority = "high"
	QueuePriorityUrgent QueuePriority = "urgent"
)

// Rank returns the ordering weight of the priority, higher first
func (p QueuePriority) Rank() int {
	switch p {
	case QueuePriorityUrgent:
		return 4
	case QueuePriorityHigh:
		return 3
	case QueuePriorityNormal:
		return 2
	case QueuePriorityLow:
		return 1
	}
	return 0
}

// Manual queue entry statuses. A resolved entry keeps its row as an
// audit record of the operator's decision.
const (
	ManualStatusPending  = "pending"
	ManualStatusApproved = "approved"
	ManualStatusRejected = "rejected"
)

// ManualWithdrawal represents a withdrawal waiting for operator review
type ManualWithdrawal struct {
	ID             int64           `db:"id"`
	TransactionRef string          `db:"transaction_ref"`
	UserID         int64           `db:"user_id"`
	Amount         int64           `db:"amount"`
	Priority       QueuePriority   `db:"priority"`
	Status         string          `db:"status"`
	Details        *AccountDetails `db:"details"`
	Notes          *string         `db:"notes"`
	QueuedAt       time.Time       `db:"queued_at"`
	ProcessedAt    *time.Time      `db:"processed_at"`
}

// QueueEntry is the admin listing read model joining the requester's name
type QueueEntry struct {
	ManualWithdrawal
	Username string `db:"username"`
}

// QueueStats aggregates the pending manual queue for the admin dashboard
type QueueStats struct {
	TotalPending int64 `db:"total_pending"`
	TotalAmount  int64 `db:"total_amount"`
	HighCount    int64 `db:"high_count"`
	UrgentCount  int64 `db:"urgent_count"`
}
