package service

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// logNotifier emits notifications to the structured log. A mail or push
// implementation can replace it behind the same interface.
type logNotifier struct{}

// NewLogNotifier creates the logging notifier
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) GameWon(ctx context.Context, gameID, winnerID int64, totalWin int64) {
	log.WithFields(log.Fields{
		"gameID":   gameID,
		"winnerID": winnerID,
		"totalWin": totalWin,
	}).Info("Notification: game won")
}

func (logNotifier) WithdrawalQueued(ctx context.Context, transactionRef string, userID int64, amount int64) {
	log.WithFields(log.Fields{
		"transactionRef": transactionRef,
		"userID":         userID,
		"amount":         amount,
	}).Info("Notification: withdrawal queued for review")
}

func (logNotifier) WithdrawalCompleted(ctx context.Context, transactionRef string, userID int64, amount int64) {
	log.WithFields(log.Fields{
		"transactionRef": transactionRef,
		"userID":         userID,
		"amount":         amount,
	}).Info("Notification: withdrawal completed")
}

func (logNotifier) WithdrawalFailed(ctx context.Context, transactionRef string, userID int64, amount int64) {
	log.WithFields(log.Fields{
		"transactionRef": transactionRef,
		"userID":         userID,
		"amount":         amount,
	}).Info("Notification: withdrawal failed")
}
