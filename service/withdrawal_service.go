package service

import (
	"context"
	"fmt"
	"strings"

	"luckypot/events"
	"luckypot/gateway"
	"luckypot/models"

	log "github.com/sirupsen/logrus"
)

type withdrawalService struct {
	uowFactory UnitOfWorkFactory
	transfers  gateway.TransferGateway
}

// NewWithdrawalService creates a new withdrawal service
func NewWithdrawalService(uowFactory UnitOfWorkFactory, transfers gateway.TransferGateway) WithdrawalService {
	return &withdrawalService{
		uowFactory: uowFactory,
		transfers:  transfers,
	}
}

// Submit escrows the amount and routes the withdrawal. Small amounts to
// supported destinations go straight to the transfer gateway; everything
// else lands in the manual review queue.
func (s *withdrawalService) Submit(ctx context.Context, userID int64, amount int64, method models.PayoutMethod, details models.AccountDetails) (*models.GatewayTransaction, error) {
	if amount < MinPaymentAmount || amount > MaxPaymentAmount {
		return nil, NewValidationError("withdrawal amount must be between %d and %d cents", MinPaymentAmount, MaxPaymentAmount)
	}
	if err := validateDestination(method, details); err != nil {
		return nil, err
	}

	ref, err := newTransactionRef("WD_")
	if err != nil {
		return nil, err
	}

	automatic := amount <= AutoWithdrawalThreshold && destinationSupported(method, details)

	gt, err := s.escrow(ctx, userID, amount, ref, method, details, automatic)
	if err != nil {
		return nil, err
	}

	if !automatic {
		return gt, nil
	}

	// The escrow is committed, so a gateway failure refunds in a fresh
	// transaction instead of rolling the request back.
	if err := s.processAutomatic(ctx, gt, details); err != nil {
		return nil, err
	}

	return gt, nil
}

// escrow debits the user and records the withdrawal request in one
// transaction. Automatic withdrawals leave in pending status for the
// gateway call; manual ones are queued immediately.
func (s *withdrawalService) escrow(ctx context.Context, userID int64, amount int64, ref string, method models.PayoutMethod, details models.AccountDetails, automatic bool) (*models.GatewayTransaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	outstanding, err := uow.WithdrawalRepository().GetOutstandingWithdrawal(ctx, userID)
	if err != nil {
		return nil, err
	}
	if outstanding != nil {
		return nil, NewConflictError("withdrawal %s is still being processed", outstanding.TransactionRef)
	}

	if err := debit(ctx, uow, userID, amount, models.TransactionTypeWithdrawalRequest, &ref, nil); err != nil {
		return nil, err
	}

	status := models.GatewayStatusPending
	if !automatic {
		status = models.GatewayStatusManualProcessing
	}

	gt := &models.GatewayTransaction{
		TransactionRef: ref,
		UserID:         userID,
		Amount:         amount,
		Type:           models.GatewayTransactionTypeWithdraw,
		Status:         status,
		Method:         &method,
		AccountDetails: &details,
	}
	if err := uow.WithdrawalRepository().Create(ctx, gt); err != nil {
		return nil, err
	}

	if !automatic {
		if err := uow.ManualWithdrawalRepository().Enqueue(ctx, &models.ManualWithdrawal{
			TransactionRef: ref,
			UserID:         userID,
			Amount:         amount,
			Priority:       priorityForAmount(amount),
			Details:        &details,
		}); err != nil {
			return nil, err
		}

		uow.EventBus().Publish(events.WithdrawalStateChangeEvent{
			TransactionRef: ref,
			UserID:         userID,
			Amount:         amount,
			NewStatus:      string(models.GatewayStatusManualProcessing),
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"transactionRef": ref,
		"userID":         userID,
		"amount":         amount,
		"automatic":      automatic,
	}).Info("Withdrawal submitted")

	return gt, nil
}

// processAutomatic hands the withdrawal to the transfer gateway. A gateway
// acceptance settles the request immediately with the provider's receipt;
// a submission failure refunds immediately. Webhook redeliveries after
// either outcome are idempotent confirmations.
func (s *withdrawalService) processAutomatic(ctx context.Context, gt *models.GatewayTransaction, details models.AccountDetails) error {
	accountNumber := details.AccountNumber
	bankCode := details.BankCode
	if *gt.Method == models.PayoutMethodMobileMoney {
		accountNumber = details.PhoneNumber
		bankCode = details.Provider
	}

	receipt, err := s.transfers.SubmitTransfer(ctx, &gateway.TransferRequest{
		Reference:     gt.TransactionRef,
		Amount:        gt.Amount,
		AccountName:   details.AccountName,
		AccountNumber: accountNumber,
		BankCode:      bankCode,
	})
	if err != nil {
		log.WithFields(log.Fields{
			"transactionRef": gt.TransactionRef,
			"error":          err,
		}).Warn("Transfer submission failed, refunding")

		if refundErr := s.refund(ctx, gt.TransactionRef, err.Error()); refundErr != nil {
			return refundErr
		}
		return NewExternalServiceError("transfer submission failed", err)
	}

	return s.markCompleted(ctx, gt, receipt.ProviderRef)
}

// markCompleted settles an accepted transfer with its provider reference.
// Settling here rather than waiting on a transfer webhook keeps the
// one-outstanding-withdrawal slot from being held by a lost delivery.
func (s *withdrawalService) markCompleted(ctx context.Context, gt *models.GatewayTransaction, providerRef string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	gt.Status = models.GatewayStatusCompleted
	if providerRef != "" {
		gt.ProviderRef = &providerRef
	}
	if err := uow.WithdrawalRepository().Update(ctx, gt); err != nil {
		return err
	}

	uow.EventBus().Publish(events.WithdrawalStateChangeEvent{
		TransactionRef: gt.TransactionRef,
		UserID:         gt.UserID,
		Amount:         gt.Amount,
		OldStatus:      string(models.GatewayStatusPending),
		NewStatus:      string(models.GatewayStatusCompleted),
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"transactionRef": gt.TransactionRef,
		"providerRef":    providerRef,
	}).Info("Withdrawal transfer settled")

	return nil
}

// refund returns escrowed funds and marks the withdrawal failed
func (s *withdrawalService) refund(ctx context.Context, transactionRef, reason string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	gt, err := uow.WithdrawalRepository().GetByRefForUpdate(ctx, transactionRef)
	if err != nil {
		return err
	}
	if gt == nil {
		return NewNotFoundError("withdrawal %q not found", transactionRef)
	}
	if !gt.Status.Outstanding() {
		return NewConflictError("withdrawal %q is already settled", transactionRef)
	}

	if err := credit(ctx, uow, gt.UserID, gt.Amount, models.TransactionTypeWithdrawalRefund, &gt.TransactionRef, nil); err != nil {
		return err
	}

	oldStatus := gt.Status
	gt.Status = models.GatewayStatusFailed
	gt.ErrorMessage = &reason
	if err := uow.WithdrawalRepository().Update(ctx, gt); err != nil {
		return err
	}

	uow.EventBus().Publish(events.WithdrawalStateChangeEvent{
		TransactionRef: gt.TransactionRef,
		UserID:         gt.UserID,
		Amount:         gt.Amount,
		OldStatus:      string(oldStatus),
		NewStatus:      string(models.GatewayStatusFailed),
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"transactionRef": transactionRef,
		"reason":         reason,
	}).Info("Withdrawal refunded")

	return nil
}

// AdminApprove marks a manually queued withdrawal as paid out. The funds
// were escrowed at submission, so only the statuses move.
func (s *withdrawalService) AdminApprove(ctx context.Context, transactionRef, notes string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	gt, err := uow.WithdrawalRepository().GetByRefForUpdate(ctx, transactionRef)
	if err != nil {
		return err
	}
	if gt == nil {
		return NewNotFoundError("withdrawal %q not found", transactionRef)
	}
	if gt.Status != models.GatewayStatusManualProcessing {
		return NewConflictError("withdrawal %q is not awaiting review", transactionRef)
	}

	gt.Status = models.GatewayStatusCompleted
	if err := uow.WithdrawalRepository().Update(ctx, gt); err != nil {
		return err
	}

	var operatorNotes *string
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		operatorNotes = &trimmed
	}
	if err := uow.ManualWithdrawalRepository().Resolve(ctx, transactionRef, models.ManualStatusApproved, operatorNotes); err != nil {
		return err
	}

	uow.EventBus().Publish(events.WithdrawalStateChangeEvent{
		TransactionRef: transactionRef,
		UserID:         gt.UserID,
		Amount:         gt.Amount,
		OldStatus:      string(models.GatewayStatusManualProcessing),
		NewStatus:      string(models.GatewayStatusCompleted),
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("transactionRef", transactionRef).Info("Withdrawal approved")

	return nil
}

// AdminReject refunds a manually queued withdrawal
func (s *withdrawalService) AdminReject(ctx context.Context, transactionRef string, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "rejected by operator"
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	gt, err := uow.WithdrawalRepository().GetByRefForUpdate(ctx, transactionRef)
	if err != nil {
		return err
	}
	if gt == nil {
		return NewNotFoundError("withdrawal %q not found", transactionRef)
	}
	if gt.Status != models.GatewayStatusManualProcessing {
		return NewConflictError("withdrawal %q is not awaiting review", transactionRef)
	}

	if err := credit(ctx, uow, gt.UserID, gt.Amount, models.TransactionTypeWithdrawalRefund, &gt.TransactionRef, nil); err != nil {
		return err
	}

	gt.Status = models.GatewayStatusFailed
	gt.ErrorMessage = &reason
	if err := uow.WithdrawalRepository().Update(ctx, gt); err != nil {
		return err
	}

	if err := uow.ManualWithdrawalRepository().Resolve(ctx, transactionRef, models.ManualStatusRejected, &reason); err != nil {
		return err
	}

	uow.EventBus().Publish(events.WithdrawalStateChangeEvent{
		TransactionRef: transactionRef,
		UserID:         gt.UserID,
		Amount:         gt.Amount,
		OldStatus:      string(models.GatewayStatusManualProcessing),
		NewStatus:      string(models.GatewayStatusFailed),
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"transactionRef": transactionRef,
		"reason":         reason,
	}).Info("Withdrawal rejected")

	return nil
}

// CompleteTransfer finalizes an automatic withdrawal after the gateway
// confirms the transfer. Already-completed withdrawals are a no-op so the
// webhook can be redelivered safely.
func (s *withdrawalService) CompleteTransfer(ctx context.Context, transactionRef string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	gt, err := uow.WithdrawalRepository().GetByRefForUpdate(ctx, transactionRef)
	if err != nil {
		return err
	}
	if gt == nil {
		return NewNotFoundError("withdrawal %q not found", transactionRef)
	}
	if gt.Type != models.GatewayTransactionTypeWithdraw {
		return NewValidationError("%q is not a withdrawal", transactionRef)
	}
	if gt.Status == models.GatewayStatusCompleted {
		return nil
	}
	if gt.Status != models.GatewayStatusProcessing {
		return NewConflictError("withdrawal %q is not processing", transactionRef)
	}

	gt.Status = models.GatewayStatusCompleted
	if err := uow.WithdrawalRepository().Update(ctx, gt); err != nil {
		return err
	}

	uow.EventBus().Publish(events.WithdrawalStateChangeEvent{
		TransactionRef: transactionRef,
		UserID:         gt.UserID,
		Amount:         gt.Amount,
		OldStatus:      string(models.GatewayStatusProcessing),
		NewStatus:      string(models.GatewayStatusCompleted),
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("transactionRef", transactionRef).Info("Withdrawal completed")

	return nil
}

// FailTransfer refunds an automatic withdrawal after the gateway reports
// the transfer failed. Already-failed withdrawals are a no-op.
func (s *withdrawalService) FailTransfer(ctx context.Context, transactionRef string, reason string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	gt, err := uow.WithdrawalRepository().GetByRefForUpdate(ctx, transactionRef)
	if err != nil {
		return err
	}
	if gt == nil {
		return NewNotFoundError("withdrawal %q not found", transactionRef)
	}
	if gt.Status == models.GatewayStatusFailed {
		return nil
	}
	if gt.Status != models.GatewayStatusProcessing {
		return NewConflictError("withdrawal %q is not processing", transactionRef)
	}

	if err := credit(ctx, uow, gt.UserID, gt.Amount, models.TransactionTypeWithdrawalRefund, &gt.TransactionRef, nil); err != nil {
		return err
	}

	gt.Status = models.GatewayStatusFailed
	gt.ErrorMessage = &reason
	if err := uow.WithdrawalRepository().Update(ctx, gt); err != nil {
		return err
	}

	uow.EventBus().Publish(events.WithdrawalStateChangeEvent{
		TransactionRef: transactionRef,
		UserID:         gt.UserID,
		Amount:         gt.Amount,
		OldStatus:      string(models.GatewayStatusProcessing),
		NewStatus:      string(models.GatewayStatusFailed),
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"transactionRef": transactionRef,
		"reason":         reason,
	}).Info("Withdrawal transfer failed, refunded")

	return nil
}

// validateDestination checks the payout destination has the fields its
// method requires
func validateDestination(method models.PayoutMethod, details models.AccountDetails) error {
	switch method {
	case models.PayoutMethodBankTransfer:
		if details.BankCode == "" || details.AccountNumber == "" || details.AccountName == "" {
			return NewValidationError("bank transfers require bank code, account number and account name")
		}
	case models.PayoutMethodMobileMoney:
		if details.Provider == "" || details.PhoneNumber == "" {
			return NewValidationError("mobile money requires provider and phone number")
		}
	default:
		return NewValidationError("unsupported payout method %q", method)
	}
	return nil
}
