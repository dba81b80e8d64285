package service

import (
	"context"
	"fmt"

	"luckypot/config"
	"luckypot/gateway"
	"luckypot/models"

	log "github.com/sirupsen/logrus"
)

type depositService struct {
	uowFactory UnitOfWorkFactory
	payments   gateway.PaymentGateway
}

// NewDepositService creates a new deposit service
func NewDepositService(uowFactory UnitOfWorkFactory, payments gateway.PaymentGateway) DepositService {
	return &depositService{
		uowFactory: uowFactory,
		payments:   payments,
	}
}

// Initiate creates a pending deposit and opens a checkout session with the
// gateway. The pending row is committed before the gateway call so a crash
// mid-flight leaves a traceable record instead of an orphaned checkout.
func (s *depositService) Initiate(ctx context.Context, userID int64, amount int64) (*models.GatewayTransaction, error) {
	if amount < MinPaymentAmount || amount > MaxPaymentAmount {
		return nil, NewValidationError("deposit amount must be between %d and %d cents", MinPaymentAmount, MaxPaymentAmount)
	}

	ref, err := newTransactionRef("DEP_")
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NewNotFoundError("user %d not found", userID)
	}

	gt := &models.GatewayTransaction{
		TransactionRef: ref,
		UserID:         userID,
		Amount:         amount,
		Type:           models.GatewayTransactionTypeDeposit,
		Status:         models.GatewayStatusPending,
	}
	if err := uow.WithdrawalRepository().Create(ctx, gt); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	cfg := config.Get()
	init, err := s.payments.InitializePayment(ctx, &gateway.PaymentRequest{
		TxRef:       ref,
		Amount:      amount,
		FirstName:   user.Username,
		CallbackURL: cfg.PublicBaseURL + "/api/wallet/deposits/verify",
		ReturnURL:   cfg.PublicBaseURL + "/wallet",
	})
	if err != nil {
		if failErr := s.Fail(ctx, ref, err.Error()); failErr != nil {
			log.WithFields(log.Fields{
				"transactionRef": ref,
				"error":          failErr,
			}).Error("Failed to mark deposit failed")
		}
		return nil, NewExternalServiceError("checkout initialization failed", err)
	}

	gt.CheckoutURL = &init.CheckoutURL
	if err := s.saveCheckoutURL(ctx, gt); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"transactionRef": ref,
		"userID":         userID,
		"amount":         amount,
	}).Info("Deposit initiated")

	return gt, nil
}

func (s *depositService) saveCheckoutURL(ctx context.Context, gt *models.GatewayTransaction) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.WithdrawalRepository().Update(ctx, gt); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Confirm credits a deposit after re-verifying it with the gateway. The
// webhook payload alone is never trusted; the provider's verify endpoint is
// the source of truth.
func (s *depositService) Confirm(ctx context.Context, transactionRef string) error {
	result, err := s.payments.VerifyTransaction(ctx, transactionRef)
	if err != nil {
		return NewExternalServiceError("payment verification failed", err)
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
		return NewNotFoundError("deposit %q not found", transactionRef)
	}
	if gt.Type != models.GatewayTransactionTypeDeposit {
		return NewValidationError("%q is not a deposit", transactionRef)
	}
	if gt.Status != models.GatewayStatusPending {
		return NewConflictError("deposit %q is already %s", transactionRef, gt.Status)
	}

	if !result.Succeeded() {
		return NewConflictError("deposit %q has not settled with the gateway", transactionRef)
	}
	if result.Amount != gt.Amount {
		return NewIntegrityError("deposit %q amount mismatch: expected %d, gateway reports %d", transactionRef, gt.Amount, result.Amount)
	}

	if err := credit(ctx, uow, gt.UserID, gt.Amount, models.TransactionTypeDeposit, &gt.TransactionRef, nil); err != nil {
		return err
	}

	gt.Status = models.GatewayStatusCompleted
	if err := uow.WithdrawalRepository().Update(ctx, gt); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"transactionRef": transactionRef,
		"userID":         gt.UserID,
		"amount":         gt.Amount,
	}).Info("Deposit confirmed")

	return nil
}

// Fail marks a pending deposit as failed. Already-failed deposits are a
// no-op so gateway callbacks can be redelivered safely.
func (s *depositService) Fail(ctx context.Context, transactionRef string, reason string) error {
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
		return NewNotFoundError("deposit %q not found", transactionRef)
	}
	if gt.Type != models.GatewayTransactionTypeDeposit {
		return NewValidationError("%q is not a deposit", transactionRef)
	}
	if gt.Status == models.GatewayStatusFailed {
		return nil
	}
	if gt.Status != models.GatewayStatusPending {
		return NewConflictError("deposit %q is already %s", transactionRef, gt.Status)
	}

	gt.Status = models.GatewayStatusFailed
	gt.ErrorMessage = &reason
	if err := uow.WithdrawalRepository().Update(ctx, gt); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
