package service

import (
	"context"
	"fmt"

	"luckypot/models"
)

type queueService struct {
	uowFactory UnitOfWorkFactory
}

// NewQueueService creates a new manual queue read service
func NewQueueService(uowFactory UnitOfWorkFactory) QueueService {
	return &queueService{
		uowFactory: uowFactory,
	}
}

// List returns the queue ordered by priority then age
func (s *queueService) List(ctx context.Context) ([]*models.QueueEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.ManualWithdrawalRepository().ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entries, nil
}

// Stats aggregates the pending queue
func (s *queueService) Stats(ctx context.Context) (*models.QueueStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stats, err := uow.ManualWithdrawalRepository().Stats(ctx)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return stats, nil
}
