package service

import (
	"context"
	"testing"

	"luckypot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupQueueServiceTest() (QueueService, *MockUnitOfWork, *MockManualWithdrawalRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockManualRepo := new(MockManualWithdrawalRepository)

	mockUoW.SetRepositories(nil, nil, nil, nil, mockManualRepo)
	mockFactory.On("Create").Return(mockUoW)

	service := NewQueueService(mockFactory)
	return service, mockUoW, mockManualRepo
}

func TestQueueService_List(t *testing.T) {
	ctx := context.Background()
	service, mockUoW, mockManualRepo := setupQueueServiceTest()

	entries := []*models.QueueEntry{
		{ManualWithdrawal: models.ManualWithdrawal{TransactionRef: "WD_urgent", Priority: models.QueuePriorityUrgent}, Username: "abebe"},
		{ManualWithdrawal: models.ManualWithdrawal{TransactionRef: "WD_normal", Priority: models.QueuePriorityNormal}, Username: "chaltu"},
	}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockManualRepo.On("ListActive", ctx).Return(entries, nil)

	got, err := service.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestQueueService_Stats(t *testing.T) {
	ctx := context.Background()
	service, mockUoW, mockManualRepo := setupQueueServiceTest()

	stats := &models.QueueStats{TotalPending: 3, TotalAmount: 9200000, HighCount: 1, UrgentCount: 1}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockManualRepo.On("Stats", ctx).Return(stats, nil)

	got, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats, got)
}
