package service

import (
	"context"
	"testing"

	"luckypot/events"
	"luckypot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupUserServiceTest() (UserService, *MockUnitOfWork, *MockUserRepository, *MockLedgerRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockLedgerRepo := new(MockLedgerRepository)

	mockUoW.SetRepositories(mockUserRepo, mockLedgerRepo, nil, nil, nil)
	mockFactory.On("Create").Return(mockUoW)

	service := NewUserService(mockFactory)
	return service, mockUoW, mockUserRepo, mockLedgerRepo
}

func TestUserService_GetOrCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("returns an existing user", func(t *testing.T) {
		service, mockUoW, mockUserRepo, _ := setupUserServiceTest()

		existing := &models.User{ID: 1, Username: "abebe", Balance: 5000}

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByUsername", ctx, "abebe").Return(existing, nil)

		user, err := service.GetOrCreateUser(ctx, "abebe")
		require.NoError(t, err)
		assert.Equal(t, existing, user)

		mockUserRepo.AssertNotCalled(t, "Create")
		assert.Empty(t, mockUoW.Events())
	})

	t.Run("creates a missing user", func(t *testing.T) {
		service, mockUoW, mockUserRepo, _ := setupUserServiceTest()

		created := &models.User{ID: 2, Username: "chaltu", Balance: 0}

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByUsername", ctx, "chaltu").Return(nil, nil)
		mockUserRepo.On("Create", ctx, "chaltu", mock.AnythingOfType("int64")).Return(created, nil)

		user, err := service.GetOrCreateUser(ctx, "chaltu")
		require.NoError(t, err)
		assert.Equal(t, created, user)

		published := mockUoW.Events()
		require.Len(t, published, 1)
		createdEvent, ok := published[0].(events.UserCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, int64(2), createdEvent.UserID)
		assert.Equal(t, "chaltu", createdEvent.Username)
	})

	t.Run("trims whitespace", func(t *testing.T) {
		service, mockUoW, mockUserRepo, _ := setupUserServiceTest()

		existing := &models.User{ID: 1, Username: "abebe", Balance: 5000}

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByUsername", ctx, "abebe").Return(existing, nil)

		user, err := service.GetOrCreateUser(ctx, "  abebe  ")
		require.NoError(t, err)
		assert.Equal(t, "abebe", user.Username)
	})

	t.Run("rejects blank usernames", func(t *testing.T) {
		service, _, _, _ := setupUserServiceTest()

		user, err := service.GetOrCreateUser(ctx, "   ")
		require.Error(t, err)
		assert.Nil(t, user)
		assert.Equal(t, KindValidation, KindOf(err))
	})
}

func TestUserService_GetUser(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		service, mockUoW, mockUserRepo, _ := setupUserServiceTest()

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByID", ctx, int64(1)).Return(&models.User{ID: 1, Username: "abebe"}, nil)

		user, err := service.GetUser(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "abebe", user.Username)
	})

	t.Run("missing", func(t *testing.T) {
		service, mockUoW, mockUserRepo, _ := setupUserServiceTest()

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByID", ctx, int64(404)).Return(nil, nil)

		user, err := service.GetUser(ctx, 404)
		require.Error(t, err)
		assert.Nil(t, user)
		assert.Equal(t, KindNotFound, KindOf(err))
	})
}

func TestUserService_GetLedger_ClampsPaging(t *testing.T) {
	ctx := context.Background()
	service, mockUoW, _, mockLedgerRepo := setupUserServiceTest()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockLedgerRepo.On("GetByUser", ctx, int64(1), 20, 0).Return([]*models.LedgerEntry{}, nil).Once()
	_, err := service.GetLedger(ctx, 1, 0, -5)
	require.NoError(t, err)

	mockLedgerRepo.On("GetByUser", ctx, int64(1), 100, 40).Return([]*models.LedgerEntry{}, nil).Once()
	_, err = service.GetLedger(ctx, 1, 500, 40)
	require.NoError(t, err)

	mockLedgerRepo.AssertExpectations(t)
}
