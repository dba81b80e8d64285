package repository

import (
	"context"
	"testing"

	"luckypot/repository/testutil"
	"luckypot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("not found returns nil", func(t *testing.T) {
		user, err := repo.GetByID(ctx, 99999)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("create and retrieve", func(t *testing.T) {
		created, err := repo.Create(ctx, "alice", 50000)
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.NotZero(t, created.ID)
		assert.Equal(t, int64(50000), created.Balance)

		byID, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, "alice", byID.Username)

		byName, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, byName)
		assert.Equal(t, created.ID, byName.ID)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		_, err := repo.Create(ctx, "alice", 0)
		require.Error(t, err)
		assert.Equal(t, service.KindConflict, service.KindOf(err))
	})
}

func TestUserRepository_Balances(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, err := repo.Create(ctx, "bob", 10000)
	require.NoError(t, err)

	t.Run("add balance", func(t *testing.T) {
		err := repo.AddBalance(ctx, user.ID, 5000)
		require.NoError(t, err)

		updated, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(15000), updated.Balance)
	})

	t.Run("deduct balance", func(t *testing.T) {
		err := repo.DeductBalance(ctx, user.ID, 15000)
		require.NoError(t, err)

		updated, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), updated.Balance)
	})

	t.Run("deduct beyond balance fails without mutating", func(t *testing.T) {
		err := repo.DeductBalance(ctx, user.ID, 1)
		require.Error(t, err)
		assert.Equal(t, service.KindInsufficientFunds, service.KindOf(err))

		updated, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), updated.Balance)
	})

	t.Run("deduct from missing user", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 99999, 100)
		require.Error(t, err)
		assert.Equal(t, service.KindNotFound, service.KindOf(err))
	})

	t.Run("add to missing user", func(t *testing.T) {
		err := repo.AddBalance(ctx, 99999, 100)
		require.Error(t, err)
		assert.Equal(t, service.KindNotFound, service.KindOf(err))
	})
}
