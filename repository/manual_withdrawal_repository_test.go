package repository

import (
	"context"
	"testing"

	"luckypot/models"
	"luckypot/repository/testutil"
	"luckypot/service"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualWithdrawalRepository_Queue(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewManualWithdrawalRepository(testDB.DB)
	ctx := context.Background()

	refs := []struct {
		username string
		ref      string
		amount   int64
		priority models.QueuePriority
	}{
		{"frank", "WD_normal", 1200000, models.QueuePriorityNormal},
		{"grace", "WD_urgent", 6000000, models.QueuePriorityUrgent},
		{"heidi", "WD_high", 2000000, models.QueuePriorityHigh},
	}

	// Each queue entry references a gateway row held by its own user. Seed
	// the whole fixture in one transaction so a half-written setup cannot
	// leak into the assertions.
	err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
		userRepo := newUserRepositoryWithTx(tx)
		gtRepo := newWithdrawalRepositoryWithTx(tx)
		manualRepo := newManualWithdrawalRepositoryWithTx(tx)

		for _, tc := range refs {
			user, err := userRepo.Create(ctx, tc.username, 10000000)
			if err != nil {
				return err
			}

			gt := testutil.CreateTestWithdrawal(user.ID, tc.ref, tc.amount)
			gt.Status = models.GatewayStatusManualProcessing
			if err := gtRepo.Create(ctx, gt); err != nil {
				return err
			}

			if err := manualRepo.Enqueue(ctx, testutil.CreateTestManualWithdrawal(user.ID, tc.ref, tc.amount, tc.priority)); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	t.Run("duplicate enqueue conflicts", func(t *testing.T) {
		userRepo := NewUserRepository(testDB.DB)
		user, err := userRepo.GetByUsername(ctx, "frank")
		require.NoError(t, err)

		err = repo.Enqueue(ctx, testutil.CreateTestManualWithdrawal(user.ID, "WD_normal", 1200000, models.QueuePriorityLow))
		require.Error(t, err)
		assert.Equal(t, service.KindConflict, service.KindOf(err))
	})

	t.Run("list orders by priority then age", func(t *testing.T) {
		entries, err := repo.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 3)

		assert.Equal(t, "WD_urgent", entries[0].TransactionRef)
		assert.Equal(t, "WD_high", entries[1].TransactionRef)
		assert.Equal(t, "WD_normal", entries[2].TransactionRef)
		assert.Equal(t, "grace", entries[0].Username)
	})

	t.Run("stats aggregate the pending queue", func(t *testing.T) {
		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.TotalPending)
		assert.Equal(t, int64(9200000), stats.TotalAmount)
		assert.Equal(t, int64(1), stats.HighCount)
		assert.Equal(t, int64(1), stats.UrgentCount)
	})

	t.Run("resolve keeps the entry as an audit record", func(t *testing.T) {
		notes := "paid via branch transfer"
		require.NoError(t, repo.Resolve(ctx, "WD_urgent", models.ManualStatusApproved, &notes))

		// The resolved entry leaves the active queue but stays queryable.
		entries, err := repo.ListActive(ctx)
		require.NoError(t, err)
		assert.Len(t, entries, 2)

		mw, err := repo.GetByRef(ctx, "WD_urgent")
		require.NoError(t, err)
		require.NotNil(t, mw)
		assert.Equal(t, models.ManualStatusApproved, mw.Status)
		require.NotNil(t, mw.Notes)
		assert.Equal(t, notes, *mw.Notes)
		require.NotNil(t, mw.ProcessedAt)
		assert.False(t, mw.ProcessedAt.Before(mw.QueuedAt))
	})

	t.Run("resolve is single-shot per entry", func(t *testing.T) {
		err := repo.Resolve(ctx, "WD_urgent", models.ManualStatusRejected, nil)
		require.Error(t, err)
		assert.Equal(t, service.KindNotFound, service.KindOf(err))
	})

	t.Run("resolve of a missing entry fails", func(t *testing.T) {
		err := repo.Resolve(ctx, "WD_gone", models.ManualStatusApproved, nil)
		require.Error(t, err)
		assert.Equal(t, service.KindNotFound, service.KindOf(err))
	})
}
