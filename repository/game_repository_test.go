package repository

import (
	"context"
	"testing"

	"luckypot/models"
	"luckypot/repository/testutil"
	"luckypot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewGameRepository(testDB.DB)
	ctx := context.Background()

	creator, err := userRepo.Create(ctx, "creator", 100000)
	require.NoError(t, err)

	t.Run("not found returns nil", func(t *testing.T) {
		game, err := repo.GetByID(ctx, 99999)
		require.NoError(t, err)
		assert.Nil(t, game)

		game, err = repo.GetByIDForUpdate(ctx, 99999)
		require.NoError(t, err)
		assert.Nil(t, game)
	})

	t.Run("create defaults to waiting", func(t *testing.T) {
		game := testutil.CreateTestGame(creator.ID)
		game.Status = ""
		err := repo.Create(ctx, game)
		require.NoError(t, err)
		assert.NotZero(t, game.ID)

		fetched, err := repo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, models.GameStatusWaiting, fetched.Status)
		assert.Equal(t, game.BetAmount, fetched.BetAmount)
	})

	t.Run("update status", func(t *testing.T) {
		game := testutil.CreateTestGame(creator.ID)
		require.NoError(t, repo.Create(ctx, game))

		err := repo.UpdateStatus(ctx, game.ID, models.GameStatusStarted)
		require.NoError(t, err)

		fetched, err := repo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, models.GameStatusStarted, fetched.Status)
	})

	t.Run("update status of missing game", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, 99999, models.GameStatusCanceled)
		require.Error(t, err)
		assert.Equal(t, service.KindNotFound, service.KindOf(err))
	})
}

func TestGameRepository_Players(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewGameRepository(testDB.DB)
	ctx := context.Background()

	creator, err := userRepo.Create(ctx, "creator", 100000)
	require.NoError(t, err)
	other, err := userRepo.Create(ctx, "other", 100000)
	require.NoError(t, err)

	game := testutil.CreateTestGame(creator.ID)
	require.NoError(t, repo.Create(ctx, game))

	require.NoError(t, repo.AddPlayer(ctx, &models.GamePlayer{
		GameID: game.ID, UserID: creator.ID, LuckyNumber: 1,
	}))

	t.Run("duplicate user conflicts", func(t *testing.T) {
		err := repo.AddPlayer(ctx, &models.GamePlayer{
			GameID: game.ID, UserID: creator.ID, LuckyNumber: 2,
		})
		require.Error(t, err)
		assert.Equal(t, service.KindConflict, service.KindOf(err))
	})

	t.Run("taken lucky number conflicts", func(t *testing.T) {
		err := repo.AddPlayer(ctx, &models.GamePlayer{
			GameID: game.ID, UserID: other.ID, LuckyNumber: 1,
		})
		require.Error(t, err)
		assert.Equal(t, service.KindConflict, service.KindOf(err))
	})

	t.Run("count and list players", func(t *testing.T) {
		require.NoError(t, repo.AddPlayer(ctx, &models.GamePlayer{
			GameID: game.ID, UserID: other.ID, LuckyNumber: 3,
		}))

		count, err := repo.CountPlayers(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		players, err := repo.GetPlayers(ctx, game.ID)
		require.NoError(t, err)
		assert.Len(t, players, 2)

		taken, err := repo.TakenNumbers(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3}, taken)
	})

	t.Run("player by number", func(t *testing.T) {
		player, err := repo.GetPlayerByNumber(ctx, game.ID, 3)
		require.NoError(t, err)
		require.NotNil(t, player)
		assert.Equal(t, other.ID, player.UserID)

		player, err = repo.GetPlayerByNumber(ctx, game.ID, 2)
		require.NoError(t, err)
		assert.Nil(t, player)
	})
}

func TestGameRepository_Results(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewGameRepository(testDB.DB)
	ctx := context.Background()

	winner, err := userRepo.Create(ctx, "winner", 100000)
	require.NoError(t, err)

	game := testutil.CreateTestGameWithStakes(winner.ID, 1000, 2)
	require.NoError(t, repo.Create(ctx, game))
	require.NoError(t, repo.UpdateStatus(ctx, game.ID, models.GameStatusCompleted))

	result := &models.GameResult{
		GameID:        game.ID,
		WinningNumber: 2,
		WinningUserID: winner.ID,
		TotalWin:      2000,
	}
	require.NoError(t, repo.CreateResult(ctx, result))
	assert.NotZero(t, result.ID)

	t.Run("second result for the same game conflicts", func(t *testing.T) {
		err := repo.CreateResult(ctx, &models.GameResult{
			GameID:        game.ID,
			WinningNumber: 1,
			WinningUserID: winner.ID,
			TotalWin:      2000,
		})
		require.Error(t, err)
		assert.Equal(t, service.KindConflict, service.KindOf(err))
	})

	t.Run("history lists completed games", func(t *testing.T) {
		history, err := repo.GetHistory(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, game.ID, history[0].GameID)
		assert.Equal(t, "winner", history[0].WinnerName)
		assert.Equal(t, int64(2000), history[0].TotalWin)
	})

	t.Run("active listing excludes completed games", func(t *testing.T) {
		active, err := repo.GetActive(ctx)
		require.NoError(t, err)
		assert.Empty(t, active)

		waiting := testutil.CreateTestGame(winner.ID)
		require.NoError(t, repo.Create(ctx, waiting))

		active, err = repo.GetActive(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, waiting.ID, active[0].ID)
		assert.Equal(t, 0, active[0].PlayerCount)
		assert.Equal(t, "winner", active[0].CreatorName)
	})
}
