package repository

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"bfmc-tracker/internal/gamedata"
)

func TestUpsertBucketLeavesOtherBucketUntouched(t *testing.T) {
	repo := NewMapStatsRepository(newTestDB(t), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.UpsertBucket(ctx, 3, "coldfront", gamedata.GamemodeConquest, 1))
	require.NoError(t, repo.UpsertBucket(ctx, 3, "coldfront", gamedata.GamemodeCaptureTheFlag, 4))
	require.NoError(t, repo.UpsertBucket(ctx, 3, "coldfront", gamedata.GamemodeConquest, 2))

	m, err := repo.Get(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Equal(t, "coldfront", m.MapName)
	require.Equal(t, 2, m.Conquest)
	require.Equal(t, 4, m.CaptureTheFlag)
}

func TestUpsertBucketRejectsUnknownGamemode(t *testing.T) {
	repo := NewMapStatsRepository(newTestDB(t), zerolog.Nop())

	err := repo.UpsertBucket(context.Background(), 1, "backstab", "deathmatch", 1)
	require.ErrorIs(t, err, ErrUnknownStat)
}

func TestGetMissingMap(t *testing.T) {
	repo := NewMapStatsRepository(newTestDB(t), zerolog.Nop())

	m, err := repo.Get(context.Background(), 99)
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestMostPlayedTieIsDeterministic(t *testing.T) {
	repo := NewMapStatsRepository(newTestDB(t), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.UpsertBucket(ctx, 5, "harboredge", gamedata.GamemodeConquest, 3))
	require.NoError(t, repo.UpsertBucket(ctx, 2, "bridgetoofar", gamedata.GamemodeConquest, 3))

	// equal counts: lowest map id wins, and repeated queries agree
	for range 3 {
		m, err := repo.MostPlayed(ctx, gamedata.GamemodeConquest)
		require.NoError(t, err)
		require.NotNil(t, m)
		require.Equal(t, 2, m.MapID)
	}
}

func TestMostPlayedEmpty(t *testing.T) {
	repo := NewMapStatsRepository(newTestDB(t), zerolog.Nop())

	m, err := repo.MostPlayed(context.Background(), gamedata.GamemodeCaptureTheFlag)
	require.NoError(t, err)
	require.Nil(t, m)
}
