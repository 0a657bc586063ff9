package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"bfmc-tracker/internal/database"
	"bfmc-tracker/internal/domain"
	"bfmc-tracker/internal/repository"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "stats.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newStatsService(t *testing.T) (*StatsService, *repository.PlayerStatsRepository, *repository.MapStatsRepository) {
	t.Helper()

	db := newTestDB(t)
	playerRepo := repository.NewPlayerStatsRepository(db, zerolog.Nop())
	mapRepo := repository.NewMapStatsRepository(db, zerolog.Nop())
	return NewStatsService(playerRepo, mapRepo, zerolog.Nop()), playerRepo, mapRepo
}

func testSnapshot() domain.ServerSnapshot {
	return domain.ServerSnapshot{
		ID:           7,
		ServerName:   "[EU] All Maps 24/7",
		MapName:      "backstab",
		TimeElapsed:  "00:20:00",
		Team1Country: "US",
		Team2Country: "CH",
		Team1Score:   120,
		Team2Score:   80,
		GameType:     "conquest",
		Players: []domain.SnapshotPlayer{
			{Name: "Alice", Score: 30, Deaths: 4, Team: 0},
			{Name: "Bob", Score: 22, Deaths: 9, Team: 1},
		},
	}
}

func TestComputeTopPlayer(t *testing.T) {
	svc, _, _ := newStatsService(t)

	tests := []struct {
		name    string
		players []domain.SnapshotPlayer
		want    string
		wantErr bool
	}{
		{
			name: "highest score wins",
			players: []domain.SnapshotPlayer{
				{Name: "a", Score: 5}, {Name: "b", Score: 9}, {Name: "c", Score: 7},
			},
			want: "b",
		},
		{
			name: "score tie broken by fewer deaths",
			players: []domain.SnapshotPlayer{
				{Name: "a", Score: 10, Deaths: 2}, {Name: "b", Score: 10, Deaths: 1},
			},
			want: "b",
		},
		{
			name: "full tie goes to first listed",
			players: []domain.SnapshotPlayer{
				{Name: "a", Score: 10, Deaths: 3}, {Name: "b", Score: 10, Deaths: 3},
			},
			want: "a",
		},
		{
			name:    "single participant is invalid",
			players: []domain.SnapshotPlayer{{Name: "lonely", Score: 50}},
			wantErr: true,
		},
		{
			name:    "empty is invalid",
			players: nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := testSnapshot()
			snapshot.Players = tt.players

			top, err := svc.ComputeTopPlayer(snapshot)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidMatchData)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, top.Name)
		})
	}
}

func TestRecordPlayerStatsTooFewParticipants(t *testing.T) {
	svc, playerRepo, _ := newStatsService(t)
	ctx := context.Background()

	snapshot := testSnapshot()
	snapshot.Players = snapshot.Players[:1]

	_, err := svc.RecordPlayerStats(ctx, snapshot)
	require.ErrorIs(t, err, domain.ErrInvalidMatchData)

	count, err := playerRepo.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count, "no record may be mutated for an invalid snapshot")
}

func TestRecordPlayerStatsFirstSeen(t *testing.T) {
	svc, playerRepo, _ := newStatsService(t)
	ctx := context.Background()

	top, err := svc.RecordPlayerStats(ctx, testSnapshot())
	require.NoError(t, err)
	require.Equal(t, "Alice", top)

	alice, err := playerRepo.GetByNickname(ctx, "Alice")
	require.NoError(t, err)
	require.NotNil(t, alice)
	require.Equal(t, time.Now().Format("2006-01-02"), alice.FirstSeen.Format("2006-01-02"))
	require.Equal(t, 30, alice.Score)
	require.Equal(t, 4, alice.Deaths)
	require.Equal(t, 1, alice.USGames)
	require.Equal(t, 0, alice.CHGames)
	require.Equal(t, 1, alice.CQGames)
	require.Equal(t, 0, alice.CFGames)
	require.Equal(t, 1, alice.Wins)
	require.Equal(t, 0, alice.Losses)
	require.Equal(t, 1, alice.TopPlayer)

	bob, err := playerRepo.GetByNickname(ctx, "Bob")
	require.NoError(t, err)
	require.Equal(t, 1, bob.CHGames)
	require.Equal(t, 0, bob.Wins)
	require.Equal(t, 1, bob.Losses)
	require.Equal(t, 0, bob.TopPlayer)
}

func TestRecordPlayerStatsDraw(t *testing.T) {
	svc, playerRepo, _ := newStatsService(t)
	ctx := context.Background()

	snapshot := testSnapshot()
	snapshot.Team1Score = 3
	snapshot.Team2Score = 3
	snapshot.Players = []domain.SnapshotPlayer{
		{Name: "Alice", Score: 10, Deaths: 2, Team: 0},
		{Name: "Bob", Score: 10, Deaths: 1, Team: 1},
	}

	top, err := svc.RecordPlayerStats(ctx, snapshot)
	require.NoError(t, err)
	require.Equal(t, "Bob", top, "score tie must break on fewer deaths")

	alice, err := playerRepo.GetByNickname(ctx, "Alice")
	require.NoError(t, err)
	require.Equal(t, 1, alice.USGames)
	require.Zero(t, alice.Wins)
	require.Zero(t, alice.Losses)

	bob, err := playerRepo.GetByNickname(ctx, "Bob")
	require.NoError(t, err)
	require.Equal(t, 1, bob.CHGames)
	require.Zero(t, bob.Wins)
	require.Zero(t, bob.Losses)
	require.Equal(t, 1, bob.TopPlayer)
}

// Recording the same snapshot twice doubles every counter. That is the
// documented contract: at-most-once is the poll loop's job, not this
// layer's.
func TestRecordPlayerStatsDoubleInvocation(t *testing.T) {
	svc, playerRepo, _ := newStatsService(t)
	ctx := context.Background()

	snapshot := testSnapshot()
	_, err := svc.RecordPlayerStats(ctx, snapshot)
	require.NoError(t, err)
	_, err = svc.RecordPlayerStats(ctx, snapshot)
	require.NoError(t, err)

	alice, err := playerRepo.GetByNickname(ctx, "Alice")
	require.NoError(t, err)
	require.Equal(t, 60, alice.Score)
	require.Equal(t, 8, alice.Deaths)
	require.Equal(t, 2, alice.USGames)
	require.Equal(t, 2, alice.CQGames)
	require.Equal(t, 2, alice.Wins)
	require.Equal(t, 2, alice.TopPlayer)
}

func TestRecordPlayerStatsBuckets(t *testing.T) {
	svc, playerRepo, _ := newStatsService(t)
	ctx := context.Background()

	snapshot := testSnapshot()
	snapshot.GameType = "capturetheflag"
	snapshot.Team1Country = "AC"
	snapshot.Team2Country = "XX" // unknown code falls back to EU

	_, err := svc.RecordPlayerStats(ctx, snapshot)
	require.NoError(t, err)

	alice, err := playerRepo.GetByNickname(ctx, "Alice")
	require.NoError(t, err)
	require.Equal(t, 1, alice.ACGames)
	require.Equal(t, 1, alice.CFGames)
	require.Equal(t, 0, alice.CQGames)

	bob, err := playerRepo.GetByNickname(ctx, "Bob")
	require.NoError(t, err)
	require.Equal(t, 1, bob.EUGames)
	require.Equal(t, 1, bob.CFGames)
}

func TestRecordMapStats(t *testing.T) {
	svc, _, mapRepo := newStatsService(t)
	ctx := context.Background()

	snapshot := testSnapshot()
	require.NoError(t, svc.RecordMapStats(ctx, snapshot))
	require.NoError(t, svc.RecordMapStats(ctx, snapshot))

	snapshot.GameType = "capturetheflag"
	require.NoError(t, svc.RecordMapStats(ctx, snapshot))

	m, err := mapRepo.Get(ctx, 0)
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Equal(t, "backstab", m.MapName)
	require.Equal(t, 2, m.Conquest)
	require.Equal(t, 1, m.CaptureTheFlag)
}

func TestRecordMapStatsUnknownMap(t *testing.T) {
	svc, _, _ := newStatsService(t)

	snapshot := testSnapshot()
	snapshot.MapName = "not_a_real_map"
	require.ErrorIs(t, svc.RecordMapStats(context.Background(), snapshot), domain.ErrInvalidMatchData)
}
