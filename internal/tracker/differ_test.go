package tracker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bfmc-tracker/internal/config"
	"bfmc-tracker/internal/domain"
)

func snapshotWith(id int, elapsed string, playerCount int) domain.ServerSnapshot {
	players := make([]domain.SnapshotPlayer, playerCount)
	for i := range players {
		players[i] = domain.SnapshotPlayer{Name: "p", Team: i % 2}
	}
	return domain.ServerSnapshot{
		ID:          id,
		ServerName:  "test server",
		MapName:     "backstab",
		TimeElapsed: elapsed,
		GameType:    "conquest",
		Players:     players,
	}
}

func TestClassify(t *testing.T) {
	settings := config.TrackerSettings{
		MatchMinPlayers: 2,
		MatchMinTimeSec: 60,
	}

	tests := []struct {
		name       string
		prev       domain.ServerSnapshot
		cur        *domain.ServerSnapshot
		inPostGame bool
		want       Change
	}{
		{
			name: "equal elapsed means finished",
			prev: snapshotWith(1, "00:10:00", 4),
			cur:  ptr(snapshotWith(1, "00:10:00", 4)),
			want: ChangeFinishedGame,
		},
		{
			name:       "already post-game stays unchanged",
			prev:       snapshotWith(1, "00:10:00", 4),
			cur:        ptr(snapshotWith(1, "00:10:00", 4)),
			inPostGame: true,
			want:       ChangeUnchanged,
		},
		{
			name: "too few players never finishes",
			prev: snapshotWith(1, "00:10:00", 1),
			cur:  ptr(snapshotWith(1, "00:10:00", 1)),
			want: ChangeUnchanged,
		},
		{
			name: "too short a match never finishes",
			prev: snapshotWith(1, "00:00:30", 4),
			cur:  ptr(snapshotWith(1, "00:00:30", 4)),
			want: ChangeUnchanged,
		},
		{
			name: "running clock is unchanged",
			prev: snapshotWith(1, "00:10:00", 4),
			cur:  ptr(snapshotWith(1, "00:10:30", 4)),
			want: ChangeUnchanged,
		},
		{
			name:       "clock reset while post-game starts a new game",
			prev:       snapshotWith(1, "00:10:00", 4),
			cur:        ptr(snapshotWith(1, "00:00:05", 4)),
			inPostGame: true,
			want:       ChangeNewGame,
		},
		{
			name: "clock reset without post-game is unchanged",
			prev: snapshotWith(1, "00:10:00", 4),
			cur:  ptr(snapshotWith(1, "00:00:05", 4)),
			want: ChangeUnchanged,
		},
		{
			name: "missing from current poll is offline",
			prev: snapshotWith(1, "00:10:00", 4),
			cur:  nil,
			want: ChangeGoneOffline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := map[int]domain.ServerSnapshot{}
			if tt.cur != nil {
				current[tt.cur.ID] = *tt.cur
			}

			got, err := Classify(tt.prev, current, tt.inPostGame, settings)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyMalformedTime(t *testing.T) {
	settings := config.TrackerSettings{MatchMinPlayers: 2, MatchMinTimeSec: 60}

	prev := snapshotWith(1, "twenty minutes", 4)
	current := map[int]domain.ServerSnapshot{1: snapshotWith(1, "00:10:00", 4)}

	_, err := Classify(prev, current, false, settings)
	require.ErrorIs(t, err, domain.ErrMalformedTime)

	// the error hits only this server, the offline path is unaffected
	change, err := Classify(prev, map[int]domain.ServerSnapshot{}, false, settings)
	require.NoError(t, err)
	require.Equal(t, ChangeGoneOffline, change)
}

func TestPostGameTracker(t *testing.T) {
	pg := NewPostGameTracker()
	require.False(t, pg.Contains(1))

	pg.Mark(1)
	pg.Mark(2)
	require.True(t, pg.Contains(1))
	require.Equal(t, 2, pg.Len())

	pg.Unmark(1)
	require.False(t, pg.Contains(1))
	require.Equal(t, 1, pg.Len())

	// unmark of an untracked id is a no-op
	pg.Unmark(99)
	require.Equal(t, 1, pg.Len())
}

func ptr(s domain.ServerSnapshot) *domain.ServerSnapshot {
	return &s
}
