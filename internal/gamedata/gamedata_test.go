package gamedata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapByName(t *testing.T) {
	info, ok := MapByName("backstab")
	require.True(t, ok)
	require.Equal(t, "Backstab", info.DisplayName)
	require.Equal(t, 0, info.ID)

	_, ok = MapByName("not_a_map")
	require.False(t, ok)
}

func TestTeamName(t *testing.T) {
	require.Equal(t, "US Marine Corps", TeamName("US"))
	require.Equal(t, "European Union", TeamName("EU"))
	// unknown codes fall through unchanged
	require.Equal(t, "XX", TeamName("XX"))
}

func TestRankTitle(t *testing.T) {
	require.Equal(t, "Private", RankTitle(0))
	require.Equal(t, "Private", RankTitle(149))
	require.Equal(t, "Private 1st Class", RankTitle(150))
	require.Equal(t, "Corporal", RankTitle(600))
	require.Equal(t, "5 Star General", RankTitle(1_000_000))
}
