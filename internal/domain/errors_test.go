package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseElapsed(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"zero", "00:00:00", 0, false},
		{"seconds only", "00:00:42", 42, false},
		{"minutes", "00:12:30", 750, false},
		{"hours", "01:02:03", 3723, false},
		{"no padding", "0:5:9", 309, false},
		{"missing field", "12:30", 0, true},
		{"empty", "", 0, true},
		{"garbage", "aa:bb:cc", 0, true},
		{"negative", "00:-1:00", 0, true},
		{"too many fields", "00:00:00:00", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseElapsed(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, ErrMalformedTime)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestTotalGames(t *testing.T) {
	p := PlayerStats{CQGames: 3, CFGames: 2}
	require.Equal(t, 5, p.TotalGames())
}
