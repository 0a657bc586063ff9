package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// LeaderboardLimit caps every leaderboard query to the top 50 players.
	LeaderboardLimit = 50
	// LeaderboardPageSize splits the leaderboard into pages of 10 entries.
	LeaderboardPageSize = 10
)

const (
	DefaultPollIntervalSec = 10
	DefaultMatchMinPlayers = 2
	DefaultMatchMinTimeSec = 30
)
