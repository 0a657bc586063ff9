package domain

import (
	"time"
)

// PlayerStats is the durable per-nickname aggregate. Rows are created on a
// player's first finished match and only ever mutated additively.
type PlayerStats struct {
	ID         int64
	Nickname   string
	FirstSeen  time.Time
	Score      int
	Deaths     int
	USGames    int
	CHGames    int
	ACGames    int
	EUGames    int
	CQGames    int
	CFGames    int
	Wins       int
	Losses     int
	TopPlayer  int
	DiscordUID *int64
	Color      *RGB
}

// TotalGames is the number of finished matches the player appeared in.
// The team buckets and the gamemode buckets both sum to it.
func (p PlayerStats) TotalGames() int {
	return p.CQGames + p.CFGames
}

type RGB struct {
	R int
	G int
	B int
}

// MapStats holds per-map play counts, one bucket per gamemode.
type MapStats struct {
	MapID          int
	MapName        string
	Conquest       int
	CaptureTheFlag int
}

// SnapshotPlayer is one scoreboard entry in a server snapshot.
// Team is the team index, 0 or 1.
type SnapshotPlayer struct {
	Name   string
	Score  int
	Deaths int
	Team   int
}

// ServerSnapshot is one server's reported live state at a poll instant.
// Snapshots are ephemeral; only the previous poll cycle's copy is retained
// for comparison.
type ServerSnapshot struct {
	ID           int
	ServerName   string
	MapName      string
	TimeElapsed  string
	Team1Country string
	Team2Country string
	Team1Score   int
	Team2Score   int
	GameType     string
	Players      []SnapshotPlayer
}

// ElapsedSeconds parses the snapshot's HH:MM:SS elapsed-time string.
func (s ServerSnapshot) ElapsedSeconds() (int, error) {
	return ParseElapsed(s.TimeElapsed)
}
