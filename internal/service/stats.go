package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"bfmc-tracker/internal/constants"
	"bfmc-tracker/internal/domain"
	"bfmc-tracker/internal/gamedata"
	"bfmc-tracker/internal/repository"
)

// StatsService folds a finished match's final snapshot into the durable
// player and map aggregates. Both record operations double-count when
// called twice for the same match; the poll loop owns the at-most-once
// guarantee.
type StatsService struct {
	playerRepo *repository.PlayerStatsRepository
	mapRepo    *repository.MapStatsRepository
	logger     zerolog.Logger
}

func NewStatsService(playerRepo *repository.PlayerStatsRepository, mapRepo *repository.MapStatsRepository, logger zerolog.Logger) *StatsService {
	return &StatsService{playerRepo: playerRepo, mapRepo: mapRepo, logger: logger}
}

// ComputeTopPlayer selects the participant with the highest score; ties go
// to the fewer deaths, then to the earlier scoreboard position. A match
// with fewer than two participants has no top player.
func (s *StatsService) ComputeTopPlayer(snapshot domain.ServerSnapshot) (domain.SnapshotPlayer, error) {
	if len(snapshot.Players) < 2 {
		return domain.SnapshotPlayer{}, fmt.Errorf("%w: %d participants", domain.ErrInvalidMatchData, len(snapshot.Players))
	}

	top := snapshot.Players[0]
	for _, p := range snapshot.Players[1:] {
		if p.Score > top.Score || (p.Score == top.Score && p.Deaths < top.Deaths) {
			top = p
		}
	}
	return top, nil
}

// RecordPlayerStats additively records every participant's round into
// player_stats, creating first-seen rows as needed, and returns the top
// player's nickname.
func (s *StatsService) RecordPlayerStats(ctx context.Context, snapshot domain.ServerSnapshot) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	top, err := s.ComputeTopPlayer(snapshot)
	if err != nil {
		s.logger.Warn().Err(err).
			Int("server_id", snapshot.ID).
			Str("server_name", snapshot.ServerName).
			Msg("invalid server data, skipping player stats")
		return "", err
	}

	for _, p := range snapshot.Players {
		existing, err := s.playerRepo.GetByNickname(ctx, p.Name)
		if err != nil {
			return "", fmt.Errorf("failed to load player %s: %w", p.Name, err)
		}

		stats := existing
		if stats == nil {
			stats = &domain.PlayerStats{Nickname: p.Name, FirstSeen: time.Now()}
		}
		applyRound(stats, p, snapshot, top.Name)

		if existing != nil {
			err = s.playerRepo.UpdateStats(ctx, stats)
		} else {
			err = s.playerRepo.Insert(ctx, stats)
		}
		if err != nil {
			return "", err
		}
	}

	s.logger.Debug().
		Int("server_id", snapshot.ID).
		Int("participants", len(snapshot.Players)).
		Str("top_player", top.Name).
		Msg("round stats recorded")
	return top.Name, nil
}

// applyRound sums one round's contribution into the running totals.
func applyRound(stats *domain.PlayerStats, p domain.SnapshotPlayer, snapshot domain.ServerSnapshot, topPlayer string) {
	stats.Score += p.Score
	stats.Deaths += p.Deaths

	// Team by index, win/loss from the final team scores. Draws touch
	// neither counter.
	var team string
	if p.Team == 0 {
		team = snapshot.Team1Country
		if snapshot.Team1Score > snapshot.Team2Score {
			stats.Wins++
		} else if snapshot.Team1Score < snapshot.Team2Score {
			stats.Losses++
		}
	} else {
		team = snapshot.Team2Country
		if snapshot.Team1Score < snapshot.Team2Score {
			stats.Wins++
		} else if snapshot.Team1Score > snapshot.Team2Score {
			stats.Losses++
		}
	}

	switch team {
	case "US":
		stats.USGames++
	case "CH":
		stats.CHGames++
	case "AC":
		stats.ACGames++
	default:
		stats.EUGames++
	}

	if snapshot.GameType == gamedata.GamemodeCaptureTheFlag {
		stats.CFGames++
	} else {
		stats.CQGames++
	}

	if p.Name == topPlayer {
		stats.TopPlayer++
	}
}

// RecordMapStats increments the played-count of exactly one gamemode
// bucket for the snapshot's map.
func (s *StatsService) RecordMapStats(ctx context.Context, snapshot domain.ServerSnapshot) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if len(snapshot.Players) < 2 {
		return fmt.Errorf("%w: %d participants", domain.ErrInvalidMatchData, len(snapshot.Players))
	}

	gamemode := gamedata.GamemodeConquest
	if snapshot.GameType == gamedata.GamemodeCaptureTheFlag {
		gamemode = gamedata.GamemodeCaptureTheFlag
	}

	info, ok := gamedata.MapByName(snapshot.MapName)
	if !ok {
		s.logger.Warn().
			Str("map_name", snapshot.MapName).
			Int("server_id", snapshot.ID).
			Msg("unknown map, skipping map stats")
		return fmt.Errorf("%w: unknown map %q", domain.ErrInvalidMatchData, snapshot.MapName)
	}

	timesPlayed := 1
	existing, err := s.mapRepo.Get(ctx, info.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		if gamemode == gamedata.GamemodeCaptureTheFlag {
			timesPlayed += existing.CaptureTheFlag
		} else {
			timesPlayed += existing.Conquest
		}
	}

	if err := s.mapRepo.UpsertBucket(ctx, info.ID, snapshot.MapName, gamemode, timesPlayed); err != nil {
		return err
	}

	s.logger.Debug().
		Str("map_name", snapshot.MapName).
		Str("gamemode", gamemode).
		Int("times_played", timesPlayed).
		Msg("map stats recorded")
	return nil
}
