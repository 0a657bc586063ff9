package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"bfmc-tracker/internal/domain"
	"bfmc-tracker/internal/gamedata"
)

type MapStatsRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMapStatsRepository(sqlDB *sql.DB, logger zerolog.Logger) *MapStatsRepository {
	return &MapStatsRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// bucketColumn maps a gamemode id to its counter column.
func bucketColumn(gamemode string) (string, error) {
	switch gamemode {
	case gamedata.GamemodeConquest:
		return "conquest", nil
	case gamedata.GamemodeCaptureTheFlag:
		return "capturetheflag", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStat, gamemode)
	}
}

// Get fetches a map row by id, or (nil, nil) when the map has never been
// played.
func (r *MapStatsRepository) Get(ctx context.Context, mapID int) (*domain.MapStats, error) {
	var m domain.MapStats
	err := r.db.QueryRowContext(ctx,
		`SELECT map_id, map_name, conquest, capturetheflag FROM map_stats WHERE map_id = ?`,
		mapID).Scan(&m.MapID, &m.MapName, &m.Conquest, &m.CaptureTheFlag)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get map %d: %w", mapID, err)
	}
	return &m, nil
}

// UpsertBucket writes the play count for one gamemode bucket, creating the
// row if needed. The other bucket keeps its stored value (or the schema
// default of 0 on insert).
func (r *MapStatsRepository) UpsertBucket(ctx context.Context, mapID int, mapName, gamemode string, count int) error {
	column, err := bucketColumn(gamemode)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO map_stats (map_id, map_name, `+column+`) VALUES (?, ?, ?)
		ON CONFLICT(map_id) DO UPDATE SET map_name = excluded.map_name, `+column+` = excluded.`+column,
		mapID, mapName, count)
	if err != nil {
		r.logger.Error().Err(err).Int("map_id", mapID).Str("gamemode", gamemode).Msg("failed to upsert map stats")
		return fmt.Errorf("failed to upsert map %d: %w", mapID, err)
	}
	return nil
}

// MostPlayed returns the map with the highest play count for a gamemode.
// Ties resolve by lowest map id so repeated queries agree. Returns
// (nil, nil) when no map has been recorded yet.
func (r *MapStatsRepository) MostPlayed(ctx context.Context, gamemode string) (*domain.MapStats, error) {
	column, err := bucketColumn(gamemode)
	if err != nil {
		return nil, err
	}

	var m domain.MapStats
	err = r.db.QueryRowContext(ctx,
		`SELECT map_id, map_name, conquest, capturetheflag FROM map_stats
		ORDER BY `+column+` DESC, map_id ASC LIMIT 1`).
		Scan(&m.MapID, &m.MapName, &m.Conquest, &m.CaptureTheFlag)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get most played map: %w", err)
	}
	return &m, nil
}
