package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"bfmc-tracker/internal/domain"
)

const playerColumns = `id, nickname, first_seen, score, deaths,
	us_games, ch_games, ac_games, eu_games, cq_games, cf_games,
	wins, losses, top_player, dis_uid, color_r, color_g, color_b`

// sortableStats is the closed set of columns a leaderboard may order by.
// Keeping it closed is also what makes the ORDER BY interpolation safe.
var sortableStats = map[string]bool{
	"score":      true,
	"deaths":     true,
	"wins":       true,
	"losses":     true,
	"top_player": true,
	"us_games":   true,
	"ch_games":   true,
	"ac_games":   true,
	"eu_games":   true,
	"cq_games":   true,
	"cf_games":   true,
}

// ErrUnknownStat is returned when a leaderboard query names a column
// outside the sortable set.
var ErrUnknownStat = errors.New("unknown stat column")

type PlayerStatsRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerStatsRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerStatsRepository {
	return &PlayerStatsRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// GetByNickname fetches a player row by exact nickname. Returns (nil, nil)
// when the nickname has never been seen.
func (r *PlayerStatsRepository) GetByNickname(ctx context.Context, nickname string) (*domain.PlayerStats, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM player_stats WHERE nickname = ?`, nickname)
	return scanPlayer(row)
}

// GetByDiscordUID fetches the player row claimed by a Discord account, or
// (nil, nil) when the account has not claimed one.
func (r *PlayerStatsRepository) GetByDiscordUID(ctx context.Context, uid int64) (*domain.PlayerStats, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM player_stats WHERE dis_uid = ?`, uid)
	return scanPlayer(row)
}

// Insert creates a first-seen player row.
func (r *PlayerStatsRepository) Insert(ctx context.Context, p *domain.PlayerStats) error {
	var colorR, colorG, colorB *int
	if p.Color != nil {
		colorR, colorG, colorB = &p.Color.R, &p.Color.G, &p.Color.B
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO player_stats (nickname, first_seen, score, deaths,
			us_games, ch_games, ac_games, eu_games, cq_games, cf_games,
			wins, losses, top_player, dis_uid, color_r, color_g, color_b)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Nickname, p.FirstSeen.Format("2006-01-02"), p.Score, p.Deaths,
		p.USGames, p.CHGames, p.ACGames, p.EUGames, p.CQGames, p.CFGames,
		p.Wins, p.Losses, p.TopPlayer, p.DiscordUID, colorR, colorG, colorB)
	if err != nil {
		r.logger.Error().Err(err).Str("nickname", p.Nickname).Msg("failed to insert player")
		return fmt.Errorf("failed to insert player %s: %w", p.Nickname, err)
	}

	id, err := res.LastInsertId()
	if err == nil {
		p.ID = id
	}
	return nil
}

// UpdateStats overwrites the additive counters of an existing row. The
// caller passes the already-summed values; nickname, first_seen and the
// identity fields are never touched here.
func (r *PlayerStatsRepository) UpdateStats(ctx context.Context, p *domain.PlayerStats) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE player_stats SET score = ?, deaths = ?,
			us_games = ?, ch_games = ?, ac_games = ?, eu_games = ?,
			cq_games = ?, cf_games = ?, wins = ?, losses = ?, top_player = ?
		WHERE id = ?`,
		p.Score, p.Deaths,
		p.USGames, p.CHGames, p.ACGames, p.EUGames,
		p.CQGames, p.CFGames, p.Wins, p.Losses, p.TopPlayer,
		p.ID)
	if err != nil {
		r.logger.Error().Err(err).Str("nickname", p.Nickname).Msg("failed to update player stats")
		return fmt.Errorf("failed to update player %s: %w", p.Nickname, err)
	}
	return nil
}

// Top returns the highest-ranked players ordered descending by stat.
func (r *PlayerStatsRepository) Top(ctx context.Context, stat string, limit int) ([]domain.PlayerStats, error) {
	if !sortableStats[stat] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStat, stat)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+playerColumns+` FROM player_stats
		ORDER BY `+stat+` DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard by %s: %w", stat, err)
	}
	defer rows.Close()

	var players []domain.PlayerStats
	for rows.Next() {
		p, err := scanPlayerRow(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

// Nicknames lists every known nickname, oldest row first.
func (r *PlayerStatsRepository) Nicknames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT nickname FROM player_stats ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list nicknames: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Count returns the number of distinct nicknames ever recorded.
func (r *PlayerStatsRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM player_stats`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}

// SetDiscordUID links (or with nil clears) the Discord account owning a row.
func (r *PlayerStatsRepository) SetDiscordUID(ctx context.Context, id int64, uid *int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE player_stats SET dis_uid = ? WHERE id = ?`, uid, id); err != nil {
		return fmt.Errorf("failed to set discord uid: %w", err)
	}
	return nil
}

// SetColor stores the profile display color for a row.
func (r *PlayerStatsRepository) SetColor(ctx context.Context, id int64, color domain.RGB) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE player_stats SET color_r = ?, color_g = ?, color_b = ? WHERE id = ?`,
		color.R, color.G, color.B, id); err != nil {
		return fmt.Errorf("failed to set color: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row *sql.Row) (*domain.PlayerStats, error) {
	p, err := scanPlayerRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func scanPlayerRow(row rowScanner) (*domain.PlayerStats, error) {
	var (
		p      domain.PlayerStats
		disUID sql.NullInt64
		colorR sql.NullInt64
		colorG sql.NullInt64
		colorB sql.NullInt64
	)
	// the driver converts the DATE-declared first_seen column to time.Time
	err := row.Scan(&p.ID, &p.Nickname, &p.FirstSeen, &p.Score, &p.Deaths,
		&p.USGames, &p.CHGames, &p.ACGames, &p.EUGames, &p.CQGames, &p.CFGames,
		&p.Wins, &p.Losses, &p.TopPlayer, &disUID, &colorR, &colorG, &colorB)
	if err != nil {
		return nil, err
	}

	if disUID.Valid {
		uid := disUID.Int64
		p.DiscordUID = &uid
	}
	if colorR.Valid && colorG.Valid && colorB.Valid {
		p.Color = &domain.RGB{R: int(colorR.Int64), G: int(colorG.Int64), B: int(colorB.Int64)}
	}
	return &p, nil
}
