package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"bfmc-tracker/internal/constants"
	"bfmc-tracker/internal/domain"
	"bfmc-tracker/internal/gamedata"
	"bfmc-tracker/internal/repository"
)

var ErrInvalidGamemode = errors.New("invalid gamemode")

// LeaderboardService is the read-only projection layer: leaderboards,
// player profiles, most-played maps and totals. It never writes.
type LeaderboardService struct {
	playerRepo *repository.PlayerStatsRepository
	mapRepo    *repository.MapStatsRepository
	logger     zerolog.Logger
}

func NewLeaderboardService(playerRepo *repository.PlayerStatsRepository, mapRepo *repository.MapStatsRepository, logger zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{playerRepo: playerRepo, mapRepo: mapRepo, logger: logger}
}

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Nickname string `json:"nickname"`
	Value    int    `json:"value"`
}

type LeaderboardPage struct {
	Page    int                `json:"page"`
	Entries []LeaderboardEntry `json:"entries"`
}

type Leaderboard struct {
	Stat         string            `json:"stat"`
	TotalPlayers int               `json:"total_players"`
	Pages        []LeaderboardPage `json:"pages"`
}

// Leaderboard builds the paginated top-50 ranking for one stat. Rank is the
// position across the whole result, not within a page. The rows and the
// all-time player count are fetched concurrently.
func (s *LeaderboardService) Leaderboard(ctx context.Context, stat string) (*Leaderboard, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	var (
		players []domain.PlayerStats
		total   int
	)

	g.Go(func() error {
		var err error
		players, err = s.playerRepo.Top(gCtx, stat, constants.LeaderboardLimit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.playerRepo.Count(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	board := &Leaderboard{Stat: stat, TotalPlayers: total}
	for i, p := range players {
		if i%constants.LeaderboardPageSize == 0 {
			board.Pages = append(board.Pages, LeaderboardPage{Page: len(board.Pages) + 1})
		}
		page := &board.Pages[len(board.Pages)-1]
		page.Entries = append(page.Entries, LeaderboardEntry{
			Rank:     i + 1,
			Nickname: p.Nickname,
			Value:    statValue(p, stat),
		})
	}
	return board, nil
}

func statValue(p domain.PlayerStats, stat string) int {
	switch stat {
	case "score":
		return p.Score
	case "deaths":
		return p.Deaths
	case "wins":
		return p.Wins
	case "losses":
		return p.Losses
	case "top_player":
		return p.TopPlayer
	case "us_games":
		return p.USGames
	case "ch_games":
		return p.CHGames
	case "ac_games":
		return p.ACGames
	case "eu_games":
		return p.EUGames
	case "cq_games":
		return p.CQGames
	case "cf_games":
		return p.CFGames
	default:
		return 0
	}
}

type PlayerProfile struct {
	Stats            domain.PlayerStats `json:"stats"`
	TotalGames       int                `json:"total_games"`
	RankTitle        string             `json:"rank_title"`
	FavoriteTeam     string             `json:"favorite_team"`
	FavoriteGamemode string             `json:"favorite_gamemode"`
	Ribbons          []string           `json:"ribbons"`
}

// Profile looks up a player by exact nickname and derives the presentation
// fields. Returns (nil, nil) for nicknames never seen in a finished match.
func (s *LeaderboardService) Profile(ctx context.Context, nickname string) (*PlayerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	stats, err := s.playerRepo.GetByNickname(ctx, nickname)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, nil
	}

	return &PlayerProfile{
		Stats:            *stats,
		TotalGames:       stats.TotalGames(),
		RankTitle:        gamedata.RankTitle(stats.Score),
		FavoriteTeam:     favoriteTeam(*stats),
		FavoriteGamemode: favoriteGamemode(*stats),
		Ribbons:          ribbons(*stats),
	}, nil
}

// favoriteTeam picks the team with the most games; ties resolve in the
// fixed US, CH, AC, EU order.
func favoriteTeam(p domain.PlayerStats) string {
	teams := []struct {
		code  string
		games int
	}{
		{"US", p.USGames},
		{"CH", p.CHGames},
		{"AC", p.ACGames},
		{"EU", p.EUGames},
	}

	best := teams[0]
	for _, t := range teams[1:] {
		if t.games > best.games {
			best = t
		}
	}
	return gamedata.TeamName(best.code)
}

// Conquest is the favourite unless strictly more CTF games were played.
func favoriteGamemode(p domain.PlayerStats) string {
	if p.CFGames > p.CQGames {
		return "Capture the Flag"
	}
	return "Conquest"
}

func ribbons(p domain.PlayerStats) []string {
	total := p.TotalGames()
	var earned []string
	if total >= 50 {
		earned = append(earned, "50 Games")
	}
	if total >= 250 {
		earned = append(earned, "250 Games")
	}
	if total >= 500 {
		earned = append(earned, "500 Games")
	}
	if p.Wins >= 5 {
		earned = append(earned, "5 Victories")
	}
	if p.Wins >= 20 {
		earned = append(earned, "20 Victories")
	}
	if p.Wins >= 50 {
		earned = append(earned, "50 Victories")
	}
	if p.TopPlayer >= 5 {
		earned = append(earned, "5 Top Player")
	}
	if p.TopPlayer >= 20 {
		earned = append(earned, "20 Top Player")
	}
	return earned
}

// MostPlayedMap returns the map with the highest play count for a
// gamemode, or (nil, nil) when nothing has been recorded yet.
func (s *LeaderboardService) MostPlayedMap(ctx context.Context, gamemode string) (*domain.MapStats, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if gamemode != gamedata.GamemodeConquest && gamemode != gamedata.GamemodeCaptureTheFlag {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGamemode, gamemode)
	}
	return s.mapRepo.MostPlayed(ctx, gamemode)
}

// PlayerCount is the all-time count of distinct nicknames.
func (s *LeaderboardService) PlayerCount(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.playerRepo.Count(ctx)
}

// Nicknames lists every recorded nickname, for the front-end's suggestion
// data.
func (s *LeaderboardService) Nicknames(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.playerRepo.Nicknames(ctx)
}
