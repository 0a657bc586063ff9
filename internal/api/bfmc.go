// Package api talks to the BF2:MC Online live-status endpoint.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"bfmc-tracker/internal/config"
	"bfmc-tracker/internal/domain"
)

type Client struct {
	rootURL string
	client  *fasthttp.Client
	logger  zerolog.Logger
}

func NewClient(cfg *config.Config, logger zerolog.Logger) *Client {
	return &Client{
		rootURL: strings.TrimRight(cfg.APIRootURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

// GetLiveServers fetches the current snapshot set for every known server,
// keyed by server id. Individual malformed server entries are dropped with
// a log line so one bad server cannot poison the whole poll cycle.
func (c *Client) GetLiveServers(ctx context.Context) (map[int]domain.ServerSnapshot, error) {
	url := fmt.Sprintf("%s/servers/live", c.rootURL)
	list, err := doRequest[serverListResponse](ctx, c, url)
	if err != nil {
		return nil, err
	}

	snapshots := make(map[int]domain.ServerSnapshot, len(list.Results))
	for _, raw := range list.Results {
		snapshot, err := raw.toDomain()
		if err != nil {
			c.logger.Warn().Err(err).
				Int("server_id", raw.ID).
				Str("server_name", raw.ServerName).
				Msg("dropping malformed server entry")
			continue
		}
		snapshots[snapshot.ID] = snapshot
	}
	return snapshots, nil
}

func doRequest[T any](ctx context.Context, client *Client, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type serverListResponse struct {
	Count   int            `json:"count"`
	Results []serverStatus `json:"results"`
}

type serverStatus struct {
	ID           int            `json:"id"`
	ServerName   string         `json:"server_name"`
	MapName      string         `json:"map_name"`
	TimeElapsed  string         `json:"time_elapsed"`
	Team1Country string         `json:"team1_country"`
	Team2Country string         `json:"team2_country"`
	Team1Score   int            `json:"team1_score"`
	Team2Score   int            `json:"team2_score"`
	GameType     string         `json:"game_type"`
	Players      []playerStatus `json:"players"`
}

type playerStatus struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Deaths int    `json:"deaths"`
	Team   int    `json:"team"`
}

// toDomain validates the wire entry once so everything downstream can rely
// on well-formed snapshots.
func (s serverStatus) toDomain() (domain.ServerSnapshot, error) {
	if s.ServerName == "" || s.MapName == "" || s.GameType == "" {
		return domain.ServerSnapshot{}, fmt.Errorf("%w: missing required fields", domain.ErrInvalidMatchData)
	}
	if _, err := domain.ParseElapsed(s.TimeElapsed); err != nil {
		return domain.ServerSnapshot{}, err
	}

	players := make([]domain.SnapshotPlayer, 0, len(s.Players))
	for _, p := range s.Players {
		if p.Name == "" || (p.Team != 0 && p.Team != 1) {
			return domain.ServerSnapshot{}, fmt.Errorf("%w: bad player entry %q", domain.ErrInvalidMatchData, p.Name)
		}
		players = append(players, domain.SnapshotPlayer{
			Name:   p.Name,
			Score:  p.Score,
			Deaths: p.Deaths,
			Team:   p.Team,
		})
	}

	return domain.ServerSnapshot{
		ID:           s.ID,
		ServerName:   s.ServerName,
		MapName:      s.MapName,
		TimeElapsed:  s.TimeElapsed,
		Team1Country: s.Team1Country,
		Team2Country: s.Team2Country,
		Team1Score:   s.Team1Score,
		Team2Score:   s.Team2Score,
		GameType:     s.GameType,
		Players:      players,
	}, nil
}
