// Package tracker drives the poll loop that detects finished matches and
// hands them to the stats aggregator.
package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"bfmc-tracker/internal/config"
	"bfmc-tracker/internal/constants"
	"bfmc-tracker/internal/domain"
	"bfmc-tracker/internal/gamedata"
	"bfmc-tracker/internal/notify"
	"bfmc-tracker/internal/service"
)

// Fetcher returns the current snapshot set for all known servers.
// Implemented by the api client; tests substitute fakes.
type Fetcher interface {
	GetLiveServers(ctx context.Context) (map[int]domain.ServerSnapshot, error)
}

// Tracker owns the previous/current snapshot pair and the post-game set.
// One tick runs to completion before the next is scheduled, so one tick's
// classification and aggregation is atomic with respect to other ticks.
type Tracker struct {
	fetcher  Fetcher
	stats    *service.StatsService
	notifier notify.Notifier
	cfg      *config.Config
	logger   zerolog.Logger

	previous map[int]domain.ServerSnapshot
	postGame *PostGameTracker

	lastInterval time.Duration
	cancel       context.CancelFunc
	stopped      chan struct{}
}

func New(fetcher Fetcher, stats *service.StatsService, notifier notify.Notifier, cfg *config.Config, logger zerolog.Logger) *Tracker {
	return &Tracker{
		fetcher:  fetcher,
		stats:    stats,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		postGame: NewPostGameTracker(),
		stopped:  make(chan struct{}),
	}
}

// Start launches the poll loop goroutine.
func (t *Tracker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	go t.run(ctx)
}

// Stop cancels the loop and waits for the in-flight tick to finish.
func (t *Tracker) Stop() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.stopped
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.stopped)

	for {
		settings := t.cfg.Tracker()
		interval := time.Duration(settings.PollIntervalSec) * time.Second
		if interval != t.lastInterval {
			t.logger.Info().Dur("interval", interval).Msg("poll interval set")
			t.lastInterval = interval
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
			t.tick(ctx, settings)
		}
	}
}

// tick runs one full poll cycle: fetch, diff every previously known
// server, aggregate, swap the snapshot baseline.
func (t *Tracker) tick(ctx context.Context, settings config.TrackerSettings) {
	fetchCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	current, err := t.fetcher.GetLiveServers(fetchCtx)
	cancel()
	if err != nil {
		// Previous snapshots stay untouched as the baseline for the
		// next successful fetch; no match is lost by a flaky poll.
		t.logger.Warn().Err(err).Msg("server status fetch failed, skipping tick")
		return
	}

	if t.previous != nil {
		for _, prev := range t.previous {
			t.handleServer(ctx, prev, current, settings)
		}
	}

	t.previous = current
}

func (t *Tracker) handleServer(ctx context.Context, prev domain.ServerSnapshot, current map[int]domain.ServerSnapshot, settings config.TrackerSettings) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error().
				Int("server_id", prev.ID).
				Str("server_name", prev.ServerName).
				Any("panic", r).
				Msg("recovered from panic while handling server")
		}
	}()

	change, err := Classify(prev, current, t.postGame.Contains(prev.ID), settings)
	if err != nil {
		t.logger.Warn().Err(err).
			Int("server_id", prev.ID).
			Str("server_name", prev.ServerName).
			Msg("skipping server classification this tick")
		return
	}

	switch change {
	case ChangeFinishedGame:
		t.recordFinished(ctx, prev)
	case ChangeNewGame:
		t.postGame.Unmark(prev.ID)
		cur := current[prev.ID]
		event := notify.NewGameStartedEvent{
			EventID:    notify.NewEventID(),
			ServerName: cur.ServerName,
			MapName:    mapDisplayName(cur.MapName),
		}
		if err := t.notifier.NewGameStarted(ctx, event); err != nil {
			t.logger.Warn().Err(err).Str("event_id", event.EventID).Msg("new-game notification failed")
		}
	case ChangeGoneOffline:
		t.recordOffline(ctx, prev)
	}
}

func (t *Tracker) recordFinished(ctx context.Context, snapshot domain.ServerSnapshot) {
	t.logger.Info().
		Int("server_id", snapshot.ID).
		Str("server_name", snapshot.ServerName).
		Str("map", mapDisplayName(snapshot.MapName)).
		Str("final_elapsed", snapshot.TimeElapsed).
		Msg("server has finished a game")

	topPlayer, err := t.stats.RecordPlayerStats(ctx, snapshot)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidMatchData) {
			// Nothing written; park the server as post-game so the
			// frozen clock is not re-reported every tick.
			t.postGame.Mark(snapshot.ID)
			return
		}
		// Store failure: leave the server unmarked so the next tick
		// retries. A double attempt beats silently losing the match.
		t.logger.Error().Err(err).
			Int("server_id", snapshot.ID).
			Str("stage", "player_stats").
			Msg("failed to record match")
		return
	}

	if err := t.stats.RecordMapStats(ctx, snapshot); err != nil {
		if !errors.Is(err, domain.ErrInvalidMatchData) {
			// Store failure: leave unmarked so the next tick retries.
			t.logger.Error().Err(err).
				Int("server_id", snapshot.ID).
				Str("stage", "map_stats").
				Msg("failed to record match")
			return
		}
		// Map missing from the static map table. The player rows are
		// already committed, so the server must still be parked as
		// post-game; only the map tally is skipped.
		t.logger.Warn().Err(err).
			Int("server_id", snapshot.ID).
			Str("map", snapshot.MapName).
			Msg("unknown map, skipping map tally")
	}

	event := notify.MatchFinishedEvent{
		EventID:      notify.NewEventID(),
		ServerName:   snapshot.ServerName,
		MapName:      mapDisplayName(snapshot.MapName),
		TopPlayer:    topPlayer,
		FinalElapsed: snapshot.TimeElapsed,
	}
	if err := t.notifier.MatchFinished(ctx, event); err != nil {
		t.logger.Warn().Err(err).Str("event_id", event.EventID).Msg("match-finished notification failed")
	}

	t.postGame.Mark(snapshot.ID)
}

// recordOffline captures the last known snapshot of a vanished server.
// Best-effort: the finished-game thresholds deliberately do not apply
// here, matching the long-standing recording behavior.
func (t *Tracker) recordOffline(ctx context.Context, snapshot domain.ServerSnapshot) {
	t.logger.Info().
		Int("server_id", snapshot.ID).
		Str("server_name", snapshot.ServerName).
		Msg("server has gone offline, capturing last known data")

	if _, err := t.stats.RecordPlayerStats(ctx, snapshot); err != nil && !errors.Is(err, domain.ErrInvalidMatchData) {
		t.logger.Error().Err(err).
			Int("server_id", snapshot.ID).
			Str("stage", "offline_capture").
			Msg("failed to record offline server")
	}

	t.postGame.Unmark(snapshot.ID)

	event := notify.ServerOfflineEvent{
		EventID:    notify.NewEventID(),
		ServerName: snapshot.ServerName,
	}
	if err := t.notifier.ServerOffline(ctx, event); err != nil {
		t.logger.Warn().Err(err).Str("event_id", event.EventID).Msg("offline notification failed")
	}
}

func mapDisplayName(rawName string) string {
	if info, ok := gamedata.MapByName(rawName); ok {
		return info.DisplayName
	}
	return rawName
}

// Hook attaches the tracker to the fx lifecycle.
func Hook(lc fx.Lifecycle, t *Tracker, logger zerolog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			t.Start()
			logger.Info().Msg("stats tracker started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			t.Stop()
			logger.Info().Msg("stats tracker stopped")
			return nil
		},
	})
}
