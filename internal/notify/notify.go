// Package notify delivers tracker events to the presentation side.
package notify

import (
	"context"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"bfmc-tracker/internal/config"
)

// MatchFinishedEvent is emitted once per detected finished match.
type MatchFinishedEvent struct {
	EventID      string
	ServerName   string
	MapName      string
	TopPlayer    string
	FinalElapsed string
}

type NewGameStartedEvent struct {
	EventID    string
	ServerName string
	MapName    string
}

type ServerOfflineEvent struct {
	EventID    string
	ServerName string
}

// NewEventID mints an id carried on every emitted event so downstream
// consumers can correlate log lines with messages.
func NewEventID() string {
	return gonanoid.Must()
}

type Notifier interface {
	MatchFinished(ctx context.Context, event MatchFinishedEvent) error
	NewGameStarted(ctx context.Context, event NewGameStartedEvent) error
	ServerOffline(ctx context.Context, event ServerOfflineEvent) error
}

// LogNotifier writes every event to the structured log. It is always
// active, with or without Discord configured.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) MatchFinished(_ context.Context, event MatchFinishedEvent) error {
	n.logger.Info().
		Str("event_id", event.EventID).
		Str("server_name", event.ServerName).
		Str("map", event.MapName).
		Str("top_player", event.TopPlayer).
		Str("final_elapsed", event.FinalElapsed).
		Msg("match finished, stats recorded")
	return nil
}

func (n *LogNotifier) NewGameStarted(_ context.Context, event NewGameStartedEvent) error {
	n.logger.Info().
		Str("event_id", event.EventID).
		Str("server_name", event.ServerName).
		Str("map", event.MapName).
		Msg("server started a new game")
	return nil
}

func (n *LogNotifier) ServerOffline(_ context.Context, event ServerOfflineEvent) error {
	n.logger.Info().
		Str("event_id", event.EventID).
		Str("server_name", event.ServerName).
		Msg("server has gone offline")
	return nil
}

// MultiNotifier fans an event out to every configured sink. A failing sink
// does not stop delivery to the others; the first error is returned.
type MultiNotifier struct {
	sinks []Notifier
}

func NewMultiNotifier(sinks ...Notifier) *MultiNotifier {
	return &MultiNotifier{sinks: sinks}
}

func (n *MultiNotifier) MatchFinished(ctx context.Context, event MatchFinishedEvent) error {
	var firstErr error
	for _, sink := range n.sinks {
		if err := sink.MatchFinished(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (n *MultiNotifier) NewGameStarted(ctx context.Context, event NewGameStartedEvent) error {
	var firstErr error
	for _, sink := range n.sinks {
		if err := sink.NewGameStarted(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (n *MultiNotifier) ServerOffline(ctx context.Context, event ServerOfflineEvent) error {
	var firstErr error
	for _, sink := range n.sinks {
		if err := sink.ServerOffline(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// New wires the notifier stack from config: the log sink always, the
// Discord sink when a token and channel are present.
func New(cfg *config.Config, logger zerolog.Logger) (Notifier, error) {
	sinks := []Notifier{NewLogNotifier(logger)}

	if cfg.DiscordToken != "" && cfg.DiscordChannelID != "" {
		discord, err := NewDiscordNotifier(cfg.DiscordToken, cfg.DiscordChannelID, logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, discord)
		logger.Info().Str("channel_id", cfg.DiscordChannelID).Msg("discord notifier enabled")
	}

	return NewMultiNotifier(sinks...), nil
}

var Module = fx.Provide(New)
