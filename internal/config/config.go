package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"bfmc-tracker/internal/constants"
)

type Config struct {
	APIRootURL string
	DBPath     string
	ServerPort string
	LogLevel   string

	// Discord notifier; both empty disables it.
	DiscordToken     string
	DiscordChannelID string
}

// TrackerSettings is the slice of configuration the poll loop re-reads on
// every tick, so edits to the .env file take effect without a restart.
type TrackerSettings struct {
	PollIntervalSec int
	MatchMinPlayers int
	MatchMinTimeSec int
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		APIRootURL:       getEnv("API_ROOT_URL", ""),
		DBPath:           getEnv("DB_PATH", "bfmc.db"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DiscordToken:     getEnv("DISCORD_TOKEN", ""),
		DiscordChannelID: getEnv("DISCORD_STATS_CHANNEL_ID", ""),
	}

	if cfg.APIRootURL == "" {
		return nil, fmt.Errorf("API_ROOT_URL is required")
	}

	logger.Info().
		Str("api_root_url", cfg.APIRootURL).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Bool("discord_notifier", cfg.DiscordToken != "" && cfg.DiscordChannelID != "").
		Msg("configuration loaded")

	return cfg, nil
}

// Tracker re-reads the poll-loop settings. The .env file is re-parsed on
// every call rather than cached, which is what lets a running tracker pick
// up interval changes at the next tick.
func (c *Config) Tracker() TrackerSettings {
	fileVals, err := godotenv.Read()
	if err != nil {
		fileVals = map[string]string{}
	}

	get := func(key string, fallback int) int {
		raw := fileVals[key]
		if raw == "" {
			raw = os.Getenv(key)
		}
		if raw == "" {
			return fallback
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return fallback
		}
		return n
	}

	return TrackerSettings{
		PollIntervalSec: get("POLL_INTERVAL_SEC", constants.DefaultPollIntervalSec),
		MatchMinPlayers: get("MATCH_MIN_PLAYERS", constants.DefaultMatchMinPlayers),
		MatchMinTimeSec: get("MATCH_MIN_TIME_SEC", constants.DefaultMatchMinTimeSec),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
