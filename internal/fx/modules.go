package fx

import (
	"go.uber.org/fx"

	"bfmc-tracker/internal/api"
	"bfmc-tracker/internal/config"
	"bfmc-tracker/internal/database"
	"bfmc-tracker/internal/logger"
	"bfmc-tracker/internal/notify"
	"bfmc-tracker/internal/repository"
	"bfmc-tracker/internal/server"
	"bfmc-tracker/internal/service"
	"bfmc-tracker/internal/tracker"
)

func provideFetcher(client *api.Client) tracker.Fetcher {
	return client
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewPlayerStatsRepository),
	fx.Provide(repository.NewMapStatsRepository),
	// api client
	fx.Provide(api.NewClient),
	fx.Provide(provideFetcher),
	// svc
	fx.Provide(service.NewStatsService),
	fx.Provide(service.NewLeaderboardService),
	fx.Provide(service.NewIdentityService),
	// tracker + notifications
	fx.Provide(notify.New),
	fx.Provide(tracker.New),
	// server
	fx.Provide(server.NewStatsServer),
)
