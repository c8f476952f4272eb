package fx

import (
	"beatstar/internal/api"
	"beatstar/internal/cache"
	"beatstar/internal/config"
	"beatstar/internal/database"
	"beatstar/internal/ingest"
	"beatstar/internal/logger"
	"beatstar/internal/repository"
	"beatstar/internal/server"
	"beatstar/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ProvideLevel re-levels the base logger once configuration is known.
func ProvideLevel(base zerolog.Logger, cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		base.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, keeping debug")
		return base
	}
	return logger.SetLevel(level)
}

// Core builds everything needed to query the song database.
var Core = fx.Options(
	fx.Provide(
		fx.Annotate(logger.New, fx.ResultTags(`name:"base"`)),
		fx.Annotate(config.Load, fx.ParamTags(`name:"base"`)),
		fx.Annotate(ProvideLevel, fx.ParamTags(`name:"base"`)),
	),
	fx.Provide(database.New),
	// repos
	fx.Provide(
		fx.Annotate(repository.NewIngestionRunRepository, fx.As(new(service.RunRecorder))),
	),
	// api client
	fx.Provide(
		api.NewDatasetClient,
		func(c *api.DatasetClient) service.ArchiveFetcher { return c },
	),
	// ingestion
	fx.Provide(ingest.NewPipeline),
	fx.Provide(cache.New),
	// svc
	fx.Provide(service.NewSongService),
)

var Module = fx.Options(
	Core,
	// server
	fx.Provide(server.NewSongServer),
)
