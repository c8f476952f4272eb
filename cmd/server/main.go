package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"beatstar/internal/config"
	"beatstar/internal/constants"
	fxmodules "beatstar/internal/fx"
	"beatstar/internal/middleware"
	"beatstar/internal/server"
	"beatstar/internal/service"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	songServer *server.SongServer,
	songSvc *service.SongService,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	requestIDMiddleware := middleware.RequestID(logger)

	srv := newHTTPServer(cfg, requestIDMiddleware(c.Handler(songServer.Routes())))

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if cfg.WarmOnStart {
				go func() {
					db, err := songSvc.RetrieveDatabase(context.Background())
					if err != nil {
						logger.Warn().Err(err).Msg("cache warm-up failed, will retry on first request")
						return
					}
					logger.Info().Int("songs", db.Len()).Msg("song database warmed")
				}()
			}

			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}

// newHTTPServer bounds reads by RequestTimeout. Writes get FetchTimeout on top,
// since the first request may wait on a full dataset fetch.
func newHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: constants.RequestTimeout,
		ReadTimeout:       constants.RequestTimeout,
		WriteTimeout:      constants.FetchTimeout + constants.RequestTimeout,
		IdleTimeout:       2 * constants.RequestTimeout,
	}
}
