package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"beatstar/internal/api"
	"beatstar/internal/constants"
	"beatstar/internal/domain"
	fxmodules "beatstar/internal/fx"
	"beatstar/internal/ingest"
	"beatstar/internal/service"
	"beatstar/internal/snapshot"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type archiveSource interface {
	service.ArchiveFetcher
	URL() string
}

func main() {
	out := flag.String("out", "combinedScrappedData.zip", "where to write the archive snapshot")
	flag.Parse()

	app := fx.New(
		fx.NopLogger,
		fxmodules.Core,
		fx.Invoke(func(client *api.DatasetClient, pipeline *ingest.Pipeline, runs service.RunRecorder, db *sql.DB, logger zerolog.Logger) error {
			defer db.Close()
			return fetchSnapshot(context.Background(), client, pipeline, runs, logger, *out)
		}),
	)
	if err := app.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// fetchSnapshot downloads the archive, checks that it ingests cleanly and only
// then writes it to path. The attempt lands in the run log either way.
func fetchSnapshot(
	ctx context.Context,
	source archiveSource,
	pipeline *ingest.Pipeline,
	runs service.RunRecorder,
	logger zerolog.Logger,
	path string,
) error {
	run := &domain.IngestionRun{Source: constants.SourceNetwork, StartedAt: time.Now()}
	err := download(ctx, source, pipeline, run, path)
	run.FinishedAt = time.Now()
	if err != nil {
		run.Error = err.Error()
	}

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.DatabaseTimeout)
	defer cancel()
	if recErr := runs.Record(recordCtx, run); recErr != nil {
		logger.Warn().Err(recErr).Msg("failed to record ingestion run")
	}

	if err != nil {
		return err
	}
	logger.Info().
		Str("path", path).
		Str("run_id", run.ID).
		Int("bytes", run.Bytes).
		Int("songs", run.Songs).
		Int("dropped", run.DroppedDiffs).
		Msg("snapshot written")
	return nil
}

func download(ctx context.Context, source archiveSource, pipeline *ingest.Pipeline, run *domain.IngestionRun, path string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.FetchTimeout)
	defer cancel()

	raw, err := source.FetchArchive(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", source.URL(), err)
	}
	run.Bytes = len(raw)

	_, stats, err := pipeline.Run(raw)
	run.Songs = stats.Songs
	run.Diffs = stats.Diffs
	run.DroppedDiffs = stats.Dropped
	run.Duplicates = stats.Duplicates
	if err != nil {
		return fmt.Errorf("archive failed validation: %w", err)
	}

	return snapshot.Write(path, raw)
}
