package repository

import (
	"context"
	"database/sql"
	"fmt"

	"beatstar/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type IngestionRunRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewIngestionRunRepository(sqlDB *sql.DB, logger zerolog.Logger) *IngestionRunRepository {
	return &IngestionRunRepository{db: sqlDB, logger: logger}
}

// Record inserts run, assigning it an ID when it has none.
func (r *IngestionRunRepository) Record(ctx context.Context, run *domain.IngestionRun) error {
	if run.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate run id: %w", err)
		}
		run.ID = id
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ingestion_runs
			(id, source, bytes, songs, diffs, dropped_diffs, duplicates, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Bytes, run.Songs, run.Diffs, run.DroppedDiffs, run.Duplicates,
		run.Error, run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		r.logger.Error().Err(err).Str("id", run.ID).Msg("failed to record ingestion run")
		return fmt.Errorf("failed to record ingestion run %s: %w", run.ID, err)
	}

	r.logger.Debug().Str("id", run.ID).Str("source", run.Source).Msg("ingestion run recorded")
	return nil
}

// Latest returns the most recent run, or nil when none was recorded.
func (r *IngestionRunRepository) Latest(ctx context.Context) (*domain.IngestionRun, error) {
	runs, err := r.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// List returns up to limit runs, newest first.
func (r *IngestionRunRepository) List(ctx context.Context, limit int) ([]domain.IngestionRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source, bytes, songs, diffs, dropped_diffs, duplicates, error, started_at, finished_at
		FROM ingestion_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingestion runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.IngestionRun
	for rows.Next() {
		var run domain.IngestionRun
		if err := rows.Scan(
			&run.ID, &run.Source, &run.Bytes, &run.Songs, &run.Diffs, &run.DroppedDiffs,
			&run.Duplicates, &run.Error, &run.StartedAt, &run.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ingestion run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingestion runs: %w", err)
	}
	return runs, nil
}
