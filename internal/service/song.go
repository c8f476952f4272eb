package service

import (
	"context"
	"fmt"
	"time"

	"beatstar/internal/cache"
	"beatstar/internal/config"
	"beatstar/internal/constants"
	"beatstar/internal/domain"
	"beatstar/internal/ingest"
	"beatstar/internal/snapshot"

	"github.com/rs/zerolog"
)

type ArchiveFetcher interface {
	FetchArchive(ctx context.Context) ([]byte, error)
}

type RunRecorder interface {
	Record(ctx context.Context, run *domain.IngestionRun) error
	Latest(ctx context.Context) (*domain.IngestionRun, error)
}

// SongService is the query surface over the cached song database.
type SongService struct {
	cache    *cache.Cache
	fetcher  ArchiveFetcher
	pipeline *ingest.Pipeline
	runs     RunRecorder
	cfg      *config.Config
	logger   zerolog.Logger
}

func NewSongService(
	c *cache.Cache,
	fetcher ArchiveFetcher,
	pipeline *ingest.Pipeline,
	runs RunRecorder,
	cfg *config.Config,
	logger zerolog.Logger,
) *SongService {
	return &SongService{
		cache:    c,
		fetcher:  fetcher,
		pipeline: pipeline,
		runs:     runs,
		cfg:      cfg,
		logger:   logger,
	}
}

// RetrieveDatabase returns the cached database, ingesting it first if needed.
func (s *SongService) RetrieveDatabase(ctx context.Context) (*domain.Database, error) {
	return s.cache.GetOrInit(ctx, s.fetch)
}

// LoadFromFile seeds the cache from a local archive instead of the network. It
// is a no-op returning the cached database when one is already present.
func (s *SongService) LoadFromFile(ctx context.Context, path string) (*domain.Database, error) {
	return s.cache.GetOrInit(ctx, func(ctx context.Context) (*domain.Database, error) {
		return s.loadSnapshot(ctx, path)
	})
}

// Cached returns the database without triggering ingestion, or nil.
func (s *SongService) Cached() *domain.Database {
	return s.cache.Get()
}

func (s *SongService) LoadedAt() time.Time {
	return s.cache.LoadedAt()
}

// GetSong returns the song with the given hash, or nil when there is none.
func (s *SongService) GetSong(ctx context.Context, hash string) (*domain.Song, error) {
	db, err := s.RetrieveDatabase(ctx)
	if err != nil {
		return nil, err
	}
	return db.Song(hash), nil
}

func (s *SongService) GetDifficulty(song *domain.Song, char domain.Characteristic, label string) *domain.DifficultyStats {
	if song == nil {
		return nil
	}
	return song.Difficulty(char, label)
}

func (s *SongService) EnumerateCharacteristics(song *domain.Song) *domain.CharacteristicMap {
	if song == nil {
		return nil
	}
	return song.Characteristics
}

func (s *SongService) EnumerateDifficulties(song *domain.Song, char domain.Characteristic) *domain.DifficultyMap {
	if song == nil {
		return nil
	}
	return song.Difficulties(char)
}

func (s *SongService) LatestRun(ctx context.Context) (*domain.IngestionRun, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.runs.Latest(ctx)
}

func (s *SongService) fetch(ctx context.Context) (*domain.Database, error) {
	if s.cfg.PreferSnapshot && snapshot.Exists(s.cfg.SnapshotPath) {
		db, err := s.loadSnapshot(ctx, s.cfg.SnapshotPath)
		if err == nil {
			return db, nil
		}
		s.logger.Warn().Err(err).Str("path", s.cfg.SnapshotPath).Msg("snapshot unusable, falling back to network")
	}

	fetchCtx, cancel := context.WithTimeout(ctx, constants.FetchTimeout)
	defer cancel()

	started := time.Now()
	raw, err := s.fetcher.FetchArchive(fetchCtx)
	if err != nil {
		s.record(ctx, &domain.IngestionRun{
			Source:     constants.SourceNetwork,
			Error:      err.Error(),
			StartedAt:  started,
			FinishedAt: time.Now(),
		})
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}

	db, err := s.ingest(ctx, constants.SourceNetwork, raw, started)
	if err != nil {
		return nil, err
	}

	if s.cfg.SnapshotPath != "" {
		if err := snapshot.Write(s.cfg.SnapshotPath, raw); err != nil {
			s.logger.Warn().Err(err).Str("path", s.cfg.SnapshotPath).Msg("failed to write snapshot")
		} else {
			s.logger.Info().Str("path", s.cfg.SnapshotPath).Int("bytes", len(raw)).Msg("snapshot written")
		}
	}
	return db, nil
}

func (s *SongService) loadSnapshot(ctx context.Context, path string) (*domain.Database, error) {
	started := time.Now()
	raw, err := snapshot.Read(path)
	if err != nil {
		s.record(ctx, &domain.IngestionRun{
			Source:     constants.SourceSnapshot,
			Error:      err.Error(),
			StartedAt:  started,
			FinishedAt: time.Now(),
		})
		return nil, err
	}
	return s.ingest(ctx, constants.SourceSnapshot, raw, started)
}

func (s *SongService) ingest(ctx context.Context, source string, raw []byte, started time.Time) (*domain.Database, error) {
	db, stats, err := s.pipeline.Run(raw)

	run := &domain.IngestionRun{
		Source:       source,
		Bytes:        len(raw),
		Songs:        stats.Songs,
		Diffs:        stats.Diffs,
		DroppedDiffs: stats.Dropped,
		Duplicates:   stats.Duplicates,
		StartedAt:    started,
		FinishedAt:   time.Now(),
	}
	if err != nil {
		run.Error = err.Error()
	}
	s.record(ctx, run)

	if err != nil {
		return nil, fmt.Errorf("failed to ingest %s dataset: %w", source, err)
	}
	return db, nil
}

// record is best effort; a broken run log never fails ingestion.
func (s *SongService) record(ctx context.Context, run *domain.IngestionRun) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.DatabaseTimeout)
	defer cancel()

	if err := s.runs.Record(ctx, run); err != nil {
		s.logger.Warn().Err(err).Str("source", run.Source).Msg("failed to record ingestion run")
	}
}
