// Package ingest turns the published dataset archive into a domain.Database.
package ingest

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"beatstar/internal/cstring"
	"beatstar/internal/domain"
	"beatstar/internal/view"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	ErrArchive   = errors.New("archive error")
	ErrParse     = errors.New("parse error")
	ErrTimeParse = errors.New("time parse error")
)

type Stats struct {
	Records    int
	Songs      int
	Diffs      int
	Dropped    int
	Duplicates int
	Elapsed    time.Duration
}

type Pipeline struct {
	logger  zerolog.Logger
	workers int
}

func NewPipeline(logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		logger:  logger,
		workers: runtime.GOMAXPROCS(0),
	}
}

// Run extracts, decodes and derives the whole archive. Any failure other than
// an unparseable characteristic aborts the run and no database is returned.
func (p *Pipeline) Run(raw []byte) (*domain.Database, Stats, error) {
	var stats Stats
	start := time.Now()

	payload, err := extract(raw)
	if err != nil {
		return nil, stats, err
	}

	records, err := decode(payload)
	if err != nil {
		return nil, stats, err
	}
	stats.Records = len(records)
	p.logger.Debug().
		Int("records", len(records)).
		Dur("elapsed", time.Since(start)).
		Msg("decoded dataset")

	songs, dropped, err := p.convert(records)
	if err != nil {
		return nil, stats, err
	}
	stats.Dropped = dropped

	songMap := view.NewMapBuilder[cstring.String, domain.Song](len(songs))
	for i := range songs {
		stats.Diffs += songs[i].Diffs.Len()
		if songMap.Set(songs[i].Hash, songs[i]) {
			stats.Duplicates++
			p.logger.Warn().Str("hash", songs[i].Hash.Text()).Msg("duplicate song hash, keeping the later record")
		}
	}
	db := &domain.Database{Songs: songMap.Build()}

	stats.Songs = db.Len()
	stats.Elapsed = time.Since(start)
	p.logger.Info().
		Int("songs", stats.Songs).
		Int("diffs", stats.Diffs).
		Int("dropped", stats.Dropped).
		Int("duplicates", stats.Duplicates).
		Dur("elapsed", stats.Elapsed).
		Msg("dataset ingested")

	return db, stats, nil
}

func decode(payload []byte) ([]songRecord, error) {
	var records []songRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if records == nil {
		return nil, fmt.Errorf("%w: payload is not a JSON array", ErrParse)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: dataset holds no records", ErrArchive)
	}
	for i := range records {
		if err := records[i].validate(); err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrParse, i, err)
		}
	}
	return records, nil
}

// convert derives songs in parallel chunks. Output order matches input order so
// indexing stays last-write-wins.
func (p *Pipeline) convert(records []songRecord) ([]domain.Song, int, error) {
	songs := make([]domain.Song, len(records))
	var dropped atomic.Int64

	chunk := (len(records) + p.workers - 1) / max(p.workers, 1)
	if chunk == 0 {
		return songs, 0, nil
	}

	g := new(errgroup.Group)
	for lo := 0; lo < len(records); lo += chunk {
		hi := min(lo+chunk, len(records))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				song, n, err := p.convertSong(&records[i])
				if err != nil {
					return fmt.Errorf("record %d: %w", i, err)
				}
				songs[i] = song
				dropped.Add(int64(n))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return songs, int(dropped.Load()), nil
}

type difficultyGroup = view.MapBuilder[cstring.String, domain.DifficultyStats]

func (p *Pipeline) convertSong(rec *songRecord) (domain.Song, int, error) {
	var song domain.Song
	var err error

	fields := []struct {
		dst  *cstring.String
		name string
		src  string
	}{
		{&song.Hash, "Hash", *rec.Hash},
		{&song.Key, "Key", *rec.Key},
		{&song.Uploaded, "Uploaded", *rec.Uploaded},
		{&song.SongName, "SongName", rec.SongName},
		{&song.SongSubName, "SongSubName", rec.SongSubName},
		{&song.SongAuthorName, "SongAuthorName", rec.SongAuthorName},
		{&song.LevelAuthorName, "LevelAuthorName", rec.LevelAuthorName},
	}
	for _, f := range fields {
		if *f.dst, err = text(f.name, f.src); err != nil {
			return song, 0, err
		}
	}

	song.Bpm = rec.Bpm
	song.Upvotes = rec.Upvotes
	song.Downvotes = rec.Downvotes
	song.Downloads = rec.Downloads
	song.DurationSecs = rec.Duration

	dropped := 0
	diffs := make([]domain.DifficultyStats, 0, len(rec.Diffs))
	groups := view.NewMapBuilder[domain.Characteristic, *difficultyGroup](0)

	for i := range rec.Diffs {
		d := &rec.Diffs[i]

		raw, err := difficulty(d)
		if err != nil {
			return song, 0, fmt.Errorf("Diffs[%d]: %w", i, err)
		}

		char, err := domain.ParseCharacteristic(*d.Char)
		if err != nil {
			p.logger.Error().
				Err(err).
				Str("hash", *rec.Hash).
				Str("diff", *d.Diff).
				Msg("dropping difficulty from characteristic grouping")
			dropped++
			diffs = append(diffs, domain.NewDifficultyStats(raw, domain.CharacteristicUnknown, 0))
			continue
		}

		updated, err := parseTime(d.RankedUpdateTime)
		if err != nil {
			return song, 0, fmt.Errorf("song %s Diffs[%d] RankedUpdateTime: %w", *rec.Hash, i, err)
		}

		stats := domain.NewDifficultyStats(raw, char, updated)
		diffs = append(diffs, stats)

		group := groups.Lookup(char)
		if group == nil {
			groups.Set(char, view.NewMapBuilder[cstring.String, domain.DifficultyStats](0))
			group = groups.Lookup(char)
		}
		(*group).Set(stats.Diff, stats)
	}

	song.Diffs = view.NewSeq(diffs)

	chars := view.NewMapBuilder[domain.Characteristic, *domain.DifficultyMap](groups.Len())
	for char, group := range groups.Build().All() {
		chars.Set(*char, (*group).Build())
	}
	song.Characteristics = chars.Build()

	song.UploadedUnixTime, err = parseTime(*rec.Uploaded)
	if err != nil {
		return song, 0, fmt.Errorf("song %s Uploaded: %w", *rec.Hash, err)
	}

	song.Heat = domain.Heat(song.Upvotes, song.Downvotes, song.UploadedUnixTime)
	if song.Rating, err = domain.Rating(song.Upvotes, song.Downvotes); err != nil {
		song.Rating = 0
	}

	return song, dropped, nil
}

func difficulty(d *difficultyRecord) (domain.DifficultyStats, error) {
	raw := domain.DifficultyStats{
		Stars:     d.Stars,
		Ranked:    d.Ranked,
		Njs:       d.Njs,
		NjsOffset: d.NjsOffset,
		Bombs:     d.Bombs,
		Notes:     d.Notes,
		Obstacles: d.Obstacles,
	}

	var err error
	if raw.Diff, err = text("Diff", *d.Diff); err != nil {
		return raw, err
	}
	if raw.Char, err = text("Char", *d.Char); err != nil {
		return raw, err
	}
	if raw.RankedUpdateTime, err = text("RankedUpdateTime", d.RankedUpdateTime); err != nil {
		return raw, err
	}

	requirements := make([]cstring.String, len(d.Requirements))
	for i, r := range d.Requirements {
		if requirements[i], err = text("Requirements", r); err != nil {
			return raw, err
		}
	}
	raw.Requirements = view.NewSeq(requirements)

	return raw, nil
}

func text(field, s string) (cstring.String, error) {
	str, err := cstring.FromString(s)
	if err != nil {
		return str, fmt.Errorf("%w: field %s: %w", ErrParse, field, err)
	}
	return str, nil
}

func parseTime(s string) (int64, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTimeParse, err)
	}
	return t.Unix(), nil
}
