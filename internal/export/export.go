// Package export hands the song database to callers on the far side of a C
// boundary.
//
// Songs and difficulties cross as integer Handles instead of Go pointers, so the
// foreign side never holds a reference to memory that contains Go pointers.
// Strings cross as the first byte of their NUL-terminated buffer. Every buffer
// handed out is pinned and stays pinned until Close, which in the shared
// library never happens: the database lives for the whole process.
package export

import (
	"context"
	"runtime"
	"sync"

	"beatstar/internal/cstring"
	"beatstar/internal/domain"

	"github.com/rs/zerolog"
)

// Handle names a song or difficulty. Zero is the null handle.
type Handle uintptr

type SongField int

const (
	SongKey SongField = iota
	SongName
	SongSubName
	SongAuthorName
	LevelAuthorName
	SongHash
	SongUploaded
)

type DifficultyField int

const (
	DifficultyLabel DifficultyField = iota
	DifficultyChar
	DifficultyRankedUpdateTime
)

// SongInfo holds a song's scalar fields.
type SongInfo struct {
	Bpm              float64
	Upvotes          uint32
	Downvotes        uint32
	Downloads        uint32
	DurationSecs     uint32
	UploadedUnixTime int64
	Heat             float64
	Rating           float64
}

// DifficultyInfo holds a difficulty's scalar fields.
type DifficultyInfo struct {
	Stars                float64
	Ranked               bool
	Njs                  float64
	NjsOffset            float64
	Bombs                uint32
	Notes                uint32
	Obstacles            uint32
	ApproximatePPValue   float64
	RankedUpdateUnixTime int64
	Characteristic       domain.Characteristic
}

// Source yields the process-wide database, building it on first use.
type Source interface {
	RetrieveDatabase(ctx context.Context) (*domain.Database, error)
}

// table assigns each pointer exactly one handle.
type table[T any] struct {
	ids   map[*T]Handle
	items []*T
}

func (t *table[T]) handle(v *T) Handle {
	if v == nil {
		return 0
	}
	if h, ok := t.ids[v]; ok {
		return h
	}
	if t.ids == nil {
		t.ids = make(map[*T]Handle)
	}
	t.items = append(t.items, v)
	h := Handle(len(t.items))
	t.ids[v] = h
	return h
}

func (t *table[T]) get(h Handle) *T {
	if h == 0 || h > Handle(len(t.items)) {
		return nil
	}
	return t.items[h-1]
}

type Exporter struct {
	source Source
	logger zerolog.Logger

	mu     sync.Mutex
	db     *domain.Database
	pinner runtime.Pinner
	pinned map[*byte]struct{}
	songs  table[domain.Song]
	diffs  table[domain.DifficultyStats]
}

func New(source Source, logger zerolog.Logger) *Exporter {
	return &Exporter{
		source: source,
		logger: logger,
		pinned: make(map[*byte]struct{}),
	}
}

// Load makes the database available, fetching it if nobody has yet.
func (e *Exporter) Load(ctx context.Context) error {
	e.mu.Lock()
	loaded := e.db != nil
	e.mu.Unlock()
	if loaded {
		return nil
	}

	db, err := e.source.RetrieveDatabase(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("database unavailable for export")
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		e.db = db
		e.logger.Info().Int("songs", db.Len()).Msg("database exported")
	}
	return nil
}

// Len is the number of songs, or zero before Load succeeds.
func (e *Exporter) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return 0
	}
	return e.db.Len()
}

// SongAt returns the song at an enumeration position.
func (e *Exporter) SongAt(index int) Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return 0
	}
	return e.songs.handle(e.db.Songs.ValueAt(index))
}

// HashAt returns the hash key at an enumeration position.
func (e *Exporter) HashAt(index int) *byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return nil
	}
	key := e.db.Songs.KeyAt(index)
	if key == nil {
		return nil
	}
	return e.pin(*key)
}

// GetSong looks a song up by hash, loading the database first if needed. hash
// must be a buffer the caller gives up.
func (e *Exporter) GetSong(ctx context.Context, hash []byte) Handle {
	key, err := cstring.Adopt(hash)
	if err != nil {
		return 0
	}
	if err := e.Load(ctx); err != nil {
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.songs.handle(e.db.Songs.Get(key))
}

func (e *Exporter) SongText(h Handle, field SongField) *byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	song := e.songs.get(h)
	if song == nil {
		return nil
	}

	var s cstring.String
	switch field {
	case SongKey:
		s = song.Key
	case SongName:
		s = song.SongName
	case SongSubName:
		s = song.SongSubName
	case SongAuthorName:
		s = song.SongAuthorName
	case LevelAuthorName:
		s = song.LevelAuthorName
	case SongHash:
		s = song.Hash
	case SongUploaded:
		s = song.Uploaded
	default:
		return nil
	}
	return e.pin(s)
}

func (e *Exporter) SongInfo(h Handle) (SongInfo, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	song := e.songs.get(h)
	if song == nil {
		return SongInfo{}, false
	}
	return SongInfo{
		Bpm:              song.Bpm,
		Upvotes:          song.Upvotes,
		Downvotes:        song.Downvotes,
		Downloads:        song.Downloads,
		DurationSecs:     song.DurationSecs,
		UploadedUnixTime: song.UploadedUnixTime,
		Heat:             song.Heat,
		Rating:           song.Rating,
	}, true
}

// HashCode is the content hash of the song's hash string, so two handles to
// equal songs hash alike.
func (e *Exporter) HashCode(h Handle) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	song := e.songs.get(h)
	if song == nil {
		return 0
	}
	return song.Hash.Hash()
}

func (e *Exporter) DiffLen(h Handle) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	song := e.songs.get(h)
	if song == nil {
		return 0
	}
	return song.Diffs.Len()
}

// DiffAt returns an entry of the song's flat difficulty list, including entries
// whose characteristic did not parse.
func (e *Exporter) DiffAt(h Handle, index int) Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	song := e.songs.get(h)
	if song == nil {
		return 0
	}
	return e.diffs.handle(song.Diffs.Get(index))
}

func (e *Exporter) CharacteristicsLen(h Handle) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	song := e.songs.get(h)
	if song == nil {
		return 0
	}
	return song.Characteristics.Len()
}

// CharacteristicAt returns Unknown when index is out of range. Unknown is never
// a grouped key.
func (e *Exporter) CharacteristicAt(h Handle, index int) domain.Characteristic {
	e.mu.Lock()
	defer e.mu.Unlock()

	song := e.songs.get(h)
	if song == nil {
		return domain.CharacteristicUnknown
	}
	char := song.Characteristics.KeyAt(index)
	if char == nil {
		return domain.CharacteristicUnknown
	}
	return *char
}

func (e *Exporter) DifficultyLen(h Handle, char domain.Characteristic) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	song := e.songs.get(h)
	if song == nil {
		return 0
	}
	return song.DifficultyCount(char)
}

func (e *Exporter) DifficultyLabelAt(h Handle, char domain.Characteristic, index int) *byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	song := e.songs.get(h)
	if song == nil {
		return nil
	}
	label := song.DifficultyLabelAt(char, index)
	if label == nil {
		return nil
	}
	return e.pin(*label)
}

// Difficulty looks up a grouped difficulty. label must be a buffer the caller
// gives up.
func (e *Exporter) Difficulty(h Handle, char domain.Characteristic, label []byte) Handle {
	key, err := cstring.Adopt(label)
	if err != nil {
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	song := e.songs.get(h)
	if song == nil {
		return 0
	}
	return e.diffs.handle(song.Difficulties(char).Get(key))
}

func (e *Exporter) DifficultyText(h Handle, field DifficultyField) *byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	diff := e.diffs.get(h)
	if diff == nil {
		return nil
	}

	switch field {
	case DifficultyLabel:
		return e.pin(diff.Diff)
	case DifficultyChar:
		return e.pin(diff.Char)
	case DifficultyRankedUpdateTime:
		return e.pin(diff.RankedUpdateTime)
	}
	return nil
}

func (e *Exporter) DifficultyInfo(h Handle) (DifficultyInfo, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	diff := e.diffs.get(h)
	if diff == nil {
		return DifficultyInfo{}, false
	}
	return DifficultyInfo{
		Stars:                diff.Stars,
		Ranked:               diff.Ranked,
		Njs:                  diff.Njs,
		NjsOffset:            diff.NjsOffset,
		Bombs:                diff.Bombs,
		Notes:                diff.Notes,
		Obstacles:            diff.Obstacles,
		ApproximatePPValue:   diff.ApproximatePPValue,
		RankedUpdateUnixTime: diff.RankedUpdateUnixTime,
		Characteristic:       diff.Characteristic(),
	}, true
}

func (e *Exporter) RequirementsLen(h Handle) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	diff := e.diffs.get(h)
	if diff == nil {
		return 0
	}
	return diff.Requirements.Len()
}

func (e *Exporter) RequirementAt(h Handle, index int) *byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	diff := e.diffs.get(h)
	if diff == nil {
		return nil
	}
	req := diff.Requirements.Get(index)
	if req == nil {
		return nil
	}
	return e.pin(*req)
}

// Close unpins every buffer and invalidates all handles. Pointers handed out
// earlier must not be read afterwards.
func (e *Exporter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pinner.Unpin()
	clear(e.pinned)
	e.songs = table[domain.Song]{}
	e.diffs = table[domain.DifficultyStats]{}
}

// pin returns s's buffer, pinned. The zero String yields nil. Callers hold mu.
func (e *Exporter) pin(s cstring.String) *byte {
	p := s.Ptr()
	if p == nil {
		return nil
	}
	if _, ok := e.pinned[p]; !ok {
		e.pinner.Pin(p)
		e.pinned[p] = struct{}{}
	}
	return p
}
