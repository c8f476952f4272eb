package domain

import (
	"beatstar/internal/cstring"
	"beatstar/internal/view"
)

type DifficultyStats struct {
	Diff         cstring.String
	Stars        float64
	Ranked       bool
	Njs          float64
	NjsOffset    float64
	Bombs        uint32
	Notes        uint32
	Obstacles    uint32
	Char         cstring.String
	Requirements *view.Seq[cstring.String]

	RankedUpdateTime     cstring.String
	RankedUpdateUnixTime int64

	// derived during ingestion
	ApproximatePPValue float64
	characteristic     Characteristic
}

// NewDifficultyStats attaches the derived fields to raw difficulty data. pp is
// always recomputed from stars and ranked.
func NewDifficultyStats(raw DifficultyStats, char Characteristic, rankedUnix int64) DifficultyStats {
	raw.ApproximatePPValue = ApproximatePP(raw.Stars, raw.Ranked)
	raw.characteristic = char
	raw.RankedUpdateUnixTime = rankedUnix
	return raw
}

// Characteristic is the parsed Char, or Unknown when it did not parse.
func (d *DifficultyStats) Characteristic() Characteristic {
	return d.characteristic
}

// DifficultyMap groups one characteristic's difficulties by label.
type DifficultyMap = view.Map[cstring.String, DifficultyStats]

// CharacteristicMap groups a song's difficulties by characteristic.
type CharacteristicMap = view.Map[Characteristic, *DifficultyMap]

type Song struct {
	Bpm             float64
	Upvotes         uint32
	Downvotes       uint32
	Downloads       uint32
	DurationSecs    uint32
	Key             cstring.String
	SongName        cstring.String
	SongSubName     cstring.String
	SongAuthorName  cstring.String
	LevelAuthorName cstring.String
	Hash            cstring.String
	Uploaded        cstring.String

	UploadedUnixTime int64
	Heat             float64
	Rating           float64

	Diffs           *view.Seq[DifficultyStats]
	Characteristics *CharacteristicMap
}

// Difficulty looks up the stats for a characteristic and difficulty label.
func (s *Song) Difficulty(char Characteristic, label string) *DifficultyStats {
	diffs := s.Characteristics.Get(char)
	if diffs == nil {
		return nil
	}
	key, err := cstring.FromString(label)
	if err != nil {
		return nil
	}
	return (*diffs).Get(key)
}

// Difficulties returns the labelled difficulties of one characteristic, or nil.
func (s *Song) Difficulties(char Characteristic) *DifficultyMap {
	diffs := s.Characteristics.Get(char)
	if diffs == nil {
		return nil
	}
	return *diffs
}

func (s *Song) DifficultyCount(char Characteristic) int {
	return s.Difficulties(char).Len()
}

// DifficultyLabelAt borrows the label at an enumeration position of one
// characteristic, or returns nil.
func (s *Song) DifficultyLabelAt(char Characteristic, index int) *cstring.String {
	return s.Difficulties(char).KeyAt(index)
}

// Database maps song hash to song. It is never modified after ingestion.
type Database struct {
	Songs *view.Map[cstring.String, Song]
}

func (d *Database) Len() int {
	return d.Songs.Len()
}

// Song looks up a song by hash.
func (d *Database) Song(hash string) *Song {
	key, err := cstring.FromString(hash)
	if err != nil {
		return nil
	}
	return d.Songs.Get(key)
}
