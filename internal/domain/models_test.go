package domain

import (
	"testing"

	"beatstar/internal/cstring"
	"beatstar/internal/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSong(t *testing.T) *Song {
	t.Helper()

	expert := NewDifficultyStats(DifficultyStats{
		Diff:   cstring.Must("Expert"),
		Stars:  6,
		Ranked: true,
		Char:   cstring.Must("Standard"),
	}, CharacteristicStandard, 1600000000)

	standard := view.NewMapBuilder[cstring.String, DifficultyStats](1)
	standard.Set(expert.Diff, expert)

	chars := view.NewMapBuilder[Characteristic, *DifficultyMap](1)
	chars.Set(CharacteristicStandard, standard.Build())

	return &Song{
		Hash:            cstring.Must("abc"),
		Diffs:           view.NewSeq([]DifficultyStats{expert}),
		Characteristics: chars.Build(),
	}
}

func TestNewDifficultyStats_RecomputesPP(t *testing.T) {
	d := NewDifficultyStats(DifficultyStats{
		Stars:              10,
		Ranked:             true,
		ApproximatePPValue: 99999,
	}, CharacteristicLawless, 42)

	assert.InDelta(t, 450, d.ApproximatePPValue, 1e-9)
	assert.Equal(t, CharacteristicLawless, d.Characteristic())
	assert.Equal(t, int64(42), d.RankedUpdateUnixTime)
}

func TestSong_Difficulty(t *testing.T) {
	song := buildSong(t)

	got := song.Difficulty(CharacteristicStandard, "Expert")
	require.NotNil(t, got)
	assert.Equal(t, "Expert", got.Diff.Text())

	assert.Nil(t, song.Difficulty(CharacteristicStandard, "Easy"))
	assert.Nil(t, song.Difficulty(CharacteristicLawless, "Expert"))
	assert.Nil(t, song.Difficulty(CharacteristicStandard, "bad\x00label"))
}

func TestSong_DifficultyEnumeration(t *testing.T) {
	song := buildSong(t)

	assert.Equal(t, 1, song.DifficultyCount(CharacteristicStandard))
	assert.Equal(t, 0, song.DifficultyCount(CharacteristicOneSaber))

	label := song.DifficultyLabelAt(CharacteristicStandard, 0)
	require.NotNil(t, label)
	assert.Equal(t, "Expert", label.Text())
	assert.Nil(t, song.DifficultyLabelAt(CharacteristicStandard, 1))
	assert.Nil(t, song.DifficultyLabelAt(CharacteristicOneSaber, 0))
}

func TestDatabase_Song(t *testing.T) {
	song := buildSong(t)
	b := view.NewMapBuilder[cstring.String, Song](1)
	b.Set(song.Hash, *song)
	db := &Database{Songs: b.Build()}

	assert.Equal(t, 1, db.Len())
	require.NotNil(t, db.Song("abc"))
	assert.Nil(t, db.Song("missing"))
	assert.Nil(t, db.Song("a\x00"))
}
