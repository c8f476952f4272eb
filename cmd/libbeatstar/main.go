// Command libbeatstar builds the song database as a C shared library:
//
//	go build -buildmode=c-shared -o libbeatstar.so ./cmd/libbeatstar
//
// Songs and difficulties are opaque uintptr_t handles where 0 means null.
// Returned strings are NUL-terminated, owned by the library and valid for the
// life of the process; callers must not free or modify them.
package main

/*
#include <stdbool.h>
#include <stddef.h>
#include <stdint.h>
#include <string.h>

typedef enum {
	BeatStarCharacteristics_Unknown,
	BeatStarCharacteristics_Standard,
	BeatStarCharacteristics_OneSaber,
	BeatStarCharacteristics_NoArrows,
	BeatStarCharacteristics_Lightshow,
	BeatStarCharacteristics_Degree90,
	BeatStarCharacteristics_Degree360,
	BeatStarCharacteristics_Lawless,
} BeatStarCharacteristics;

typedef enum {
	BeatStarSong_Key,
	BeatStarSong_SongName,
	BeatStarSong_SongSubName,
	BeatStarSong_SongAuthorName,
	BeatStarSong_LevelAuthorName,
	BeatStarSong_Hash,
	BeatStarSong_Uploaded,
} BeatStarSongText;

typedef enum {
	BeatStarDifficulty_Diff,
	BeatStarDifficulty_Char,
	BeatStarDifficulty_RankedUpdateTime,
} BeatStarDifficultyText;

typedef struct {
	double bpm;
	uint32_t upvotes;
	uint32_t downvotes;
	uint32_t downloads;
	uint32_t duration_secs;
	int64_t uploaded_unix_time;
	double heat;
	double rating;
} BeatStarSongStats;

typedef struct {
	double stars;
	bool ranked;
	double njs;
	double njs_offset;
	uint32_t bombs;
	uint32_t notes;
	uint32_t obstacles;
	double approximate_pp_value;
	int64_t ranked_update_unix_time;
	int characteristic;
} BeatStarSongDifficultyStats;
*/
import "C"

import (
	"context"
	"os"
	"sync"
	"unsafe"

	"beatstar/internal/config"
	"beatstar/internal/constants"
	"beatstar/internal/database"
	"beatstar/internal/domain"
	"beatstar/internal/export"
	fxmodules "beatstar/internal/fx"
	"beatstar/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

var (
	bootOnce sync.Once
	exporter *export.Exporter
)

// instance builds the exporter on first use. It returns nil when the
// dependency graph cannot be built; every export treats that as null.
func instance() *export.Exporter {
	bootOnce.Do(func() {
		var (
			songs  *service.SongService
			logger zerolog.Logger
		)
		app := fx.New(
			fx.NopLogger,
			fxmodules.Core,
			fx.Decorate(embeddedConfig),
			fx.Populate(&songs, &logger),
		)
		if err := app.Err(); err != nil {
			os.Stderr.WriteString("libbeatstar: " + err.Error() + "\n")
			return
		}
		exporter = export.New(songs, logger)
	})
	return exporter
}

// embeddedConfig keeps the run log in memory unless DB_PATH is set, so a host
// process never finds a stray database file in its working directory.
func embeddedConfig(cfg *config.Config) *config.Config {
	if _, ok := os.LookupEnv("DB_PATH"); !ok {
		cfg.DBPath = database.MemoryPath
	}
	return cfg
}

func goBytes(s *C.char) []byte {
	if s == nil {
		return nil
	}
	return C.GoBytes(unsafe.Pointer(s), C.int(C.strlen(s)))
}

func cstr(p *byte) *C.char {
	return (*C.char)(unsafe.Pointer(p))
}

func handle(h C.uintptr_t) export.Handle {
	return export.Handle(h)
}

// beatstar_retrieve_database_extern loads the database, fetching it on first
// call. It returns false when it is unavailable; a later call retries.
//
//export beatstar_retrieve_database_extern
func beatstar_retrieve_database_extern() C.bool {
	e := instance()
	if e == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), constants.FetchTimeout)
	defer cancel()
	return e.Load(ctx) == nil
}

//export beatstar_get_song_extern
func beatstar_get_song_extern(hash *C.char) C.uintptr_t {
	e := instance()
	if e == nil || hash == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), constants.FetchTimeout)
	defer cancel()
	return C.uintptr_t(e.GetSong(ctx, goBytes(hash)))
}

//export BeatStarDataFile_SongsLen
func BeatStarDataFile_SongsLen() C.size_t {
	if e := instance(); e != nil {
		return C.size_t(e.Len())
	}
	return 0
}

//export BeatStarDataFile_SongsGetAt
func BeatStarDataFile_SongsGetAt(index C.size_t) C.uintptr_t {
	if e := instance(); e != nil {
		return C.uintptr_t(e.SongAt(int(index)))
	}
	return 0
}

//export BeatStarDataFile_SongsGetKey
func BeatStarDataFile_SongsGetKey(index C.size_t) *C.char {
	if e := instance(); e != nil {
		return cstr(e.HashAt(int(index)))
	}
	return nil
}

//export BeatStarSong_Text
func BeatStarSong_Text(song C.uintptr_t, field C.BeatStarSongText) *C.char {
	if e := instance(); e != nil {
		return cstr(e.SongText(handle(song), export.SongField(field)))
	}
	return nil
}

// BeatStarSong_Stats fills out and reports whether song was a live handle.
//
//export BeatStarSong_Stats
func BeatStarSong_Stats(song C.uintptr_t, out *C.BeatStarSongStats) C.bool {
	e := instance()
	if e == nil || out == nil {
		return false
	}
	info, ok := e.SongInfo(handle(song))
	if !ok {
		return false
	}
	*out = C.BeatStarSongStats{
		bpm:                C.double(info.Bpm),
		upvotes:            C.uint32_t(info.Upvotes),
		downvotes:          C.uint32_t(info.Downvotes),
		downloads:          C.uint32_t(info.Downloads),
		duration_secs:      C.uint32_t(info.DurationSecs),
		uploaded_unix_time: C.int64_t(info.UploadedUnixTime),
		heat:               C.double(info.Heat),
		rating:             C.double(info.Rating),
	}
	return true
}

//export BeatStarSong_rating
func BeatStarSong_rating(song C.uintptr_t) C.double {
	if e := instance(); e != nil {
		info, _ := e.SongInfo(handle(song))
		return C.double(info.Rating)
	}
	return 0
}

//export BeatStarSong_HashCode
func BeatStarSong_HashCode(song C.uintptr_t) C.uint64_t {
	if e := instance(); e != nil {
		return C.uint64_t(e.HashCode(handle(song)))
	}
	return 0
}

//export BeatStarSong_DiffLen
func BeatStarSong_DiffLen(song C.uintptr_t) C.size_t {
	if e := instance(); e != nil {
		return C.size_t(e.DiffLen(handle(song)))
	}
	return 0
}

//export BeatStarSong_DiffGet
func BeatStarSong_DiffGet(song C.uintptr_t, index C.size_t) C.uintptr_t {
	if e := instance(); e != nil {
		return C.uintptr_t(e.DiffAt(handle(song), int(index)))
	}
	return 0
}

//export BeatStarSong_map_CharacteristicsLen
func BeatStarSong_map_CharacteristicsLen(song C.uintptr_t) C.size_t {
	if e := instance(); e != nil {
		return C.size_t(e.CharacteristicsLen(handle(song)))
	}
	return 0
}

//export BeatStarSong_map_CharacteristicsKeyGet
func BeatStarSong_map_CharacteristicsKeyGet(song C.uintptr_t, index C.size_t) C.BeatStarCharacteristics {
	if e := instance(); e != nil {
		return C.BeatStarCharacteristics(e.CharacteristicAt(handle(song), int(index)))
	}
	return C.BeatStarCharacteristics_Unknown
}

//export BeatStarSong_CharacteristicDifficultyLen
func BeatStarSong_CharacteristicDifficultyLen(song C.uintptr_t, characteristic C.BeatStarCharacteristics) C.size_t {
	if e := instance(); e != nil {
		return C.size_t(e.DifficultyLen(handle(song), domain.Characteristic(characteristic)))
	}
	return 0
}

//export BeatStarSong_CharacteristicsGetStrKey
func BeatStarSong_CharacteristicsGetStrKey(song C.uintptr_t, characteristic C.BeatStarCharacteristics, index C.size_t) *C.char {
	if e := instance(); e != nil {
		return cstr(e.DifficultyLabelAt(handle(song), domain.Characteristic(characteristic), int(index)))
	}
	return nil
}

//export BeatStarSong_CharacteristicStatsGet
func BeatStarSong_CharacteristicStatsGet(song C.uintptr_t, characteristic C.BeatStarCharacteristics, diff *C.char) C.uintptr_t {
	e := instance()
	if e == nil || diff == nil {
		return 0
	}
	return C.uintptr_t(e.Difficulty(handle(song), domain.Characteristic(characteristic), goBytes(diff)))
}

//export BeatStarSongDifficultyStats_Text
func BeatStarSongDifficultyStats_Text(diff C.uintptr_t, field C.BeatStarDifficultyText) *C.char {
	if e := instance(); e != nil {
		return cstr(e.DifficultyText(handle(diff), export.DifficultyField(field)))
	}
	return nil
}

//export BeatStarSongDifficultyStats_Stats
func BeatStarSongDifficultyStats_Stats(diff C.uintptr_t, out *C.BeatStarSongDifficultyStats) C.bool {
	e := instance()
	if e == nil || out == nil {
		return false
	}
	info, ok := e.DifficultyInfo(handle(diff))
	if !ok {
		return false
	}
	*out = C.BeatStarSongDifficultyStats{
		stars:                   C.double(info.Stars),
		ranked:                  C.bool(info.Ranked),
		njs:                     C.double(info.Njs),
		njs_offset:              C.double(info.NjsOffset),
		bombs:                   C.uint32_t(info.Bombs),
		notes:                   C.uint32_t(info.Notes),
		obstacles:               C.uint32_t(info.Obstacles),
		approximate_pp_value:    C.double(info.ApproximatePPValue),
		ranked_update_unix_time: C.int64_t(info.RankedUpdateUnixTime),
		characteristic:          C.int(info.Characteristic),
	}
	return true
}

//export BeatStarSongDifficultyStats_DiffCharacteristicsGet
func BeatStarSongDifficultyStats_DiffCharacteristicsGet(diff C.uintptr_t) C.BeatStarCharacteristics {
	if e := instance(); e != nil {
		info, _ := e.DifficultyInfo(handle(diff))
		return C.BeatStarCharacteristics(info.Characteristic)
	}
	return C.BeatStarCharacteristics_Unknown
}

//export BeatStarSongDifficultyStats_requirementsLen
func BeatStarSongDifficultyStats_requirementsLen(diff C.uintptr_t) C.size_t {
	if e := instance(); e != nil {
		return C.size_t(e.RequirementsLen(handle(diff)))
	}
	return 0
}

//export BeatStarSongDifficultyStats_requirementsGet
func BeatStarSongDifficultyStats_requirementsGet(diff C.uintptr_t, index C.size_t) *C.char {
	if e := instance(); e != nil {
		return cstr(e.RequirementAt(handle(diff), int(index)))
	}
	return nil
}

func main() {}
