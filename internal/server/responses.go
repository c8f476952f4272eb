package server

import (
	"time"

	"beatstar/internal/domain"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type databaseResponse struct {
	Songs    int    `json:"songs"`
	LoadedAt string `json:"loaded_at"`
}

type ingestionResponse struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Bytes        int    `json:"bytes"`
	Songs        int    `json:"songs"`
	Diffs        int    `json:"diffs"`
	DroppedDiffs int    `json:"dropped_diffs"`
	Duplicates   int    `json:"duplicates"`
	Succeeded    bool   `json:"succeeded"`
	Error        string `json:"error,omitempty"`
	StartedAt    string `json:"started_at"`
	FinishedAt   string `json:"finished_at"`
}

type songResponse struct {
	Hash             string               `json:"hash"`
	Key              string               `json:"key"`
	SongName         string               `json:"song_name"`
	SongSubName      string               `json:"song_sub_name"`
	SongAuthorName   string               `json:"song_author_name"`
	LevelAuthorName  string               `json:"level_author_name"`
	Bpm              float64              `json:"bpm"`
	Upvotes          uint32               `json:"upvotes"`
	Downvotes        uint32               `json:"downvotes"`
	Downloads        uint32               `json:"downloads"`
	DurationSecs     uint32               `json:"duration_secs"`
	Uploaded         string               `json:"uploaded"`
	UploadedUnixTime int64                `json:"uploaded_unix_time"`
	Heat             float64              `json:"heat"`
	Rating           float64              `json:"rating"`
	Diffs            []difficultyResponse `json:"diffs"`
	Characteristics  map[string][]string  `json:"characteristics"`
}

type difficultyResponse struct {
	Diff                 string   `json:"diff"`
	Characteristic       string   `json:"characteristic"`
	Char                 string   `json:"char"`
	Stars                float64  `json:"stars"`
	Ranked               bool     `json:"ranked"`
	ApproximatePPValue   float64  `json:"approximate_pp_value"`
	Njs                  float64  `json:"njs"`
	NjsOffset            float64  `json:"njs_offset"`
	Bombs                uint32   `json:"bombs"`
	Notes                uint32   `json:"notes"`
	Obstacles            uint32   `json:"obstacles"`
	Requirements         []string `json:"requirements"`
	RankedUpdateTime     string   `json:"ranked_update_time"`
	RankedUpdateUnixTime int64    `json:"ranked_update_unix_time"`
}

func toSongResponse(s *domain.Song) songResponse {
	resp := songResponse{
		Hash:             s.Hash.Text(),
		Key:              s.Key.Text(),
		SongName:         s.SongName.Text(),
		SongSubName:      s.SongSubName.Text(),
		SongAuthorName:   s.SongAuthorName.Text(),
		LevelAuthorName:  s.LevelAuthorName.Text(),
		Bpm:              s.Bpm,
		Upvotes:          s.Upvotes,
		Downvotes:        s.Downvotes,
		Downloads:        s.Downloads,
		DurationSecs:     s.DurationSecs,
		Uploaded:         s.Uploaded.Text(),
		UploadedUnixTime: s.UploadedUnixTime,
		Heat:             s.Heat,
		Rating:           s.Rating,
		Diffs:            make([]difficultyResponse, 0, s.Diffs.Len()),
		Characteristics:  make(map[string][]string, s.Characteristics.Len()),
	}

	for _, d := range s.Diffs.All() {
		resp.Diffs = append(resp.Diffs, toDifficultyResponse(d))
	}
	for char, diffs := range s.Characteristics.All() {
		labels := make([]string, 0, (*diffs).Len())
		for label := range (*diffs).All() {
			labels = append(labels, label.Text())
		}
		resp.Characteristics[char.String()] = labels
	}
	return resp
}

func toDifficultyResponse(d *domain.DifficultyStats) difficultyResponse {
	requirements := make([]string, 0, d.Requirements.Len())
	for _, r := range d.Requirements.All() {
		requirements = append(requirements, r.Text())
	}

	return difficultyResponse{
		Diff:                 d.Diff.Text(),
		Characteristic:       d.Characteristic().String(),
		Char:                 d.Char.Text(),
		Stars:                d.Stars,
		Ranked:               d.Ranked,
		ApproximatePPValue:   d.ApproximatePPValue,
		Njs:                  d.Njs,
		NjsOffset:            d.NjsOffset,
		Bombs:                d.Bombs,
		Notes:                d.Notes,
		Obstacles:            d.Obstacles,
		Requirements:         requirements,
		RankedUpdateTime:     d.RankedUpdateTime.Text(),
		RankedUpdateUnixTime: d.RankedUpdateUnixTime,
	}
}

func toIngestionResponse(run *domain.IngestionRun) ingestionResponse {
	return ingestionResponse{
		ID:           run.ID,
		Source:       run.Source,
		Bytes:        run.Bytes,
		Songs:        run.Songs,
		Diffs:        run.Diffs,
		DroppedDiffs: run.DroppedDiffs,
		Duplicates:   run.Duplicates,
		Succeeded:    run.Succeeded(),
		Error:        run.Error,
		StartedAt:    run.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:   run.FinishedAt.UTC().Format(time.RFC3339),
	}
}
