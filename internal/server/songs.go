package server

import (
	"errors"
	"net/http"
	"time"

	"beatstar/internal/api"
	"beatstar/internal/domain"
	"beatstar/internal/middleware"
	"beatstar/internal/service"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

type SongServer struct {
	songSvc *service.SongService
}

func NewSongServer(songSvc *service.SongService) *SongServer {
	return &SongServer{songSvc: songSvc}
}

func (s *SongServer) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.health)
	mux.HandleFunc("GET /v1/database", s.getDatabase)
	mux.HandleFunc("GET /v1/ingestions/latest", s.getLatestIngestion)
	mux.HandleFunc("GET /v1/songs/{hash}", s.getSong)
	mux.HandleFunc("GET /v1/songs/{hash}/characteristics", s.listCharacteristics)
	mux.HandleFunc("GET /v1/songs/{hash}/characteristics/{char}", s.listDifficulties)
	mux.HandleFunc("GET /v1/songs/{hash}/characteristics/{char}/{diff}", s.getDifficulty)
	return mux
}

func (s *SongServer) health(w http.ResponseWriter, r *http.Request) {
	if s.songSvc.Cached() == nil {
		writeError(w, r, http.StatusServiceUnavailable, "database not loaded")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *SongServer) getDatabase(w http.ResponseWriter, r *http.Request) {
	db, err := s.songSvc.RetrieveDatabase(r.Context())
	if err != nil {
		s.fetchFailed(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, databaseResponse{
		Songs:    db.Len(),
		LoadedAt: s.songSvc.LoadedAt().UTC().Format(time.RFC3339),
	})
}

func (s *SongServer) getLatestIngestion(w http.ResponseWriter, r *http.Request) {
	run, err := s.songSvc.LatestRun(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to load latest ingestion run")
		writeError(w, r, http.StatusInternalServerError, "failed to load ingestion runs")
		return
	}
	if run == nil {
		writeError(w, r, http.StatusNotFound, "no ingestion recorded")
		return
	}
	writeJSON(w, r, http.StatusOK, toIngestionResponse(run))
}

func (s *SongServer) getSong(w http.ResponseWriter, r *http.Request) {
	song, ok := s.lookupSong(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, toSongResponse(song))
}

func (s *SongServer) listCharacteristics(w http.ResponseWriter, r *http.Request) {
	song, ok := s.lookupSong(w, r)
	if !ok {
		return
	}

	chars := s.songSvc.EnumerateCharacteristics(song)
	names := make([]string, 0, chars.Len())
	for i := 0; i < chars.Len(); i++ {
		names = append(names, chars.KeyAt(i).String())
	}
	writeJSON(w, r, http.StatusOK, names)
}

func (s *SongServer) listDifficulties(w http.ResponseWriter, r *http.Request) {
	song, ok := s.lookupSong(w, r)
	if !ok {
		return
	}
	char, ok := parseCharacteristic(w, r)
	if !ok {
		return
	}

	diffs := s.songSvc.EnumerateDifficulties(song, char)
	labels := make([]string, 0, diffs.Len())
	for i := 0; i < diffs.Len(); i++ {
		labels = append(labels, diffs.KeyAt(i).Text())
	}
	writeJSON(w, r, http.StatusOK, labels)
}

func (s *SongServer) getDifficulty(w http.ResponseWriter, r *http.Request) {
	song, ok := s.lookupSong(w, r)
	if !ok {
		return
	}
	char, ok := parseCharacteristic(w, r)
	if !ok {
		return
	}

	diff := s.songSvc.GetDifficulty(song, char, r.PathValue("diff"))
	if diff == nil {
		writeError(w, r, http.StatusNotFound, "difficulty not found")
		return
	}
	writeJSON(w, r, http.StatusOK, toDifficultyResponse(diff))
}

func (s *SongServer) lookupSong(w http.ResponseWriter, r *http.Request) (*domain.Song, bool) {
	song, err := s.songSvc.GetSong(r.Context(), r.PathValue("hash"))
	if err != nil {
		s.fetchFailed(w, r, err)
		return nil, false
	}
	if song == nil {
		writeError(w, r, http.StatusNotFound, "song not found")
		return nil, false
	}
	return song, true
}

func (s *SongServer) fetchFailed(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("database unavailable")

	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		writeError(w, r, http.StatusBadGateway, err.Error())
		return
	}
	writeError(w, r, http.StatusServiceUnavailable, err.Error())
}

func parseCharacteristic(w http.ResponseWriter, r *http.Request) (domain.Characteristic, bool) {
	char, err := domain.ParseCharacteristic(r.PathValue("char"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return char, false
	}
	return char, true
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Int("status", status).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{
		Error:     msg,
		RequestID: middleware.GetRequestID(r.Context()),
	})
}
