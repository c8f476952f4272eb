package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const DefaultDatasetURL = "https://github.com/andruzzzhka/BeatSaberScrappedData/raw/master/combinedScrappedData.zip"

type Config struct {
	DatasetURL     string
	SnapshotPath   string
	PreferSnapshot bool
	DBPath         string
	ServerPort     string
	LogLevel       string
	FetchTimeout   time.Duration
	WarmOnStart    bool
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	fetchTimeout, err := time.ParseDuration(getEnv("FETCH_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
	}
	preferSnapshot, err := strconv.ParseBool(getEnv("PREFER_SNAPSHOT", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid PREFER_SNAPSHOT: %w", err)
	}
	warmOnStart, err := strconv.ParseBool(getEnv("WARM_ON_START", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid WARM_ON_START: %w", err)
	}

	cfg := &Config{
		DatasetURL:     getEnv("DATASET_URL", DefaultDatasetURL),
		SnapshotPath:   getEnv("SNAPSHOT_PATH", ""),
		PreferSnapshot: preferSnapshot,
		DBPath:         getEnv("DB_PATH", "beatstar.db"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		FetchTimeout:   fetchTimeout,
		WarmOnStart:    warmOnStart,
	}

	if cfg.DatasetURL == "" {
		return nil, fmt.Errorf("DATASET_URL is required")
	}

	logger.Info().
		Str("dataset_url", cfg.DatasetURL).
		Str("snapshot_path", cfg.SnapshotPath).
		Bool("prefer_snapshot", cfg.PreferSnapshot).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("fetch_timeout", cfg.FetchTimeout).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
