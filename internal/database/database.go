// Package database opens the SQLite store that keeps the ingestion run log.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"beatstar/internal/config"
	"beatstar/internal/constants"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

// MemoryPath keeps the run log in process memory. It is also used when the
// configured path is empty.
const MemoryPath = ":memory:"

//go:embed migrations/*.sql
var embedMigrations embed.FS

type pragma struct {
	name  string
	value string
}

func New(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	return Open(cfg.DBPath, logger)
}

// Open opens the run log at path and migrates it. An in-memory store is pinned
// to a single connection that never expires, since every new connection would
// see an empty database.
func Open(path string, logger zerolog.Logger) (*sql.DB, error) {
	if path == "" {
		path = MemoryPath
	}
	memory := IsMemory(path)
	logger = logger.With().Str("db_path", path).Bool("in_memory", memory).Logger()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open run log")
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}

	pragmas := []pragma{
		{"synchronous", "NORMAL"},
		{"busy_timeout", "5000"},
		{"temp_store", "MEMORY"},
	}
	if memory {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
		pragmas = append(pragmas, pragma{"journal_mode", "MEMORY"})
	} else {
		db.SetMaxOpenConns(constants.DBMaxOpenConns)
		db.SetMaxIdleConns(constants.DBMaxIdleConns)
		db.SetConnMaxLifetime(constants.DBConnMaxLifetime)
		db.SetConnMaxIdleTime(constants.DBMaxIdleTime)
		pragmas = append(pragmas, pragma{"journal_mode", "WAL"})
	}

	if err := applyPragmas(db, pragmas, logger); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().Msg("run log ready")
	return db, nil
}

// IsMemory reports whether path names an in-memory SQLite database.
func IsMemory(path string) bool {
	return path == MemoryPath ||
		strings.HasPrefix(path, "file::memory:") ||
		strings.Contains(path, "mode=memory")
}

func migrate(db *sql.DB, logger zerolog.Logger) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		logger.Error().Err(err).Msg("run log migration failed")
		return fmt.Errorf("failed to migrate run log: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read run log version: %w", err)
	}
	logger.Debug().Int64("version", version).Msg("run log migrated")
	return nil
}

func applyPragmas(db *sql.DB, pragmas []pragma, logger zerolog.Logger) error {
	for _, p := range pragmas {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			logger.Error().Err(err).Str("pragma", p.name).Str("value", p.value).Msg("failed to set pragma")
			return fmt.Errorf("failed to set PRAGMA %s: %w", p.name, err)
		}
	}
	return nil
}
