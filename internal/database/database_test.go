package database

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMemory(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{":memory:", true},
		{"file::memory:?cache=shared", true},
		{"file:runs?mode=memory&cache=shared", true},
		{"beatstar.db", false},
		{"/var/lib/beatstar/runs.db", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMemory(tt.path))
		})
	}
}

func TestOpen_InMemoryKeepsRowsAcrossQueries(t *testing.T) {
	db, err := Open("", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)

	_, err = db.Exec(`INSERT INTO ingestion_runs (id, source, started_at, finished_at) VALUES ('a', 'network', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM ingestion_runs`).Scan(&count))
	assert.Equal(t, 1, count)

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "memory", mode)
}

func TestOpen_FileUsesWAL(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM ingestion_runs`).Scan(&count))
	assert.Zero(t, count)
}
