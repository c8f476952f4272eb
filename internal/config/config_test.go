package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"DATASET_URL", "SNAPSHOT_PATH", "PREFER_SNAPSHOT", "DB_PATH", "SERVER_PORT", "LOG_LEVEL", "FETCH_TIMEOUT", "WARM_ON_START"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, DefaultDatasetURL, cfg.DatasetURL)
	assert.Equal(t, "", cfg.SnapshotPath)
	assert.True(t, cfg.PreferSnapshot)
	assert.Equal(t, "beatstar.db", cfg.DBPath)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.WarmOnStart)
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATASET_URL", "http://localhost:9000/data.zip")
	t.Setenv("SNAPSHOT_PATH", "/tmp/data.zip")
	t.Setenv("PREFER_SNAPSHOT", "false")
	t.Setenv("FETCH_TIMEOUT", "30s")
	t.Setenv("WARM_ON_START", "0")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/data.zip", cfg.DatasetURL)
	assert.Equal(t, "/tmp/data.zip", cfg.SnapshotPath)
	assert.False(t, cfg.PreferSnapshot)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.False(t, cfg.WarmOnStart)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		key   string
		value string
	}{
		{key: "FETCH_TIMEOUT", value: "soon"},
		{key: "PREFER_SNAPSHOT", value: "maybe"},
		{key: "WARM_ON_START", value: "later"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := Load(zerolog.Nop())
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
