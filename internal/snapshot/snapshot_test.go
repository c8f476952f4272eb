package snapshot

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "combinedScrappedData.zip")

	require.NoError(t, Write(path, []byte("first")))
	require.NoError(t, Write(path, []byte("second")))

	raw, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), raw)
	assert.True(t, Exists(path))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.zip"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Exists(""))
	assert.False(t, Exists(filepath.Join(dir, "missing")))
	assert.False(t, Exists(dir))
}
