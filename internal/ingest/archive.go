package ingest

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"
)

// extract returns the content of the archive's sole entry.
func extract(raw []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchive, err)
	}

	var entry *zip.File
	for _, f := range zr.File {
		if !f.FileInfo().IsDir() {
			entry = f
			break
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: archive has no entries", ErrArchive)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrArchive, entry.Name, err)
	}
	defer rc.Close()

	payload, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrArchive, entry.Name, err)
	}
	return payload, nil
}
