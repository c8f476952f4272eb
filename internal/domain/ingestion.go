package domain

import "time"

type IngestionRun struct {
	ID           string // nanoid
	Source       string // "network", "snapshot"
	Bytes        int
	Songs        int
	Diffs        int
	DroppedDiffs int
	Duplicates   int
	Error        string // empty on success
	StartedAt    time.Time
	FinishedAt   time.Time
}

func (r *IngestionRun) Succeeded() bool {
	return r.Error == ""
}
