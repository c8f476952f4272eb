package ingest

import "fmt"

// songRecord is one element of the published JSON array. Pointer fields are
// required on the wire; everything else defaults to its zero value. Derived
// values have no wire name and are never read from input.
type songRecord struct {
	Bpm             float64            `json:"Bpm"`
	Upvotes         uint32             `json:"Upvotes"`
	Downvotes       uint32             `json:"Downvotes"`
	Downloads       uint32             `json:"Downloads"`
	Duration        uint32             `json:"Duration"`
	Key             *string            `json:"Key"`
	SongName        string             `json:"SongName"`
	SongSubName     string             `json:"SongSubName"`
	SongAuthorName  string             `json:"SongAuthorName"`
	LevelAuthorName string             `json:"LevelAuthorName"`
	Uploaded        *string            `json:"Uploaded"`
	Hash            *string            `json:"Hash"`
	Diffs           []difficultyRecord `json:"Diffs"`
}

type difficultyRecord struct {
	Diff             *string  `json:"Diff"`
	Stars            float64  `json:"Stars"`
	Ranked           bool     `json:"Ranked"`
	Njs              float64  `json:"Njs"`
	NjsOffset        float64  `json:"NjsOffset"`
	Bombs            uint32   `json:"Bombs"`
	Notes            uint32   `json:"Notes"`
	Obstacles        uint32   `json:"Obstacles"`
	Char             *string  `json:"Char"`
	Requirements     []string `json:"Requirements"`
	RankedUpdateTime string   `json:"RankedUpdateTime"`
}

func (r *songRecord) validate() error {
	switch {
	case r.Hash == nil:
		return missingField("Hash")
	case r.Key == nil:
		return missingField("Key")
	case r.Uploaded == nil:
		return missingField("Uploaded")
	case r.Diffs == nil:
		return missingField("Diffs")
	}
	for i := range r.Diffs {
		if err := r.Diffs[i].validate(); err != nil {
			return fmt.Errorf("Diffs[%d]: %w", i, err)
		}
	}
	return nil
}

func (d *difficultyRecord) validate() error {
	switch {
	case d.Diff == nil:
		return missingField("Diff")
	case d.Char == nil:
		return missingField("Char")
	}
	return nil
}

func missingField(name string) error {
	return fmt.Errorf("missing required field %s", name)
}
