package domain

import (
	"errors"
	"math"
)

var ErrNoVotes = errors.New("song has no votes")

const (
	minRankedStars = 0.05
	heatTimeScale  = 45000
)

// ApproximatePP estimates the performance points a full combo on a ranked map
// is worth.
func ApproximatePP(stars float64, ranked bool) float64 {
	if stars <= minRankedStars || !ranked {
		return 0
	}
	return stars * (45 + (10-stars)/7)
}

// Rating shrinks the raw upvote ratio toward 0.5, harder the fewer votes a song
// has. With no votes at all the ratio is undefined: the result is NaN and
// ErrNoVotes is returned.
func Rating(upvotes, downvotes uint32) (float64, error) {
	total := float64(upvotes) + float64(downvotes)
	if total == 0 {
		return math.NaN(), ErrNoVotes
	}
	p := float64(upvotes) / total
	return p - (p-0.5)*math.Pow(2, -math.Log10(total+1)), nil
}

// Heat ranks songs by vote score and upload time.
//
// The sign is -1 for any non-zero score, positive or negative. This matches the
// upstream formula literally; the positive branch is likely an inversion.
func Heat(upvotes, downvotes uint32, uploadedUnix int64) float64 {
	score := int64(upvotes) - int64(downvotes)

	var sign float64
	switch {
	case score >= 1:
		sign = -1
	case score == 0:
		sign = 0
	default:
		sign = -1
	}

	order := log10Floor(max(score, 1))
	return sign*float64(order) + float64(uploadedUnix)/heatTimeScale
}

// log10Floor is the integer base-10 logarithm; non-positive input yields 0.
func log10Floor(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var order int64
	for n >= 10 {
		n /= 10
		order++
	}
	return order
}
