package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproximatePP(t *testing.T) {
	tests := []struct {
		name   string
		stars  float64
		ranked bool
		want   float64
	}{
		{name: "at threshold", stars: 0.05, ranked: true, want: 0},
		{name: "below threshold", stars: 0.01, ranked: true, want: 0},
		{name: "ten stars", stars: 10, ranked: true, want: 450},
		{name: "three stars", stars: 3, ranked: true, want: 3 * (45 + 7.0/7)},
		{name: "unranked", stars: 8.5, ranked: false, want: 0},
		{name: "unranked zero", stars: 0, ranked: false, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ApproximatePP(tt.stars, tt.ranked), 1e-9)
		})
	}
}

func TestRating(t *testing.T) {
	got, err := Rating(9, 1)
	require.NoError(t, err)

	want := 0.9 - (0.9-0.5)*math.Pow(2, -math.Log10(11))
	assert.InDelta(t, want, got, 1e-12)
	assert.Less(t, got, 0.9)
	assert.Greater(t, got, 0.5)
}

func TestRating_Balanced(t *testing.T) {
	got, err := Rating(50, 50)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-12)
}

func TestRating_NoVotes(t *testing.T) {
	got, err := Rating(0, 0)
	assert.ErrorIs(t, err, ErrNoVotes)
	assert.True(t, math.IsNaN(got))
}

func TestHeat(t *testing.T) {
	tests := []struct {
		name      string
		upvotes   uint32
		downvotes uint32
		uploaded  int64
		want      float64
	}{
		{name: "zero score", upvotes: 5, downvotes: 5, uploaded: 90000, want: 2},
		{name: "positive score", upvotes: 150, downvotes: 10, uploaded: 45000, want: -2 + 1},
		{name: "negative score", upvotes: 1, downvotes: 30, uploaded: 0, want: 0},
		{name: "score of one", upvotes: 1, downvotes: 0, uploaded: 0, want: 0},
		{name: "score of ten", upvotes: 10, downvotes: 0, uploaded: 0, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Heat(tt.upvotes, tt.downvotes, tt.uploaded), 1e-9)
		})
	}
}

func TestLog10Floor(t *testing.T) {
	assert.Equal(t, int64(0), log10Floor(-5))
	assert.Equal(t, int64(0), log10Floor(0))
	assert.Equal(t, int64(0), log10Floor(9))
	assert.Equal(t, int64(1), log10Floor(10))
	assert.Equal(t, int64(2), log10Floor(999))
	assert.Equal(t, int64(3), log10Floor(1000))
}
