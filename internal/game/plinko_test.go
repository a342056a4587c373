package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlinkoPath_MatchesBucket(t *testing.T) {
	rng := NewSeededRNG(11)
	for bucket := 0; bucket <= PlinkoRows; bucket++ {
		path := PlinkoPath(rng, bucket)
		assert.Len(t, path, PlinkoRows)
		assert.Equal(t, bucket, strings.Count(path, "R"))
		assert.Equal(t, PlinkoRows-bucket, strings.Count(path, "L"))
	}
}

func TestPlayPlinko_Natural(t *testing.T) {
	rng := NewSeededRNG(12)
	for range 500 {
		out := PlayPlinko(rng, Policy{}, 5000, 200)
		assert.Equal(t, BiasNone, out.Bias)
		assert.Equal(t, out.Bucket, strings.Count(out.Path, "R"))
		assert.Equal(t, PlinkoMultipliers[out.Bucket], out.Multiplier)
		assert.Equal(t, Payout(200, out.Multiplier), out.Payout)
	}
}

func TestPlayPlinko_ForcedLoss(t *testing.T) {
	rng := NewSeededRNG(13)
	for range 200 {
		// any bucket paying at least the stake would cross the ceiling
		out := PlayPlinko(rng, DefaultPolicy, 10000, 200)
		assert.Less(t, out.Multiplier, 1.0)
		assert.Equal(t, out.Bucket, strings.Count(out.Path, "R"))
	}
}

func TestPlayPlinko_ForcedWin(t *testing.T) {
	rng := NewSeededRNG(14)
	for range 200 {
		out := PlayPlinko(rng, DefaultPolicy, 600, 200)
		assert.Greater(t, out.Multiplier, 1.0)
		assert.Greater(t, out.Payout, int64(200))
	}
}
