package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMineMultiplier_Example(t *testing.T) {
	assert.Equal(t, 1.84, MineMultiplier(4, 3))
}

func TestMineMultiplier_NoStarsIsOne(t *testing.T) {
	for bombs := 1; bombs <= 24; bombs++ {
		assert.Equal(t, 1.0, MineMultiplier(0, bombs), "bombs=%d", bombs)
	}
}

func TestMineMultiplier_Formula(t *testing.T) {
	for bombs := 1; bombs <= 24; bombs++ {
		for stars := 0; stars <= GridSize-bombs; stars++ {
			got := MineMultiplier(stars, bombs)
			if stars == 0 {
				assert.Equal(t, 1.0, got)
				continue
			}
			want := math.Max(1, math.Round((1+0.05*float64(bombs))*(1+0.15*float64(stars))*1000)/1000)
			assert.Equal(t, want, got, "stars=%d bombs=%d", stars, bombs)
			assert.GreaterOrEqual(t, got, 1.0)
		}
	}
}

func TestPayout(t *testing.T) {
	assert.Equal(t, int64(392), Payout(200, 1.96))
	assert.Equal(t, int64(1176), Payout(600, 1.96))
	assert.Equal(t, int64(368), Payout(200, 1.84))
	assert.Equal(t, int64(100), Payout(200, 0.5))
}
