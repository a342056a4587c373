package game

import "math"

// MineMultiplier grows with revealed stars and with the bomb count.
// No star revealed means the stake is returned as is.
func MineMultiplier(stars, bombs int) float64 {
	if stars <= 0 {
		return 1
	}
	m := (1 + 0.05*float64(bombs)) * (1 + 0.15*float64(stars))
	return max(1, round3(m))
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
