// Package game holds the outcome and payout rules of every PAYWIN game.
// Nothing here touches storage; callers pass in the balance and a random source.
package game

import (
	"math"
	"math/rand/v2"
)

// RNG is the random source used by every game
type RNG interface {
	IntN(n int) int
	Float64() float64
}

type globalRNG struct{}

func (globalRNG) IntN(n int) int   { return rand.IntN(n) }
func (globalRNG) Float64() float64 { return rand.Float64() }

// DefaultRNG is safe for concurrent use
var DefaultRNG RNG = globalRNG{}

// NewSeededRNG returns a deterministic source, not safe for concurrent use
func NewSeededRNG(seed uint64) RNG {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Payout is the gross amount paid back for a stake at the given multiplier
func Payout(bet int64, multiplier float64) int64 {
	return int64(math.Round(float64(bet) * multiplier))
}

func shuffle(rng RNG, xs []int) {
	for i := len(xs) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}
