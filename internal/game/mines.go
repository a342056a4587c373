package game

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strconv"
	"strings"
)

// GridSize is the number of cells on the 5x5 board
const GridSize = 25

// Variant selects how bombs are placed
type Variant string

const (
	VariantMine Variant = "mine" // every bomb placed when the round starts
	VariantRob  Variant = "rob"  // bombs decided on each click
	VariantBaz  Variant = "baz"
)

// escalation is the chance that the next click is a bomb, indexed by stars found
var escalation = map[Variant][]float64{
	VariantRob: {0.20, 0.50, 0.85, 0.95},
	VariantBaz: {0.15, 0.40, 0.75, 0.95},
}

// ParseVariant validates a variant name
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(s); v {
	case VariantMine, VariantRob, VariantBaz:
		return v, nil
	}
	return "", ErrUnknownVariant
}

// Dynamic reports whether bombs are decided per click
func (v Variant) Dynamic() bool {
	_, ok := escalation[v]
	return ok
}

// Board is the state of one mines round
type Board struct {
	Variant   Variant
	Bombs     int
	BombCells []int // bombs known so far; all of them for static variants
	Revealed  []int // safe cells revealed, in click order
	Finished  bool
}

// NewBoard starts a round. Static variants place every bomb immediately.
func NewBoard(rng RNG, variant Variant, bombs int) (*Board, error) {
	if bombs < 1 || bombs >= GridSize {
		return nil, ErrInvalidBombCount
	}
	if _, err := ParseVariant(string(variant)); err != nil {
		return nil, err
	}
	b := &Board{Variant: variant, Bombs: bombs}
	if !variant.Dynamic() {
		b.BombCells = b.placeRemaining(rng)
	}
	return b, nil
}

// Stars is the number of safe cells revealed
func (b *Board) Stars() int {
	return len(b.Revealed)
}

// Multiplier is the current cash-out ratio
func (b *Board) Multiplier() float64 {
	return MineMultiplier(b.Stars(), b.Bombs)
}

// Cleared reports whether every safe cell has been revealed
func (b *Board) Cleared() bool {
	return b.Stars() == GridSize-b.Bombs
}

// Reveal opens a cell and reports whether it held a bomb. A bomb finishes
// the board; clearing every safe cell does too.
func (b *Board) Reveal(rng RNG, cell int) (bool, error) {
	if b.Finished {
		return false, ErrRoundFinished
	}
	if cell < 0 || cell >= GridSize {
		return false, ErrInvalidCell
	}
	if slices.Contains(b.Revealed, cell) {
		return false, ErrCellAlreadyRevealed
	}
	if b.Variant.Dynamic() && b.nextIsBomb(rng) {
		b.BombCells = append(b.BombCells, cell)
	}
	if slices.Contains(b.BombCells, cell) {
		b.Finish(rng)
		return true, nil
	}
	b.Revealed = append(b.Revealed, cell)
	if b.Cleared() {
		b.Finish(rng)
	}
	return false, nil
}

func (b *Board) nextIsBomb(rng RNG) bool {
	table := escalation[b.Variant]
	p := table[min(b.Stars(), len(table)-1)]
	return rng.Float64() < p
}

// Finish closes the board and force-places any bomb not yet on it onto
// unrevealed cells, so the final layout always holds Bombs bombs.
func (b *Board) Finish(rng RNG) {
	if b.Finished {
		return
	}
	b.BombCells = append(b.BombCells, b.placeRemaining(rng)...)
	slices.Sort(b.BombCells)
	b.Finished = true
}

func (b *Board) placeRemaining(rng RNG) []int {
	need := b.Bombs - len(b.BombCells)
	if need <= 0 {
		return nil
	}
	var free []int
	for c := range GridSize {
		if !slices.Contains(b.Revealed, c) && !slices.Contains(b.BombCells, c) {
			free = append(free, c)
		}
	}
	shuffle(rng, free)
	placed := free[:need]
	slices.Sort(placed)
	return placed
}

// Commitment hashes the salt and the sorted layout. Publishing it before the
// first click lets a player check the layout was not changed afterwards.
func Commitment(salt string, cells []int) string {
	sorted := slices.Clone(cells)
	slices.Sort(sorted)
	parts := make([]string, len(sorted))
	for i, c := range sorted {
		parts[i] = strconv.Itoa(c)
	}
	sum := sha256.Sum256([]byte(salt + ":" + strings.Join(parts, ",")))
	return hex.EncodeToString(sum[:])
}
