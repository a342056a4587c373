package game

// Bias is the house correction applied to a natural outcome
type Bias int

const (
	BiasNone Bias = iota
	BiasForceLoss
	BiasForceWin
)

func (b Bias) String() string {
	switch b {
	case BiasForceLoss:
		return "force_loss"
	case BiasForceWin:
		return "force_win"
	}
	return "none"
}

// Policy keeps balances between Floor and Ceiling
type Policy struct {
	Enabled bool
	Ceiling int64
	Floor   int64
}

// DefaultPolicy matches the historical thresholds
var DefaultPolicy = Policy{Enabled: true, Ceiling: 10000, Floor: 1000}

// Decide picks the correction for a play. potentialWin is the gross payout if
// the play wins. The ceiling is checked before the floor.
func (p Policy) Decide(balance, bet, potentialWin int64) Bias {
	if !p.Enabled {
		return BiasNone
	}
	if balance-bet+potentialWin >= p.Ceiling {
		return BiasForceLoss
	}
	if balance < p.Floor {
		return BiasForceWin
	}
	return BiasNone
}
