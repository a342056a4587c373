package game

// BetAction is one of the stake controls shown next to every game
type BetAction string

const (
	BetIncrease BetAction = "increase"
	BetDecrease BetAction = "decrease"
	BetMin      BetAction = "min"
	BetMax      BetAction = "max"
)

// Limits bound the stake of a single play
type Limits struct {
	MinBet int64
	MaxBet int64
	Step   int64
}

// DefaultLimits are the stakes used when nothing is configured
var DefaultLimits = Limits{MinBet: 200, MaxBet: 10000, Step: 100}

// Upper is the largest stake allowed for the balance
func (l Limits) Upper(balance int64) int64 {
	return min(l.MaxBet, balance)
}

// Clamp keeps amount inside [MinBet, min(MaxBet, balance)].
// MinBet wins when the balance is below it.
func (l Limits) Clamp(amount, balance int64) int64 {
	if hi := l.Upper(balance); amount > hi {
		amount = hi
	}
	if amount < l.MinBet {
		amount = l.MinBet
	}
	return amount
}

// Adjust applies a stake control and clamps the result
func (l Limits) Adjust(current int64, action BetAction, balance int64) (int64, error) {
	switch action {
	case BetIncrease:
		current += l.Step
	case BetDecrease:
		current -= l.Step
	case BetMin:
		current = l.MinBet
	case BetMax:
		current = l.Upper(balance)
	default:
		return 0, ErrInvalidChoice
	}
	return l.Clamp(current, balance), nil
}

// Validate checks a stake before it is taken from the balance
func (l Limits) Validate(amount, balance int64) error {
	switch {
	case amount < l.MinBet:
		return ErrBetTooSmall
	case amount > l.MaxBet:
		return ErrBetTooLarge
	case amount > balance:
		return ErrInsufficientBalance
	}
	return nil
}
