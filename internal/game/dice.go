package game

// DiceRoll is the result of throwing the two dice
type DiceRoll struct {
	Die1 int `json:"die1"`
	Die2 int `json:"die2"`
	Sum  int `json:"sum"`
}

// DiceOutcome is a settled dice play
type DiceOutcome struct {
	Roll       DiceRoll `json:"roll"`
	Choice     string   `json:"choice"`
	Win        bool     `json:"win"`
	Multiplier float64  `json:"multiplier"`
	Payout     int64    `json:"payout"`
	Bias       Bias     `json:"-"`
}

// diceBet describes one way of betting on the sum of two dice
type diceBet struct {
	multiplier float64
	wins       func(sum int) bool
}

var parityBets = map[string]diceBet{
	"even": {multiplier: 1.96, wins: func(s int) bool { return s%2 == 0 }},
	"odd":  {multiplier: 1.96, wins: func(s int) bool { return s%2 == 1 }},
}

var overUnderBets = map[string]diceBet{
	"over":  {multiplier: 2.3, wins: func(s int) bool { return s > 7 }},
	"under": {multiplier: 2.3, wins: func(s int) bool { return s < 7 }},
	"seven": {multiplier: 5.0, wins: func(s int) bool { return s == 7 }},
}

// DiceMultiplier returns the payout ratio of a parity choice
func DiceMultiplier(choice string) (float64, error) {
	b, ok := parityBets[choice]
	if !ok {
		return 0, ErrInvalidChoice
	}
	return b.multiplier, nil
}

// OverUnderMultiplier returns the payout ratio of a Plus-ou-Moins choice
func OverUnderMultiplier(choice string) (float64, error) {
	b, ok := overUnderBets[choice]
	if !ok {
		return 0, ErrInvalidChoice
	}
	return b.multiplier, nil
}

// PlayDice settles an even/odd bet on the sum of two dice
func PlayDice(rng RNG, policy Policy, balance, bet int64, choice string) (DiceOutcome, error) {
	b, ok := parityBets[choice]
	if !ok {
		return DiceOutcome{}, ErrInvalidChoice
	}
	return playDiceBet(rng, policy, balance, bet, choice, b), nil
}

// PlayOverUnder settles a Plus-ou-Moins bet: over 7, under 7 or exactly 7
func PlayOverUnder(rng RNG, policy Policy, balance, bet int64, choice string) (DiceOutcome, error) {
	b, ok := overUnderBets[choice]
	if !ok {
		return DiceOutcome{}, ErrInvalidChoice
	}
	return playDiceBet(rng, policy, balance, bet, choice, b), nil
}

func playDiceBet(rng RNG, policy Policy, balance, bet int64, choice string, b diceBet) DiceOutcome {
	bias := policy.Decide(balance, bet, Payout(bet, b.multiplier))
	var roll DiceRoll
	switch bias {
	case BiasForceWin:
		roll = RollForSum(rng, pickSum(rng, b.wins, true))
	case BiasForceLoss:
		roll = RollForSum(rng, pickSum(rng, b.wins, false))
	default:
		d1, d2 := 1+rng.IntN(6), 1+rng.IntN(6)
		roll = DiceRoll{Die1: d1, Die2: d2, Sum: d1 + d2}
	}
	out := DiceOutcome{Roll: roll, Choice: choice, Multiplier: b.multiplier, Bias: bias}
	if b.wins(roll.Sum) {
		out.Win = true
		out.Payout = Payout(bet, b.multiplier)
	}
	return out
}

// pickSum draws uniformly among the sums 2..12 whose outcome matches want
func pickSum(rng RNG, wins func(int) bool, want bool) int {
	var sums []int
	for s := 2; s <= 12; s++ {
		if wins(s) == want {
			sums = append(sums, s)
		}
	}
	return sums[rng.IntN(len(sums))]
}

// RollForSum produces two faces in [1,6] adding up to sum (2..12)
func RollForSum(rng RNG, sum int) DiceRoll {
	lo, hi := max(1, sum-6), min(6, sum-1)
	d1 := lo + rng.IntN(hi-lo+1)
	return DiceRoll{Die1: d1, Die2: sum - d1, Sum: sum}
}
