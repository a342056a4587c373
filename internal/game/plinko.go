package game

// PlinkoRows is the number of peg rows the ball crosses
const PlinkoRows = 8

// PlinkoMultipliers is indexed by bucket, i.e. by the number of right steps
var PlinkoMultipliers = [PlinkoRows + 1]float64{5.6, 2.1, 1.1, 1.0, 0.5, 1.0, 1.1, 2.1, 5.6}

// PlinkoOutcome is a settled plinko drop
type PlinkoOutcome struct {
	Path       string  `json:"path"` // One L or R per row
	Bucket     int     `json:"bucket"`
	Multiplier float64 `json:"multiplier"`
	Payout     int64   `json:"payout"`
	Bias       Bias    `json:"-"`
}

// PlayPlinko drops one ball. The bucket is drawn from fair steps, then the
// policy may move it to a losing or winning bucket.
func PlayPlinko(rng RNG, policy Policy, balance, bet int64) PlinkoOutcome {
	bucket := 0
	for range PlinkoRows {
		bucket += rng.IntN(2)
	}
	bias := policy.Decide(balance, bet, Payout(bet, PlinkoMultipliers[bucket]))
	switch {
	case bias == BiasForceLoss && PlinkoMultipliers[bucket] >= 1:
		bucket = pickBucket(rng, func(m float64) bool { return m < 1 })
	case bias == BiasForceWin && PlinkoMultipliers[bucket] <= 1:
		bucket = pickBucket(rng, func(m float64) bool { return m > 1 })
	default:
		bias = BiasNone
	}
	m := PlinkoMultipliers[bucket]
	return PlinkoOutcome{
		Path:       PlinkoPath(rng, bucket),
		Bucket:     bucket,
		Multiplier: m,
		Payout:     Payout(bet, m),
		Bias:       bias,
	}
}

func pickBucket(rng RNG, keep func(float64) bool) int {
	var buckets []int
	for i, m := range PlinkoMultipliers {
		if keep(m) {
			buckets = append(buckets, i)
		}
	}
	return buckets[rng.IntN(len(buckets))]
}

// PlinkoPath returns a shuffled path with exactly bucket right steps
func PlinkoPath(rng RNG, bucket int) string {
	steps := make([]int, PlinkoRows)
	for i := range bucket {
		steps[i] = 1
	}
	shuffle(rng, steps)
	path := make([]byte, PlinkoRows)
	for i, s := range steps {
		path[i] = 'L'
		if s == 1 {
			path[i] = 'R'
		}
	}
	return string(path)
}
