package sgns

import "math"

// SplitContext supplies a SplitFunction with randomness and, for
// BinomialSplitP, the shared buffer of amounts already taken by earlier
// splits in the same split event (used to partition a population between
// two sibling compartments in proportion to how many binding sites each
// one already claimed). The command layer that executes a SplitCompartments
// init command owns the buffer's lifetime and fills in each slot as its
// corresponding split runs.
type SplitContext struct {
	RNG    RandSource
	Buffer []int64
}

// splitKind is the closed set of ways a population can be partitioned
// between a compartment and the split taken from it.
type splitKind int

const (
	splitAllOrNothing splitKind = iota
	splitBetaBinomial
	splitBinomial
	splitBinomialP
	splitPair
	splitTake
	splitTakeRound
	splitRange
)

// SplitFunction divides a population N into what remains and what is
// taken, T. virtual_ controls whether the taken amount is actually
// deducted from the remainder (a "virtual" split just computes T, for
// callers that want to observe a split without consuming the source).
type SplitFunction struct {
	kind     splitKind
	a1, a2   float64
	virtual_ bool
	biased   bool
}

// AllOrNothingSplit takes the entire population with probability p, or
// none of it otherwise: T ~ Bernoulli(p) * N.
func AllOrNothingSplit(p float64, virt bool) SplitFunction {
	return SplitFunction{kind: splitAllOrNothing, a1: p, virtual_: virt}
}

// BetaBinomialSplit takes T ~ Binomial(N, Beta(a,b)). When unbiased, it
// draws from Beta(a,b) or Beta(b,a) with equal probability, removing any
// asymmetry from which compartment is considered "first".
func BetaBinomialSplit(a, b float64, virt, unbiased bool) SplitFunction {
	return SplitFunction{kind: splitBetaBinomial, a1: a, a2: b, virtual_: virt, biased: unbiased}
}

// BinomialSplit takes T ~ Binomial(N, p).
func BinomialSplit(p float64, virt, unbiased bool) SplitFunction {
	return SplitFunction{kind: splitBinomial, a1: p, virtual_: virt, biased: unbiased}
}

// BinomialSplitP takes T ~ Binomial(N, p), where p is derived from the
// amounts recorded at split1 and split2 (1-based) in the split event's
// shared buffer: p = L1 / (L1 + L2), or 0.5 if both are zero.
func BinomialSplitP(split1, split2 int, virt, unbiased bool) SplitFunction {
	return SplitFunction{kind: splitBinomialP, a1: float64(split1 - 1), a2: float64(split2 - 1), virtual_: virt, biased: unbiased}
}

// PairSplit models splitting molecules that sometimes travel as bound
// pairs: of floor(N/2) pairs, r of them are "pairable"; of those, p split
// evenly; the rest (plus any unpaired leftover) split as independent
// Bernoulli(0.5) trials.
func PairSplit(p, r float64, virt bool) SplitFunction {
	return SplitFunction{kind: splitPair, a1: p, a2: r, virtual_: virt}
}

// TakeSplit takes T = floor(N * fraction).
func TakeSplit(fraction float64, virt bool) SplitFunction {
	return SplitFunction{kind: splitTake, a1: fraction, virtual_: virt}
}

// TakeRoundSplit takes T = floor(N * fraction + 0.5).
func TakeRoundSplit(fraction float64, virt bool) SplitFunction {
	return SplitFunction{kind: splitTakeRound, a1: fraction, virtual_: virt}
}

// RangeSplit takes T = min(max(0, N-u), v-u): nothing below u, everything
// between u and v, and a fixed v-u above v.
func RangeSplit(u, v float64, virt bool) SplitFunction {
	return SplitFunction{kind: splitRange, a1: u, a2: v, virtual_: virt}
}

// Split partitions n according to the function's rule, returning the
// amount that remains in the source and the amount taken. ctx supplies
// the RNG and, for BinomialSplitP, the cross-split buffer.
func (s SplitFunction) Split(n int64, ctx *SplitContext) (remaining, taken int64) {
	x0, x1 := n, int64(0)

	switch s.kind {
	case splitAllOrNothing:
		if ctx.RNG.Float64() < s.a1 {
			x1 = x0
		}

	case splitBetaBinomial:
		var p float64
		if ctx.RNG.Float64() < 0.5 {
			p = sampleBeta(ctx.RNG, s.a1, s.a2)
		} else {
			p = sampleBeta(ctx.RNG, s.a2, s.a1)
		}
		x1 = binomial(ctx.RNG, p, x0)
		if s.biased && ctx.RNG.Float64() < 0.5 {
			x1 = x0 - x1
		}

	case splitBinomial:
		x1 = binomial(ctx.RNG, s.a1, x0)
		if s.biased && ctx.RNG.Float64() < 0.5 {
			x1 = x0 - x1
		}

	case splitBinomialP:
		l1 := ctx.Buffer[int(s.a1)]
		l2 := ctx.Buffer[int(s.a2)]
		var p float64
		if l1 == 0 && l2 == 0 {
			p = 0.5
		} else {
			p = float64(l1) / float64(l1+l2)
		}
		x1 = binomial(ctx.RNG, p, x0)
		if s.biased && ctx.RNG.Float64() < 0.5 {
			x1 = x0 - x1
		}

	case splitPair:
		u := binomial(ctx.RNG, s.a2, x0>>1)
		v := binomial(ctx.RNG, s.a1, u)
		x1 = binomial(ctx.RNG, 0.5, x0-(u<<1)) + binomial(ctx.RNG, 0.5, u-v)<<1 + v

	case splitTake:
		x1 = int64(math.Floor(float64(x0) * s.a1))

	case splitTakeRound:
		x1 = int64(math.Floor(float64(x0)*s.a1 + 0.5))

	case splitRange:
		switch {
		case float64(x0) <= s.a1:
			x1 = 0
		case s.a2 >= float64(x0):
			x1 = x0 - int64(s.a1)
		default:
			x1 = int64(s.a2 - s.a1)
		}
	}

	if !s.virtual_ {
		x0 -= x1
	}
	return x0, x1
}

// binomial draws from Binomial(n, p) by direct simulation of n independent
// Bernoulli(p) trials. SGNS split sizes are population counts within a
// single compartment, not the astronomically large n values an inversion
// or rejection sampler earns its complexity for.
func binomial(rng RandSource, p float64, n int64) int64 {
	if n <= 0 || p <= 0 {
		return 0
	}
	if p >= 1 {
		return n
	}
	var count int64
	for i := int64(0); i < n; i++ {
		if rng.Float64() < p {
			count++
		}
	}
	return count
}
