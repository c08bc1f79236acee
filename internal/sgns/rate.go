package sgns

import "math"

// rateKind is the closed set of propensity shapes a Reactant's rate
// function can take. The original dispatched through a function pointer
// embedded in the RateFunction struct itself; Go has no function-pointer
// union to reuse, so the tag takes its place and Evaluate switches on it.
type rateKind int

const (
	rateUnit rateKind = iota
	rateLinear
	rateGilH
	ratePow
	rateHill
	rateInvHill
	rateMin
	rateMax
	rateStep
	rateStep2
)

// RateFunction evaluates a species population into a propensity
// contribution. The zero value is Unit (f(x) = 1), matching the original's
// default constructor.
type RateFunction struct {
	kind   rateKind
	p1, p2 float64
	pn     int
}

// UnitRate is f(x) = 1.
func UnitRate() RateFunction { return RateFunction{kind: rateUnit} }

// LinearRate is f(x) = x.
func LinearRate() RateFunction { return RateFunction{kind: rateLinear} }

// GilHRate is f(x) = x!/(N!(x-N)!), the combinatorial factor for a
// reactant consumed N at a time. N == 0 collapses to Unit, N == 1 to
// Linear, matching the source this is grounded on exactly.
func GilHRate(n int) RateFunction {
	switch n {
	case 0:
		return UnitRate()
	case 1:
		return LinearRate()
	default:
		return RateFunction{kind: rateGilH, pn: n}
	}
}

// PowRate is f(x) = x^n. n near 0 or 1 collapses to Unit/Linear.
func PowRate(n float64) RateFunction {
	if math.Abs(n) < 0.00001 {
		return UnitRate()
	}
	if math.Abs(n-1.0) < 0.00001 {
		return LinearRate()
	}
	return RateFunction{kind: ratePow, p1: n}
}

// HillRate is f(x) = x^n / (an + x^n).
func HillRate(an, n float64) RateFunction {
	return RateFunction{kind: rateHill, p1: an, p2: n}
}

// InvHillRate is f(x) = an / (an + x^n).
func InvHillRate(an, n float64) RateFunction {
	return RateFunction{kind: rateInvHill, p1: an, p2: n}
}

// MinRate is f(x) = min(a, x).
func MinRate(a float64) RateFunction { return RateFunction{kind: rateMin, p1: a} }

// MaxRate is f(x) = max(a, x).
func MaxRate(a float64) RateFunction { return RateFunction{kind: rateMax, p1: a} }

// StepRate is f(x) = v if x < thresh, else 1.
func StepRate(thresh int64, v float64) RateFunction {
	return RateFunction{kind: rateStep, p1: float64(thresh), p2: v}
}

// Step2Rate is f(x) = 1 if x < thresh, else v.
func Step2Rate(thresh int64, v float64) RateFunction {
	return RateFunction{kind: rateStep2, p1: float64(thresh), p2: v}
}

// IsUnit reports whether this rate function is the constant-1 function,
// used by templates to skip evaluating a reactant's rate entirely.
func (r RateFunction) IsUnit() bool { return r.kind == rateUnit }

// Evaluate computes the rate function's contribution at population x.
func (r RateFunction) Evaluate(x int64) float64 {
	fx := float64(x)
	switch r.kind {
	case rateUnit:
		return 1.0
	case rateLinear:
		return fx
	case rateGilH:
		if r.pn == 2 {
			return math.Abs(fx * (fx - 1) / 2.0)
		}
		v := fx
		for i := 1; i < r.pn; i++ {
			v *= (fx - float64(i)) / float64(i+1)
		}
		return v
	case ratePow:
		switch {
		case math.Abs(r.p1-2) < 0.00001:
			return fx * fx
		case math.Abs(r.p1-3) < 0.00001:
			return fx * fx * fx
		default:
			return math.Pow(fx, r.p1)
		}
	case rateHill:
		an, n := r.p1, r.p2
		switch {
		case math.Abs(n-1) < 0.00001:
			return fx / (fx + an)
		case math.Abs(n-2) < 0.00001:
			return fx * fx / (fx*fx + an)
		default:
			xn := math.Pow(fx, n)
			return xn / (xn + an)
		}
	case rateInvHill:
		an, n := r.p1, r.p2
		switch {
		case math.Abs(n-1) < 0.00001:
			return an / (fx + an)
		case math.Abs(n-2) < 0.00001:
			return an / (fx*fx + an)
		default:
			xn := math.Pow(fx, n)
			return an / (xn + an)
		}
	case rateMin:
		return math.Min(r.p1, fx)
	case rateMax:
		return math.Max(r.p1, fx)
	case rateStep:
		if fx < r.p1 {
			return r.p2
		}
		return 1.0
	case rateStep2:
		if fx < r.p1 {
			return 1.0
		}
		return r.p2
	default:
		return 1.0
	}
}
