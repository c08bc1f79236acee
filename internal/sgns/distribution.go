package sgns

import "math"

// distKind is the closed set of delay distributions a Product's release
// can be drawn from, replacing the original's function-pointer sampler.
type distKind int

const (
	distDelta distKind = iota
	distUniform
	distGaussian
	distTruncGaussian
	distNonNegGaussian
	distExponential
	distGamma
	distBeta
)

// RuntimeDistribution samples a delay (or, for Delta, a constant) using the
// simulation's RNG. The zero value is Delta(0) — an instant release,
// matching nothing in the original (which has no default constructor for
// this type) but a safe, obviously-intentional Go default.
type RuntimeDistribution struct {
	kind   distKind
	a1, a2 float64
}

// DeltaDistribution always samples exactly c.
func DeltaDistribution(c float64) RuntimeDistribution {
	return RuntimeDistribution{kind: distDelta, a1: c}
}

// UniformDistribution samples uniformly from [m, x).
func UniformDistribution(m, x float64) RuntimeDistribution {
	return RuntimeDistribution{kind: distUniform, a1: m, a2: x}
}

// GaussianDistribution samples N(m, s) unmodified — can go negative, so
// don't use it directly as a time delay.
func GaussianDistribution(m, s float64) RuntimeDistribution {
	return RuntimeDistribution{kind: distGaussian, a1: m, a2: s}
}

// TruncGaussianDistribution samples max(0, N(m, s)).
func TruncGaussianDistribution(m, s float64) RuntimeDistribution {
	return RuntimeDistribution{kind: distTruncGaussian, a1: m, a2: s}
}

// NonNegGaussianDistribution resamples N(m, s) until it draws non-negative,
// rather than clamping — this reshapes the distribution instead of piling
// mass at zero.
func NonNegGaussianDistribution(m, s float64) RuntimeDistribution {
	return RuntimeDistribution{kind: distNonNegGaussian, a1: m, a2: s}
}

// ExponentialDistribution samples Exp(lambda).
func ExponentialDistribution(lambda float64) RuntimeDistribution {
	return RuntimeDistribution{kind: distExponential, a1: lambda}
}

// GammaDistribution samples Gamma(shape, scale).
func GammaDistribution(shape, scale float64) RuntimeDistribution {
	return RuntimeDistribution{kind: distGamma, a1: shape, a2: scale}
}

// BetaDistribution samples Beta(alpha, beta).
func BetaDistribution(alpha, beta float64) RuntimeDistribution {
	return RuntimeDistribution{kind: distBeta, a1: alpha, a2: beta}
}

// IsConstant reports whether every sample is the same value, letting a
// caller (Product.Release) skip drawing from the RNG entirely.
func (d RuntimeDistribution) IsConstant() bool { return d.kind == distDelta }

// IsZero reports whether this distribution is the constant zero delay,
// the common case of an instantaneous release.
func (d RuntimeDistribution) IsZero() bool { return d.kind == distDelta && d.a1 == 0.0 }

// Sample draws a value from the distribution using rng.
func (d RuntimeDistribution) Sample(rng RandSource) float64 {
	switch d.kind {
	case distDelta:
		return d.a1
	case distUniform:
		return d.a1 + rng.Float64()*(d.a2-d.a1)
	case distGaussian:
		return d.a1 + rng.NormFloat64()*d.a2
	case distTruncGaussian:
		return math.Max(0.0, d.a1+rng.NormFloat64()*d.a2)
	case distNonNegGaussian:
		v := d.a1 + rng.NormFloat64()*d.a2
		for v < 0.0 {
			v = d.a1 + rng.NormFloat64()*d.a2
		}
		return v
	case distExponential:
		return rng.ExpFloat64() / d.a1
	case distGamma:
		return sampleGamma(rng, d.a1, d.a2)
	case distBeta:
		return sampleBeta(rng, d.a1, d.a2)
	default:
		return 0
	}
}

// sampleBeta draws from Beta(alpha, beta) via two independent Gamma draws.
func sampleBeta(rng RandSource, alpha, beta float64) float64 {
	g1 := sampleGamma(rng, alpha, 1.0)
	g2 := sampleGamma(rng, beta, 1.0)
	return g1 / (g1 + g2)
}

// sampleGamma draws from Gamma(shape, scale) via the Marsaglia-Tsang
// squeeze method for shape >= 1, boosting shape < 1 up by one via the
// standard U^(1/shape) transform first.
func sampleGamma(rng RandSource, shape, scale float64) float64 {
	if shape < 1.0 {
		u := rng.Float64()
		return sampleGamma(rng, shape+1.0, scale) * math.Pow(u, 1.0/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()
		x2 := x * x
		if u < 1.0-0.0331*x2*x2 {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x2+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}
