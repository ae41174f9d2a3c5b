package engine

import (
	"math/big"
)

// EstimatePhase converts a register reading into the exact phase value/2^t.
func EstimatePhase(o MeasurementOutcome, bits uint) PhaseEstimate {
	v := new(big.Int)
	if o.Value != nil {
		v.Set(o.Value)
	}
	return PhaseEstimate{Value: v, Bits: bits}
}

// DefaultExpansionSteps is the step cap used when none is given. Convergent
// denominators grow at least as fast as the Fibonacci numbers, so any
// expansion exceeds maxDen well within 2·bitlen(maxDen)+4 steps.
func DefaultExpansionSteps(maxDen *big.Int) int {
	return 2*maxDen.BitLen() + 4
}

// ContinuedFractionExpand returns the convergents of the phase whose
// denominators do not exceed maxDen, in expansion order.
func ContinuedFractionExpand(phase PhaseEstimate, maxDen *big.Int) ([]Convergent, error) {
	if phase.Value == nil || phase.Value.Sign() < 0 {
		return nil, NewConfigurationError("phase estimate must be non-negative", nil).
			WithCode(ErrCodeOutcomeRange)
	}
	return ExpandRational(phase.Rat(), maxDen, 0)
}

// ExpandRational expands a non-negative rational x = p/q.
//
// At each step the integer part a_k of the current value is taken and the
// convergent is accumulated as
//
//	h_k = a_k·h_{k-1} + h_{k-2}
//	k_k = a_k·k_{k-1} + k_{k-2}
//
// before recursing on the reciprocal of the remainder. Expansion stops before
// the first convergent whose denominator exceeds maxDen, or after the
// convergent that equals x. If maxSteps (DefaultExpansionSteps when <= 0) is
// reached first, the convergents found so far are returned together with an
// error matching ErrArithmeticBound.
func ExpandRational(x *big.Rat, maxDen *big.Int, maxSteps int) ([]Convergent, error) {
	if maxDen == nil || maxDen.Sign() <= 0 {
		return nil, NewConfigurationError("denominator bound must be positive", nil).
			WithCode(ErrCodeDenominator).
			WithDetail("max_denominator", bigString(maxDen))
	}
	if x == nil || x.Sign() < 0 {
		return nil, NewConfigurationError("value to expand must be non-negative", nil).
			WithCode(ErrCodeOutcomeRange)
	}
	if maxSteps <= 0 {
		maxSteps = DefaultExpansionSteps(maxDen)
	}

	num := new(big.Int).Set(x.Num())
	den := new(big.Int).Set(x.Denom())

	// (h1, h2) = (h_{k-1}, h_{k-2}); seeded with h_{-1} = 1, h_{-2} = 0.
	h1, h2 := big.NewInt(1), big.NewInt(0)
	k1, k2 := big.NewInt(0), big.NewInt(1)

	var out []Convergent
	for step := 0; ; step++ {
		if step >= maxSteps {
			return out, NewArithmeticBoundError("continued-fraction expansion exceeded its step limit").
				WithDetail("max_steps", maxSteps).
				WithDetail("max_denominator", maxDen.String())
		}

		q, r := new(big.Int).QuoRem(num, den, new(big.Int))

		h := new(big.Int).Mul(q, h1)
		h.Add(h, h2)
		k := new(big.Int).Mul(q, k1)
		k.Add(k, k2)

		if k.Cmp(maxDen) > 0 {
			return out, nil
		}
		out = append(out, Convergent{Numerator: h, Denominator: k})

		if r.Sign() == 0 {
			return out, nil
		}

		h2, h1 = h1, h
		k2, k1 = k1, k
		num, den = den, r
	}
}
