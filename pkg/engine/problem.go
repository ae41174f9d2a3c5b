package engine

import (
	"math/big"
)

var (
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)
)

// Problem is a validated (N, a, t) triple. Build one with NewProblem and reuse
// it across outcomes to avoid revalidating the parameters.
type Problem struct {
	n    *big.Int
	a    *big.Int
	bits uint

	// maxDen is the largest denominator accepted as a plausible order. The
	// order divides φ(N), so it is always below N.
	maxDen *big.Int
}

// NewProblem validates the run parameters.
func NewProblem(n, a *big.Int, bits uint) (*Problem, error) {
	if n == nil || n.Cmp(bigTwo) < 0 {
		return nil, NewConfigurationError("modulus N must be at least 2", nil).
			WithCode(ErrCodeModulus).
			WithDetail("n", bigString(n))
	}
	if a == nil || a.Sign() <= 0 {
		return nil, NewConfigurationError("base a must be positive", nil).
			WithCode(ErrCodeBase).
			WithDetail("a", bigString(a))
	}
	if g := new(big.Int).GCD(nil, nil, a, n); g.Cmp(bigOne) != 0 {
		return nil, NewConfigurationError("base a must be coprime to N", nil).
			WithCode(ErrCodeNotCoprime).
			WithDetail("a", a.String()).
			WithDetail("n", n.String()).
			WithDetail("gcd", g.String())
	}
	if bits < 1 {
		return nil, NewConfigurationError("phase register needs at least one qubit", nil).
			WithCode(ErrCodePhaseBits)
	}

	return &Problem{
		n:      new(big.Int).Set(n),
		a:      new(big.Int).Set(a),
		bits:   bits,
		maxDen: new(big.Int).Sub(n, bigOne),
	}, nil
}

// N returns a copy of the modulus.
func (p *Problem) N() *big.Int { return new(big.Int).Set(p.n) }

// A returns a copy of the base.
func (p *Problem) A() *big.Int { return new(big.Int).Set(p.a) }

// Bits returns the phase register width t.
func (p *Problem) Bits() uint { return p.bits }

// MaxDenominator returns the largest denominator considered as an order.
func (p *Problem) MaxDenominator() *big.Int { return new(big.Int).Set(p.maxDen) }

// checkOutcome rejects readings that cannot come from a t-qubit register.
func (p *Problem) checkOutcome(o MeasurementOutcome) error {
	if o.Value == nil || o.Value.Sign() < 0 || o.Value.Cmp(registerSize(p.bits)) >= 0 {
		return NewConfigurationError("measurement outcome outside the phase register", nil).
			WithCode(ErrCodeOutcomeRange).
			WithDetail("value", bigString(o.Value)).
			WithDetail("bits", p.bits)
	}
	return nil
}

func bigString(v *big.Int) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}
