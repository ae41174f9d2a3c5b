package engine

import (
	"math/big"
)

// RecoverFactors extracts a factor pair of n from an order r of a.
//
// Odd orders and the case a^(r/2) ≡ -1 (mod n) are reported as trivial
// without computing any gcd.
func RecoverFactors(r, a, n *big.Int) (FactorResult, error) {
	if r == nil || r.Sign() <= 0 {
		return FactorResult{}, NewConfigurationError("order must be positive", nil).
			WithCode(ErrCodeOrder).
			WithDetail("r", bigString(r))
	}
	p, err := NewProblem(n, a, 1)
	if err != nil {
		return FactorResult{}, err
	}
	return p.RecoverFactors(r), nil
}

// RecoverFactors is the Problem form of RecoverFactors; r must be positive.
func (p *Problem) RecoverFactors(r *big.Int) FactorResult {
	if r.Bit(0) == 1 {
		return FactorResult{Trivial: true, Reason: ReasonOddOrder}
	}

	half := new(big.Int).Rsh(r, 1)
	x := new(big.Int).Exp(p.a, half, p.n)

	if x.Cmp(p.maxDen) == 0 {
		return FactorResult{Trivial: true, Reason: ReasonMinusOne, HalfPower: x}
	}
	// x ≡ 1 means r/2 already annihilates a; x-1 would be 0.
	if x.Cmp(bigOne) == 0 {
		return FactorResult{Trivial: true, Reason: ReasonTrivialGCD, HalfPower: x}
	}

	f1 := new(big.Int).GCD(nil, nil, new(big.Int).Sub(x, bigOne), p.n)
	if f1.Cmp(bigOne) <= 0 || f1.Cmp(p.n) >= 0 {
		return FactorResult{Trivial: true, Reason: ReasonTrivialGCD, HalfPower: x}
	}

	f2 := new(big.Int).Quo(p.n, f1)
	if f1.Cmp(f2) > 0 {
		f1, f2 = f2, f1
	}
	return FactorResult{Pair: &FactorPair{F1: f1, F2: f2}, HalfPower: x}
}
