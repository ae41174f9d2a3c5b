package engine

import (
	"math/big"
)

// ValidateOrder reports whether r >= 1 and a^r ≡ 1 (mod n).
func ValidateOrder(r, a, n *big.Int) bool {
	if r == nil || a == nil || n == nil {
		return false
	}
	if r.Sign() <= 0 || n.Cmp(bigOne) <= 0 {
		return false
	}
	return new(big.Int).Exp(a, r, n).Cmp(bigOne) == 0
}

// RecoverOrder recovers the order of a modulo n from a single outcome of a
// t-qubit phase register. Only invalid parameters produce an error; an order
// that cannot be recovered is reported through OrderResult.Found.
func RecoverOrder(o MeasurementOutcome, bits uint, a, n *big.Int) (OrderResult, error) {
	p, err := NewProblem(n, a, bits)
	if err != nil {
		return OrderResult{}, err
	}
	return p.RecoverOrder(o)
}

// RecoverOrder recovers the order from one outcome with default options.
func (p *Problem) RecoverOrder(o MeasurementOutcome) (OrderResult, error) {
	if err := p.checkOutcome(o); err != nil {
		return OrderResult{}, err
	}
	return p.recoverOrder(o, Options{}), nil
}

func (p *Problem) recoverOrder(o MeasurementOutcome, opts Options) OrderResult {
	phase := EstimatePhase(o, p.bits)
	res := OrderResult{Phase: phase}

	convergents, err := ExpandRational(phase.Rat(), p.maxDen, opts.MaxExpansionSteps)
	res.Convergents = convergents
	if err != nil {
		res.Reason = ReasonBoundExceeded
		return res
	}

	// Denominators are non-decreasing, so the first hit is the smallest.
	for _, c := range convergents {
		if ValidateOrder(c.Denominator, p.a, p.n) {
			res.Order = new(big.Int).Set(c.Denominator)
			res.Found = true
			return res
		}
	}

	if r := p.searchMultiples(convergents, opts.MultipleSearch); r != nil {
		res.Order = r
		res.Found = true
		return res
	}

	res.Reason = ReasonNoValidConvergent
	return res
}

// searchMultiples covers readings near s/r with gcd(s, r) > 1, whose
// convergents only reach r/gcd(s, r). It returns the smallest k·q, 2 <= k <=
// limit, that validates, or nil.
func (p *Problem) searchMultiples(convergents []Convergent, limit int) *big.Int {
	if limit < 2 {
		return nil
	}

	var best *big.Int
	for _, c := range convergents {
		for k := int64(2); k <= int64(limit); k++ {
			cand := new(big.Int).Mul(c.Denominator, big.NewInt(k))
			if cand.Cmp(p.maxDen) > 0 {
				break
			}
			if best != nil && cand.Cmp(best) >= 0 {
				break
			}
			if ValidateOrder(cand, p.a, p.n) {
				best = cand
				break
			}
		}
	}
	return best
}
