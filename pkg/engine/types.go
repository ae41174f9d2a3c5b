package engine

import (
	"fmt"
	"math/big"
)

// MeasurementOutcome is one reading of the phase register together with the
// number of shots that produced it.
type MeasurementOutcome struct {
	// Value is the integer reading, 0 <= Value < 2^t.
	Value *big.Int `json:"value"`

	// Count is the observed frequency (shot count).
	Count uint64 `json:"count"`
}

// NewOutcome is a convenience constructor for small register readings.
func NewOutcome(value int64, count uint64) MeasurementOutcome {
	return MeasurementOutcome{Value: big.NewInt(value), Count: count}
}

// PhaseEstimate is the exact fraction Value / 2^Bits.
type PhaseEstimate struct {
	Value *big.Int `json:"value"`
	Bits  uint     `json:"bits"`
}

// Rat returns the estimate as a reduced rational.
func (p PhaseEstimate) Rat() *big.Rat {
	return new(big.Rat).SetFrac(new(big.Int).Set(p.Value), registerSize(p.Bits))
}

// Float returns the estimate as a float64. Only meant for display.
func (p PhaseEstimate) Float() float64 {
	f, _ := p.Rat().Float64()
	return f
}

// String returns "value/2^bits".
func (p PhaseEstimate) String() string {
	return fmt.Sprintf("%s/2^%d", p.Value.String(), p.Bits)
}

// Convergent is a continued-fraction convergent p/q of a phase estimate.
type Convergent struct {
	Numerator   *big.Int `json:"numerator"`
	Denominator *big.Int `json:"denominator"`
}

// String returns "p/q".
func (c Convergent) String() string {
	return c.Numerator.String() + "/" + c.Denominator.String()
}

// FactorPair holds two non-trivial factors with F1*F2 = N and F1 <= F2.
type FactorPair struct {
	F1 *big.Int `json:"f1"`
	F2 *big.Int `json:"f2"`
}

// String returns "f1 x f2".
func (f FactorPair) String() string {
	return f.F1.String() + " x " + f.F2.String()
}

// Reason explains why an outcome or order did not yield factors.
type Reason string

const (
	// ReasonNone means the attempt produced a non-trivial factor pair.
	ReasonNone Reason = ""

	// ReasonNoValidConvergent means no convergent denominator validated as an order.
	ReasonNoValidConvergent Reason = "no_valid_convergent"

	// ReasonBoundExceeded means the continued-fraction expansion hit its step cap.
	ReasonBoundExceeded Reason = "bound_exceeded"

	// ReasonOddOrder means the recovered order is odd.
	ReasonOddOrder Reason = "odd_order"

	// ReasonMinusOne means a^(r/2) ≡ -1 (mod N).
	ReasonMinusOne Reason = "minus_one"

	// ReasonTrivialGCD means gcd(a^(r/2) - 1, N) was 1 or N.
	ReasonTrivialGCD Reason = "trivial_gcd"
)

// OrderResult is the outcome of recovering an order from one measurement.
type OrderResult struct {
	// Phase is the estimate the convergents were derived from.
	Phase PhaseEstimate `json:"phase"`

	// Convergents are all convergents examined, in expansion order.
	Convergents []Convergent `json:"convergents"`

	// Order is the smallest validated denominator. Nil when not found.
	Order *big.Int `json:"order,omitempty"`

	// Found reports whether an order was validated.
	Found bool `json:"found"`

	// Reason is set when Found is false.
	Reason Reason `json:"reason,omitempty"`
}

// FactorResult is the outcome of extracting factors from a validated order.
type FactorResult struct {
	// Pair is set when a non-trivial factorization was found.
	Pair *FactorPair `json:"pair,omitempty"`

	// Trivial is true when the order could not yield factors.
	Trivial bool `json:"trivial"`

	// Reason explains a trivial result.
	Reason Reason `json:"reason,omitempty"`

	// HalfPower is a^(r/2) mod N when r is even.
	HalfPower *big.Int `json:"half_power,omitempty"`
}

// Status is the aggregate result of a run.
type Status string

const (
	// StatusFactored means a non-trivial factor pair was found.
	StatusFactored Status = "factored"

	// StatusTrivial means at least one order was validated but every one was
	// uninformative.
	StatusTrivial Status = "trivial"

	// StatusNotFound means no outcome produced a validated order.
	StatusNotFound Status = "not_found"
)

// Attempt records what happened to one measurement outcome during a run.
type Attempt struct {
	Outcome MeasurementOutcome `json:"outcome"`
	Phase   PhaseEstimate      `json:"phase"`
	Order   *big.Int           `json:"order,omitempty"`
	Factors *FactorPair        `json:"factors,omitempty"`
	Reason  Reason             `json:"reason,omitempty"`
}

// Report is the result of a run over a batch of outcomes.
type Report struct {
	N         *big.Int    `json:"n"`
	A         *big.Int    `json:"a"`
	PhaseBits uint        `json:"phase_bits"`
	Status    Status      `json:"status"`
	Factors   *FactorPair `json:"factors,omitempty"`
	Order     *big.Int    `json:"order,omitempty"`

	// Tried is the number of outcomes examined.
	Tried int `json:"tried"`

	// Available is the number of distinct outcomes supplied.
	Available int `json:"available"`

	// Shots is the total shot count across supplied outcomes.
	Shots uint64 `json:"shots"`

	Attempts []Attempt `json:"attempts"`
}

// ReasonCounts tallies attempt failure reasons.
func (r *Report) ReasonCounts() map[Reason]int {
	counts := make(map[Reason]int)
	for _, a := range r.Attempts {
		if a.Reason != ReasonNone {
			counts[a.Reason]++
		}
	}
	return counts
}

// Summary returns a one-line description of the report.
func (r *Report) Summary() string {
	switch r.Status {
	case StatusFactored:
		return fmt.Sprintf("N=%s factored as %s (order %s of a=%s, %d/%d outcomes tried)",
			r.N, r.Factors, r.Order, r.A, r.Tried, r.Available)
	case StatusTrivial:
		return fmt.Sprintf("N=%s: order %s of a=%s found but trivial (%d/%d outcomes tried)",
			r.N, r.Order, r.A, r.Tried, r.Available)
	default:
		return fmt.Sprintf("N=%s: no order of a=%s recovered (%d/%d outcomes tried)",
			r.N, r.A, r.Tried, r.Available)
	}
}

func registerSize(bits uint) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), bits)
}
