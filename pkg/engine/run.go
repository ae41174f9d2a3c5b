package engine

import (
	"math/big"
	"sort"
)

// Options tunes a run. The zero value examines every outcome with the
// default expansion step cap.
type Options struct {
	// MaxOutcomes caps how many outcomes are tried. 0 means all.
	MaxOutcomes int `json:"max_outcomes" yaml:"max_outcomes"`

	// MaxExpansionSteps overrides DefaultExpansionSteps when > 0.
	MaxExpansionSteps int `json:"max_expansion_steps" yaml:"max_expansion_steps"`

	// MultipleSearch, when >= 2, also tries k·q for 2 <= k <= MultipleSearch
	// when no convergent denominator q validates.
	MultipleSearch int `json:"multiple_search" yaml:"multiple_search"`

	// MinCount skips outcomes observed fewer times than this.
	MinCount uint64 `json:"min_count" yaml:"min_count"`
}

// Run tries each outcome, most frequent first, until one yields a
// non-trivial factor pair of n. Only invalid parameters produce an error.
func Run(outcomes []MeasurementOutcome, bits uint, a, n *big.Int) (*Report, error) {
	return RunWithOptions(outcomes, bits, a, n, Options{})
}

// RunWithOptions is Run with explicit options.
func RunWithOptions(outcomes []MeasurementOutcome, bits uint, a, n *big.Int, opts Options) (*Report, error) {
	p, err := NewProblem(n, a, bits)
	if err != nil {
		return nil, err
	}
	return p.Run(outcomes, opts)
}

// Run runs the pipeline over outcomes for this problem.
func (p *Problem) Run(outcomes []MeasurementOutcome, opts Options) (*Report, error) {
	ordered, err := p.Prepare(outcomes)
	if err != nil {
		return nil, err
	}

	report := &Report{
		N:         p.N(),
		A:         p.A(),
		PhaseBits: p.bits,
		Status:    StatusNotFound,
		Available: len(ordered),
		Attempts:  make([]Attempt, 0, len(ordered)),
	}
	for _, o := range ordered {
		report.Shots += o.Count
	}

	for _, o := range ordered {
		if opts.MaxOutcomes > 0 && report.Tried >= opts.MaxOutcomes {
			break
		}
		// Sorted by count, so nothing after this passes either.
		if o.Count < opts.MinCount {
			break
		}

		report.Tried++
		attempt := p.attempt(o, opts)
		report.Attempts = append(report.Attempts, attempt)

		if attempt.Order != nil && report.Order == nil {
			report.Order = new(big.Int).Set(attempt.Order)
		}
		if attempt.Factors != nil {
			report.Status = StatusFactored
			report.Factors = attempt.Factors
			report.Order = new(big.Int).Set(attempt.Order)
			return report, nil
		}
	}

	if report.Order != nil {
		report.Status = StatusTrivial
	}
	return report, nil
}

func (p *Problem) attempt(o MeasurementOutcome, opts Options) Attempt {
	ord := p.recoverOrder(o, opts)
	attempt := Attempt{
		Outcome: o,
		Phase:   ord.Phase,
	}
	if !ord.Found {
		attempt.Reason = ord.Reason
		return attempt
	}

	attempt.Order = ord.Order
	fr := p.RecoverFactors(ord.Order)
	if fr.Trivial {
		attempt.Reason = fr.Reason
		return attempt
	}
	attempt.Factors = fr.Pair
	return attempt
}

// Prepare validates outcomes against the register width, merges readings of
// the same value and orders them by descending count, then ascending value.
// The input slice is not modified.
func (p *Problem) Prepare(outcomes []MeasurementOutcome) ([]MeasurementOutcome, error) {
	merged := make(map[string]int, len(outcomes))
	ordered := make([]MeasurementOutcome, 0, len(outcomes))

	for _, o := range outcomes {
		if err := p.checkOutcome(o); err != nil {
			return nil, err
		}
		key := o.Value.String()
		if i, ok := merged[key]; ok {
			ordered[i].Count += o.Count
			continue
		}
		merged[key] = len(ordered)
		ordered = append(ordered, MeasurementOutcome{
			Value: new(big.Int).Set(o.Value),
			Count: o.Count,
		})
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Count != ordered[j].Count {
			return ordered[i].Count > ordered[j].Count
		}
		return ordered[i].Value.Cmp(ordered[j].Value) < 0
	})
	return ordered, nil
}
