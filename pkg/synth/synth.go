package synth

import (
	"fmt"
	"math"
	"math/big"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/qaclearn/shorpost/pkg/engine"
	"github.com/qaclearn/shorpost/pkg/outcomes"
)

const (
	// MaxBits bounds the register width so the distribution fits in memory.
	MaxBits = 24

	// MaxModulus bounds N so the order can be found by brute force.
	MaxModulus = 1 << 24

	// peakWindow is how many register steps either side of a peak are summed.
	// Terms further out fall off as 1/δ² and are dropped, so the work per
	// register value is O(peakWindow·r/2^t + 1) instead of O(r).
	peakWindow = 4
)

// Distribution is the ideal outcome distribution for one (N, a, t).
type Distribution struct {
	N     int64
	A     int64
	Bits  uint
	Order int64

	// Probabilities is indexed by register value y.
	Probabilities []float64
}

// Ideal computes the ideal distribution for base a modulo n measured with a
// phase register of the given width.
func Ideal(n, a int64, bits uint) (*Distribution, error) {
	if _, err := engine.NewProblem(big.NewInt(n), big.NewInt(a), bits); err != nil {
		return nil, err
	}
	if n > MaxModulus {
		return nil, fmt.Errorf("modulus %d too large for synthetic distribution (max %d)", n, MaxModulus)
	}
	if bits > MaxBits {
		return nil, fmt.Errorf("phase bits %d too large for synthetic distribution (max %d)", bits, MaxBits)
	}

	r := Order(n, a)
	q := 1 << bits
	qf := float64(q)
	rf := float64(r)

	// Half-width in s of the window around the nearest peak.
	half := int64(math.Ceil(peakWindow*rf/qf)) + 1
	full := 2*half+1 >= r

	probs := make([]float64, q)
	var total float64
	for y := 0; y < q; y++ {
		lo, hi := int64(0), r-1
		if !full {
			// s outside [0, r) is the same peak shifted by a whole turn.
			c := int64(math.Round(float64(y) * rf / qf))
			lo, hi = c-half, c+half
		}
		var p float64
		for s := lo; s <= hi; s++ {
			delta := float64(y)/qf - float64(s)/rf
			p += peak(delta, qf)
		}
		p /= rf
		probs[y] = p
		total += p
	}
	for y := range probs {
		probs[y] /= total
	}

	return &Distribution{N: n, A: a, Bits: bits, Order: r, Probabilities: probs}, nil
}

// peak is |(1/Q) Σ_x e^{2πi x δ}|² for x in [0, Q).
func peak(delta, q float64) float64 {
	// Reduce to (-1/2, 1/2] so integer δ hits the limit case.
	delta -= math.Round(delta)
	den := math.Sin(math.Pi * delta)
	if math.Abs(den) < 1e-12 {
		return 1
	}
	num := math.Sin(math.Pi * q * delta)
	return (num * num) / (q * q * den * den)
}

// Order returns the multiplicative order of a modulo n by repeated
// multiplication. a and n must be coprime with n >= 2.
func Order(n, a int64) int64 {
	if n == 1 {
		return 1
	}
	base := uint64(a % n)
	x := base
	for r := int64(1); r <= n; r++ {
		if x == 1 {
			return r
		}
		x = x * base % uint64(n)
	}
	return 0
}

// Sample draws shots register values. The same seed always gives the same
// counts.
func (d *Distribution) Sample(shots int, seed uint64) []uint64 {
	counts := make([]uint64, len(d.Probabilities))
	cat := distuv.NewCategorical(d.Probabilities, rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := 0; i < shots; i++ {
		counts[int(cat.Rand())]++
	}
	return counts
}

// Peaks returns the register values whose probability is at least threshold,
// in ascending order.
func (d *Distribution) Peaks(threshold float64) []int {
	var out []int
	for y, p := range d.Probabilities {
		if p >= threshold {
			out = append(out, y)
		}
	}
	return out
}

// Document samples shots values and wraps them in a counts document.
func (d *Distribution) Document(shots int, seed uint64) *outcomes.Document {
	return &outcomes.Document{
		PhaseBits: d.Bits,
		N:         big.NewInt(d.N),
		A:         big.NewInt(d.A),
		Shots:     uint64(shots),
		Seed:      seed,
		Counts:    ToHistogram(d.Sample(shots, seed), d.Bits),
	}
}

// ToHistogram converts per-value counts into a histogram keyed by
// zero-padded bitstrings. Values never observed are omitted.
func ToHistogram(counts []uint64, bits uint) outcomes.Histogram {
	h := make(outcomes.Histogram)
	for y, c := range counts {
		if c == 0 {
			continue
		}
		h[fmt.Sprintf("%0*b", int(bits), y)] = c
	}
	return h
}
