package engine

import (
	"errors"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fracs renders convergents as "p/q" strings for comparison.
func fracs(cs []Convergent) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}

func TestEstimatePhase(t *testing.T) {
	p := EstimatePhase(NewOutcome(64, 10), 8)
	assert.Equal(t, "64/2^8", p.String())
	assert.Equal(t, 0, p.Rat().Cmp(big.NewRat(1, 4)))
	assert.InDelta(t, 0.25, p.Float(), 1e-12)

	zero := EstimatePhase(MeasurementOutcome{}, 4)
	assert.Equal(t, 0, zero.Rat().Sign())
}

func TestContinuedFractionExpand(t *testing.T) {
	tests := []struct {
		name   string
		value  int64
		bits   uint
		maxDen int64
		want   []string
	}{
		{"quarter", 64, 8, 14, []string{"0/1", "1/4"}},
		{"three quarters", 192, 8, 14, []string{"0/1", "1/1", "3/4"}},
		{"zero", 0, 8, 14, []string{"0/1"}},
		{"five eighths", 5, 3, 100, []string{"0/1", "1/1", "1/2", "2/3", "5/8"}},
		{"five eighths bounded", 5, 3, 3, []string{"0/1", "1/1", "1/2", "2/3"}},
		{"third approximated", 85, 8, 20, []string{"0/1", "1/3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ContinuedFractionExpand(EstimatePhase(NewOutcome(tt.value, 1), tt.bits), big.NewInt(tt.maxDen))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, fracs(got)); diff != "" {
				t.Errorf("convergents mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExpandRationalRoundTrip(t *testing.T) {
	// For s/r in lowest terms the expansion bounded by r ends at r itself.
	for r := int64(2); r <= 40; r++ {
		for s := int64(1); s < r; s++ {
			if new(big.Int).GCD(nil, nil, big.NewInt(s), big.NewInt(r)).Int64() != 1 {
				continue
			}
			got, err := ExpandRational(big.NewRat(s, r), big.NewInt(r), 0)
			require.NoError(t, err)
			require.NotEmpty(t, got)

			last := got[len(got)-1]
			assert.Equal(t, r, last.Denominator.Int64(), "s=%d r=%d", s, r)
			assert.Equal(t, s, last.Numerator.Int64(), "s=%d r=%d", s, r)
		}
	}
}

func TestExpandRationalDenominatorsNonDecreasing(t *testing.T) {
	got, err := ExpandRational(big.NewRat(1234567, 1<<22), big.NewInt(1<<20), 0)
	require.NoError(t, err)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Denominator.Cmp(got[i].Denominator), 0)
	}
}

func TestExpandRationalStepLimit(t *testing.T) {
	got, err := ExpandRational(big.NewRat(5, 8), big.NewInt(100), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrArithmeticBound))
	assert.True(t, IsArithmeticBound(err))
	assert.False(t, IsConfiguration(err))
	assert.Equal(t, []string{"0/1"}, fracs(got))
}

func TestExpandRationalRejectsBadInput(t *testing.T) {
	_, err := ExpandRational(big.NewRat(1, 2), big.NewInt(0), 0)
	assert.True(t, IsConfiguration(err))

	_, err = ExpandRational(big.NewRat(-1, 2), big.NewInt(5), 0)
	assert.True(t, IsConfiguration(err))

	_, err = ContinuedFractionExpand(PhaseEstimate{Value: big.NewInt(-3), Bits: 4}, big.NewInt(5))
	assert.True(t, IsConfiguration(err))
}

func TestDefaultExpansionStepsIsSufficient(t *testing.T) {
	// Fibonacci ratios have the longest expansions for their size.
	a, b := big.NewInt(1), big.NewInt(1)
	for i := 0; i < 80; i++ {
		a, b = b, new(big.Int).Add(a, b)
	}
	maxDen := new(big.Int).Set(b)
	_, err := ExpandRational(new(big.Rat).SetFrac(a, b), maxDen, 0)
	assert.NoError(t, err)
}
