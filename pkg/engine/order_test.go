package engine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOrder(t *testing.T) {
	tests := []struct {
		n, a, r int64
	}{
		{15, 2, 4},
		{15, 4, 2},
		{15, 7, 4},
		{15, 14, 2},
		{21, 2, 6},
		{7, 2, 3},
		{7, 3, 6},
		{35, 3, 12},
		{2, 1, 1},
	}

	for _, tt := range tests {
		n, a := big.NewInt(tt.n), big.NewInt(tt.a)
		assert.True(t, ValidateOrder(big.NewInt(tt.r), a, n), "N=%d a=%d r=%d", tt.n, tt.a, tt.r)
		for k := int64(1); k < tt.r; k++ {
			assert.False(t, ValidateOrder(big.NewInt(k), a, n), "N=%d a=%d k=%d", tt.n, tt.a, k)
		}
		// Multiples of the order validate too.
		assert.True(t, ValidateOrder(big.NewInt(3*tt.r), a, n))
	}
}

func TestValidateOrderRejectsNonPositive(t *testing.T) {
	assert.False(t, ValidateOrder(big.NewInt(0), big.NewInt(2), big.NewInt(15)))
	assert.False(t, ValidateOrder(big.NewInt(-4), big.NewInt(2), big.NewInt(15)))
	assert.False(t, ValidateOrder(nil, big.NewInt(2), big.NewInt(15)))
	assert.False(t, ValidateOrder(big.NewInt(1), big.NewInt(1), big.NewInt(1)))
}

func TestValidateOrderLargeModulus(t *testing.T) {
	// p = 2^61-1 is prime, so a^(p-1) ≡ 1 for every a coprime to p.
	p := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 61), big.NewInt(1))
	pm1 := new(big.Int).Sub(p, big.NewInt(1))
	assert.True(t, ValidateOrder(pm1, big.NewInt(3), p))
}

func TestRecoverOrder(t *testing.T) {
	n, a := big.NewInt(15), big.NewInt(7)

	tests := []struct {
		name   string
		value  int64
		found  bool
		order  int64
		reason Reason
	}{
		{"quarter", 64, true, 4, ReasonNone},
		{"three quarters", 192, true, 4, ReasonNone},
		{"half", 128, false, 0, ReasonNoValidConvergent},
		{"zero", 0, false, 0, ReasonNoValidConvergent},
		{"near quarter", 65, true, 4, ReasonNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := RecoverOrder(NewOutcome(tt.value, 1), 8, a, n)
			require.NoError(t, err)
			assert.Equal(t, tt.found, res.Found)
			assert.Equal(t, tt.reason, res.Reason)
			if tt.found {
				assert.Equal(t, tt.order, res.Order.Int64())
			} else {
				assert.Nil(t, res.Order)
			}
			assert.NotEmpty(t, res.Convergents)
		})
	}
}

func TestRecoverOrderReturnsSmallestValidDenominator(t *testing.T) {
	// a=4 has order 2 mod 15; 1/2 must give 2 even though 4 also validates.
	res, err := RecoverOrder(NewOutcome(128, 1), 8, big.NewInt(4), big.NewInt(15))
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, int64(2), res.Order.Int64())
}

func TestRecoverOrderMultipleSearch(t *testing.T) {
	p, err := NewProblem(big.NewInt(15), big.NewInt(7), 8)
	require.NoError(t, err)

	// 1/2 = 2/4 reduced: only the multiple 2·2 is the order.
	res := p.recoverOrder(NewOutcome(128, 1), Options{MultipleSearch: 2})
	require.True(t, res.Found)
	assert.Equal(t, int64(4), res.Order.Int64())

	res = p.recoverOrder(NewOutcome(128, 1), Options{})
	assert.False(t, res.Found)
}

func TestRecoverOrderBoundExceeded(t *testing.T) {
	p, err := NewProblem(big.NewInt(15), big.NewInt(7), 8)
	require.NoError(t, err)

	res := p.recoverOrder(NewOutcome(64, 1), Options{MaxExpansionSteps: 1})
	assert.False(t, res.Found)
	assert.Equal(t, ReasonBoundExceeded, res.Reason)
}

func TestRecoverOrderConfigurationErrors(t *testing.T) {
	_, err := RecoverOrder(NewOutcome(1, 1), 8, big.NewInt(5), big.NewInt(15))
	assert.True(t, IsConfiguration(err))

	_, err = RecoverOrder(NewOutcome(256, 1), 8, big.NewInt(7), big.NewInt(15))
	assert.True(t, IsConfiguration(err))

	_, err = RecoverOrder(MeasurementOutcome{}, 8, big.NewInt(7), big.NewInt(15))
	assert.True(t, IsConfiguration(err))
}
