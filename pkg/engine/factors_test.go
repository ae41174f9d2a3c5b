package engine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverFactors(t *testing.T) {
	tests := []struct {
		name      string
		r, a, n   int64
		f1, f2    int64
		trivial   bool
		reason    Reason
		halfPower int64
	}{
		{name: "N=15 a=2", r: 4, a: 2, n: 15, f1: 3, f2: 5, halfPower: 4},
		{name: "N=15 a=4 is not the -1 case", r: 2, a: 4, n: 15, f1: 3, f2: 5, halfPower: 4},
		{name: "N=15 a=7", r: 4, a: 7, n: 15, f1: 3, f2: 5, halfPower: 4},
		{name: "N=21 a=2", r: 6, a: 2, n: 21, f1: 3, f2: 7, halfPower: 8},
		{name: "N=35 a=3", r: 12, a: 3, n: 35, f1: 5, f2: 7, halfPower: 29},
		{name: "odd order", r: 3, a: 2, n: 7, trivial: true, reason: ReasonOddOrder},
		{name: "minus one", r: 2, a: 14, n: 15, trivial: true, reason: ReasonMinusOne, halfPower: 14},
		{name: "half power one", r: 2, a: 1, n: 15, trivial: true, reason: ReasonTrivialGCD, halfPower: 1},
		{name: "not an order", r: 2, a: 2, n: 15, trivial: true, reason: ReasonTrivialGCD, halfPower: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := RecoverFactors(big.NewInt(tt.r), big.NewInt(tt.a), big.NewInt(tt.n))
			require.NoError(t, err)

			assert.Equal(t, tt.trivial, res.Trivial)
			assert.Equal(t, tt.reason, res.Reason)
			if tt.halfPower != 0 {
				require.NotNil(t, res.HalfPower)
				assert.Equal(t, tt.halfPower, res.HalfPower.Int64())
			}
			if tt.trivial {
				assert.Nil(t, res.Pair)
				return
			}
			require.NotNil(t, res.Pair)
			assert.Equal(t, tt.f1, res.Pair.F1.Int64())
			assert.Equal(t, tt.f2, res.Pair.F2.Int64())
			assert.Equal(t, tt.n, new(big.Int).Mul(res.Pair.F1, res.Pair.F2).Int64())
		})
	}
}

func TestRecoverFactorsOddOrderSkipsGCD(t *testing.T) {
	res, err := RecoverFactors(big.NewInt(3), big.NewInt(2), big.NewInt(7))
	require.NoError(t, err)
	assert.True(t, res.Trivial)
	assert.Equal(t, ReasonOddOrder, res.Reason)
	assert.Nil(t, res.HalfPower)
}

func TestRecoverFactorsRejectsBadInput(t *testing.T) {
	_, err := RecoverFactors(big.NewInt(0), big.NewInt(2), big.NewInt(15))
	assert.True(t, IsConfiguration(err))

	_, err = RecoverFactors(big.NewInt(4), big.NewInt(3), big.NewInt(15))
	assert.True(t, IsConfiguration(err))
}
