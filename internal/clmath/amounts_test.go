package clmath

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountsForLiquidity_ThreeRegions(t *testing.T) {
	sqrtA, err := SqrtRatioAtTick(-252000)
	require.NoError(t, err)
	sqrtB, err := SqrtRatioAtTick(-250800)
	require.NoError(t, err)
	l := big.NewInt(845179049218237)

	t.Run("below band: all token0, zero token1", func(t *testing.T) {
		sqrtBelow, err := SqrtRatioAtTick(-253000)
		require.NoError(t, err)
		a0, a1 := AmountsForLiquidity(sqrtBelow, sqrtA, sqrtB, l)
		assert.True(t, a0.Sign() > 0)
		assert.Equal(t, 0, a1.Sign())
	})

	t.Run("inside band: both positive", func(t *testing.T) {
		sqrtMid, err := SqrtRatioAtTick(-251400)
		require.NoError(t, err)
		a0, a1 := AmountsForLiquidity(sqrtMid, sqrtA, sqrtB, l)
		assert.True(t, a0.Sign() > 0)
		assert.True(t, a1.Sign() > 0)
	})

	t.Run("above band: zero token0, all token1", func(t *testing.T) {
		sqrtAbove, err := SqrtRatioAtTick(-250000)
		require.NoError(t, err)
		a0, a1 := AmountsForLiquidity(sqrtAbove, sqrtA, sqrtB, l)
		assert.Equal(t, 0, a0.Sign())
		assert.True(t, a1.Sign() > 0)
	})

	t.Run("band endpoints swapped yields identical result", func(t *testing.T) {
		sqrtMid, err := SqrtRatioAtTick(-251400)
		require.NoError(t, err)
		a0, a1 := AmountsForLiquidity(sqrtMid, sqrtA, sqrtB, l)
		b0, b1 := AmountsForLiquidity(sqrtMid, sqrtB, sqrtA, l)
		assert.Equal(t, a0, b0)
		assert.Equal(t, a1, b1)
	})
}

func TestLiquidityForAmounts_RoundTrips(t *testing.T) {
	sqrtA, err := SqrtRatioAtTick(-252000)
	require.NoError(t, err)
	sqrtB, err := SqrtRatioAtTick(-250800)
	require.NoError(t, err)
	sqrtP, err := SqrtRatioAtTick(-251400)
	require.NoError(t, err)

	amount0Max, _ := new(big.Int).SetString("99999309985252461722", 10)
	amount1Max, _ := new(big.Int).SetString("1208870000", 10)

	l := LiquidityForAmounts(sqrtP, sqrtA, sqrtB, amount0Max, amount1Max)
	require.True(t, l.Sign() > 0)

	a0, a1 := AmountsForLiquidity(sqrtP, sqrtA, sqrtB, l)
	assert.True(t, a0.Cmp(amount0Max) <= 0, "amount0 %s should not exceed budget %s", a0, amount0Max)
	assert.True(t, a1.Cmp(amount1Max) <= 0, "amount1 %s should not exceed budget %s", a1, amount1Max)
}
