package clmath

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceFromSqrtRatio_ZeroTickIsOne(t *testing.T) {
	sp, err := SqrtRatioAtTick(0)
	require.NoError(t, err)
	price := PriceFromSqrtRatio(sp)
	f, _ := price.Float64()
	assert.InDelta(t, 1.0, f, 1e-9)
}

func TestScaledPrice_Avax18Usdc6(t *testing.T) {
	sqrtPriceX96, ok := new(big.Int).SetString("280057970020625981233062", 10)
	require.True(t, ok)
	raw := PriceFromSqrtRatio(sqrtPriceX96)

	scaled := ScaledPrice(raw, 18, 6)
	f, _ := scaled.Float64()
	assert.InDelta(t, 12.49, f, 0.05)
}

func TestTickForPrice_RoundTripsSqrtRatio(t *testing.T) {
	sp, err := SqrtRatioAtTick(-251400)
	require.NoError(t, err)
	price := PriceFromSqrtRatio(sp)

	tick, err := TickForPrice(price)
	require.NoError(t, err)
	assert.Equal(t, -251400, tick)
}
