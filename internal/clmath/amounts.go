package clmath

import "math/big"

// Q96 = 2^96, the fixed-point base for Q64.96 sqrt-price values.
var Q96 = new(big.Int).Lsh(big.NewInt(1), 96)

// AmountsForLiquidity returns the (amount0, amount1) a liquidity amount
// L contributes given a current sqrt price sqrtP relative to a band
// [sqrtA, sqrtB] (sqrtA, sqrtB need not arrive pre-sorted).
func AmountsForLiquidity(sqrtP, sqrtA, sqrtB, l *big.Int) (amount0, amount1 *big.Int) {
	if sqrtA.Cmp(sqrtB) > 0 {
		sqrtA, sqrtB = sqrtB, sqrtA
	}

	switch {
	case sqrtP.Cmp(sqrtA) <= 0:
		amount0 = amount0ForLiquidity(sqrtA, sqrtB, l)
		amount1 = big.NewInt(0)
	case sqrtP.Cmp(sqrtB) < 0:
		amount0 = amount0ForLiquidity(sqrtP, sqrtB, l)
		amount1 = amount1ForLiquidity(sqrtA, sqrtP, l)
	default:
		amount0 = big.NewInt(0)
		amount1 = amount1ForLiquidity(sqrtA, sqrtB, l)
	}
	return amount0, amount1
}

// amount0ForLiquidity computes L*(sqrtHigh-sqrtLow)*Q96/(sqrtHigh*sqrtLow).
func amount0ForLiquidity(sqrtLow, sqrtHigh, l *big.Int) *big.Int {
	num := new(big.Int).Mul(l, new(big.Int).Sub(sqrtHigh, sqrtLow))
	num.Mul(num, Q96)
	den := new(big.Int).Mul(sqrtHigh, sqrtLow)
	return num.Div(num, den)
}

// amount1ForLiquidity computes L*(sqrtHigh-sqrtLow)/Q96.
func amount1ForLiquidity(sqrtLow, sqrtHigh, l *big.Int) *big.Int {
	num := new(big.Int).Mul(l, new(big.Int).Sub(sqrtHigh, sqrtLow))
	return num.Div(num, Q96)
}

// LiquidityForAmount0 inverts amount0ForLiquidity: the liquidity that
// consumes exactly amount0 of token0 across [sqrtLow, sqrtHigh].
func LiquidityForAmount0(sqrtLow, sqrtHigh, amount0 *big.Int) *big.Int {
	if sqrtLow.Cmp(sqrtHigh) > 0 {
		sqrtLow, sqrtHigh = sqrtHigh, sqrtLow
	}
	intermediate := new(big.Int).Div(new(big.Int).Mul(sqrtLow, sqrtHigh), Q96)
	num := new(big.Int).Mul(amount0, intermediate)
	den := new(big.Int).Sub(sqrtHigh, sqrtLow)
	if den.Sign() == 0 {
		return big.NewInt(0)
	}
	return num.Div(num, den)
}

// LiquidityForAmount1 inverts amount1ForLiquidity: the liquidity that
// consumes exactly amount1 of token1 across [sqrtLow, sqrtHigh].
func LiquidityForAmount1(sqrtLow, sqrtHigh, amount1 *big.Int) *big.Int {
	if sqrtLow.Cmp(sqrtHigh) > 0 {
		sqrtLow, sqrtHigh = sqrtHigh, sqrtLow
	}
	den := new(big.Int).Sub(sqrtHigh, sqrtLow)
	if den.Sign() == 0 {
		return big.NewInt(0)
	}
	num := new(big.Int).Mul(amount1, Q96)
	return num.Div(num, den)
}

// LiquidityForAmounts picks the limiting liquidity given two token
// budgets and a current price relative to the band, mirroring the
// standard Uniswap-v3 "amounts -> liquidity" inversion.
func LiquidityForAmounts(sqrtP, sqrtA, sqrtB, amount0Max, amount1Max *big.Int) *big.Int {
	if sqrtA.Cmp(sqrtB) > 0 {
		sqrtA, sqrtB = sqrtB, sqrtA
	}

	switch {
	case sqrtP.Cmp(sqrtA) <= 0:
		return LiquidityForAmount0(sqrtA, sqrtB, amount0Max)
	case sqrtP.Cmp(sqrtB) < 0:
		l0 := LiquidityForAmount0(sqrtP, sqrtB, amount0Max)
		l1 := LiquidityForAmount1(sqrtA, sqrtP, amount1Max)
		if l0.Cmp(l1) < 0 {
			return l0
		}
		return l1
	default:
		return LiquidityForAmount1(sqrtA, sqrtB, amount1Max)
	}
}
