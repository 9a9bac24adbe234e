package clmath

import "math/big"

// q192 = 2^192, the denominator that converts a squared Q64.96 sqrt
// price into a raw (non-decimals-adjusted) price.
var q192 = new(big.Int).Lsh(big.NewInt(1), 192)

// floatPrec controls the precision used for the big.Float division in
// PriceFromSqrtRatio and ScaledPrice; 160 bits matches the 160-bit
// range sqrt prices are stored in.
const floatPrec = 160

// PriceFromSqrtRatio converts a Q64.96 sqrt price into the raw price
// of token1 per token0 (p_t1_t0), ignoring decimals scaling.
func PriceFromSqrtRatio(sqrtPriceX96 *big.Int) *big.Float {
	sq := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	num := new(big.Float).SetPrec(floatPrec).SetInt(sq)
	den := new(big.Float).SetPrec(floatPrec).SetInt(q192)
	return new(big.Float).SetPrec(floatPrec).Quo(num, den)
}

// ScaledPrice applies a decimals adjustment scale = 10^(dec0-dec1) to a
// raw price, producing the human-readable p_t1_t0 the reconciler and
// vault status responses work with.
func ScaledPrice(rawPrice *big.Float, dec0, dec1 int) *big.Float {
	diff := dec0 - dec1
	scale := new(big.Float).SetPrec(floatPrec).SetInt64(1)
	base := new(big.Float).SetPrec(floatPrec).SetInt64(10)
	n := diff
	if n < 0 {
		n = -n
	}
	for i := 0; i < n; i++ {
		scale.Mul(scale, base)
	}
	result := new(big.Float).SetPrec(floatPrec)
	if diff >= 0 {
		result.Mul(rawPrice, scale)
	} else {
		result.Quo(rawPrice, scale)
	}
	return result
}

// TickForPrice returns the tick whose SqrtRatioAtTick is closest to (and
// not above) the supplied raw price of token1 per token0, by bisection
// over the valid tick domain. Used only where a server-side price→tick
// conversion must be approximated locally (tests, simulations); the
// live vault façade performs its own authoritative conversion.
func TickForPrice(rawPrice *big.Float) (int, error) {
	lo, hi := MinTick, MaxTick
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		sp, err := SqrtRatioAtTick(mid)
		if err != nil {
			return 0, err
		}
		p := PriceFromSqrtRatio(sp)
		if p.Cmp(rawPrice) <= 0 {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, nil
}
