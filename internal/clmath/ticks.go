// Package clmath implements the tick/sqrt-price conversions and
// liquidity-to-amount math shared by Uniswap-v3-family AMMs (Uniswap
// v3, Aerodrome Slipstream, PancakeSwap v3, Algebra-integral pools).
// Every function here is pure: no I/O, no RPC, no ABI encoding.
package clmath

import (
	"errors"
	"math/big"
)

// MinTick and MaxTick bound the domain SqrtRatioAtTick accepts.
const (
	MinTick = -887272
	MaxTick = 887272
)

// ErrTickOutOfRange is returned when a tick falls outside [MinTick, MaxTick].
var ErrTickOutOfRange = errors.New("clmath: tick out of range")

// ErrSqrtPriceOverflow is returned when the Q64.96 result would exceed
// the 160-bit value space Uniswap-v3-family pools store sqrt prices in.
var ErrSqrtPriceOverflow = errors.New("clmath: sqrt price overflow")

// prefactor is the canonical 20-entry Q128.128 constant table used by
// TickMath across the Uniswap-v3 family. Index i corresponds to bit i
// of the tick's absolute value.
var prefactor [20]*big.Int

func init() {
	hexConsts := [20]string{
		"fffcb933bd6fad37aa2d162d1a594001",
		"fff97272373d413259a46990580e213a",
		"fff2e50f5f656932ef12357cf3c7fdcc",
		"ffe5caca7e10e4e61c3624eaa0941cd0",
		"ffcb9843d60f6159c9db58835c926644",
		"ff973b41fa98c081472e6896dfb254c0",
		"ff2ea16466c96a3843ec78b326b52861",
		"fe5dee046a99a2a811c461f1969c3053",
		"fcbe86c7900a88aedcffc83b479aa3a4",
		"f987a7253ac413176f2b074cf7815e54",
		"f3392b0822b70005940c7a398e4b70f3",
		"e7159475a2c29b7443b29c7fa6e889d9",
		"d097f3bdfd2022b8845ad8f792aa5825",
		"a9f746462d870fdf8a65dc1f90e061e5",
		"70d869a156d2a1b890bb3df62baf32f7",
		"31be135f97d08fd981231505542fcfa6",
		"9aa508b5b7a84e1c677de54f3e99bc9",
		"5d6af8dedb81196699c329225ee604",
		"2216e584f5fa1ea926041bedfe98",
		"48a170391f7dc42444e8fa2",
	}
	for i, h := range hexConsts {
		v, ok := new(big.Int).SetString(h, 16)
		if !ok {
			panic("clmath: bad prefactor constant at index " + string(rune('0'+i)))
		}
		prefactor[i] = v
	}
}

var (
	one128   = new(big.Int).Lsh(big.NewInt(1), 128)
	maxUint256Plus1 = new(big.Int).Lsh(big.NewInt(1), 256)
	mask32   = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 32), big.NewInt(1))
	maxQ96160 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 160), big.NewInt(1))
)

// SqrtRatioAtTick returns sqrt(1.0001^tick) as a Q64.96 fixed-point
// integer, matching the reference TickMath implementation bit-for-bit.
func SqrtRatioAtTick(tick int) (*big.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, ErrTickOutOfRange
	}

	absTick := tick
	if absTick < 0 {
		absTick = -absTick
	}

	ratio := new(big.Int).Set(one128)
	for i := 0; i < 20; i++ {
		if absTick&(1<<uint(i)) != 0 {
			ratio.Rsh(ratio.Mul(ratio, prefactor[i]), 128)
		}
	}

	if tick > 0 {
		ratio = new(big.Int).Div(new(big.Int).Sub(maxUint256Plus1, big.NewInt(1)), ratio)
	}

	rShift := new(big.Int).Rsh(ratio, 32)
	rem := new(big.Int).And(ratio, mask32)
	if rem.Sign() != 0 {
		rShift.Add(rShift, big.NewInt(1))
	}

	if rShift.Cmp(maxQ96160) > 0 {
		return nil, ErrSqrtPriceOverflow
	}
	return rShift, nil
}
