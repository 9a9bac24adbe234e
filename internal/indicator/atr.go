package indicator

import (
	"math"

	"github.com/jona04/colab-finance-go/internal/domain"
)

// trueRange computes TR_i = max(high-low, |high-prevClose|, |low-prevClose|).
// The first bar has no prior close, so TR_1 = high_1 - low_1 per spec §4.A.
func trueRange(candles []domain.Candle) []float64 {
	tr := make([]float64, len(candles))
	for i, c := range candles {
		if i == 0 {
			tr[i] = c.High - c.Low
			continue
		}
		prevClose := candles[i-1].Close
		a := c.High - c.Low
		b := math.Abs(c.High - prevClose)
		d := math.Abs(c.Low - prevClose)
		tr[i] = math.Max(a, math.Max(b, d))
	}
	return tr
}

// ATRPctSeries smooths True Range with the same EMA warm-up policy as
// EMASeries (window=atrWindow acting as the span), then expresses it as
// a fraction of close. Gaps are forward-filled; a terminal NaN becomes 0.
func ATRPctSeries(candles []domain.Candle, atrWindow int) []float64 {
	if len(candles) == 0 {
		return nil
	}

	tr := trueRange(candles)
	smoothed := EMASeries(tr, atrWindow)

	out := make([]float64, len(candles))
	var lastValid float64
	haveValid := false
	for i, c := range candles {
		v := smoothed[i]
		if math.IsNaN(v) {
			if haveValid {
				v = lastValid
			} else {
				out[i] = 0
				continue
			}
		} else {
			lastValid = v
			haveValid = true
		}
		if c.Close == 0 {
			out[i] = 0
			continue
		}
		out[i] = v / c.Close
	}
	return out
}

// ATRPctLast returns the final ATR% value, or 0 with ok=false if no
// bar produced a finite reading.
func ATRPctLast(candles []domain.Candle, atrWindow int) (float64, bool) {
	series := ATRPctSeries(candles, atrWindow)
	if len(series) == 0 {
		return 0, false
	}
	last := series[len(series)-1]
	return last, !math.IsNaN(last)
}
