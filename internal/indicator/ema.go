// Package indicator computes incremental technical indicators (EMA,
// ATR%) over closed candles, pure functions with no I/O, grounded in
// the warm-up and smoothing policy of the original pandas-based
// implementation (span -> alpha = 2/(s+1), min_periods = max(2, s/2)).
package indicator

import "math"

// minPeriods mirrors the source's max(2, span//2) warm-up gate.
func minPeriods(span int) int {
	half := span / 2
	if half < 2 {
		return 2
	}
	return half
}

// alphaForSpan converts a span into the EMA smoothing factor.
func alphaForSpan(span int) float64 {
	return 2.0 / (float64(span) + 1.0)
}

// EMASeries computes an exponential moving average over values with
// adjust=False semantics (y_i = alpha*x_i + (1-alpha)*y_{i-1}, y_0 =
// x_0), returning math.NaN() for indices before minPeriods(span)-1.
func EMASeries(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	alpha := alphaForSpan(span)
	warm := minPeriods(span)

	ema := values[0]
	for i, v := range values {
		if i == 0 {
			ema = v
		} else {
			ema = alpha*v + (1-alpha)*ema
		}
		if i < warm-1 {
			out[i] = math.NaN()
		} else {
			out[i] = ema
		}
	}
	return out
}

// EMALast returns the final value of EMASeries and whether it is valid
// (non-NaN, i.e. enough observations have been seen).
func EMALast(values []float64, span int) (float64, bool) {
	series := EMASeries(values, span)
	if len(series) == 0 {
		return 0, false
	}
	last := series[len(series)-1]
	return last, !math.IsNaN(last)
}
