package episode

import "github.com/jona04/colab-finance-go/internal/domain"

const epsPos = 1e-12

// trendAt reports "up"/"down" for the given EMA pair per §4.E.
func trendAt(emaFast, emaSlow float64) string {
	if emaFast > emaSlow {
		return "up"
	}
	return "down"
}

// ensureValidBand applies the clamping invariant: Pa >= eps, Pb >= Pa+eps,
// and P strictly inside (Pa, Pb) with a minimum pad proportional to P.
func ensureValidBand(pa, pb, p float64) (float64, float64) {
	if pa < epsPos {
		pa = epsPos
	}
	if pb < pa+epsPos {
		pb = pa + epsPos
	}
	midPad := epsPos * maxFloat(1.0, p)
	if p-midPad < pa {
		pa = p - midPad
	}
	if p+midPad > pb {
		pb = p + midPad
	}
	if !(pa < pb) {
		pa = p - midPad
		pb = p + midPad
	}
	return pa, pb
}

// scaleToTotalWidth rescales the base skew fractions so they sum to
// totalWidthPct, splitting evenly when the base sum is non-positive.
func scaleToTotalWidth(pctBelowBase, pctAboveBase, totalWidthPct float64) (float64, float64) {
	baseSum := pctBelowBase + pctAboveBase
	if baseSum <= 0 {
		half := totalWidthPct / 2.0
		if half < epsPos {
			half = epsPos
		}
		return half, half
	}
	scale := totalWidthPct / baseSum
	return pctBelowBase * scale, pctAboveBase * scale
}

// bandResult is everything pickBandForTrend derives for one candidate band.
type bandResult struct {
	Pa, Pb                       float64
	Mode                         string
	Majority                     domain.Majority
	HighVol                      bool
	PctBelowBase, PctAboveBase   float64
}

// pickBandForTrend implements §4.E's total-width band construction: base
// skew fractions depend on (poolType, trend), scaled to the pool type's
// target total width, then clamped around P.
func pickBandForTrend(p float64, trend string, params domain.StrategyParams, atrPctNow float64, totalWidthOverride *float64, poolType domain.PoolType) bandResult {
	var lastTierName string
	if n := len(params.Tiers); n > 0 {
		lastTierName = params.Tiers[n-1].Name
	}

	var majority domain.Majority
	var mode string
	var pctBelowBase, pctAboveBase float64

	switch {
	case poolType == domain.PoolTypeHighVol:
		if trend == "down" {
			majority, mode = domain.MajorityToken1, "trend_down"
			pctBelowBase, pctAboveBase = 0.09, 0.01
		} else {
			majority, mode = domain.MajorityToken2, "trend_up"
			pctBelowBase, pctAboveBase = 0.01, 0.09
		}
	case string(poolType) == lastTierName && lastTierName != "":
		if trend == "down" {
			majority, mode = domain.MajorityToken1, "trend_down"
		} else {
			majority, mode = domain.MajorityToken2, "trend_up"
		}
		pctBelowBase, pctAboveBase = 0.05, 0.05
	default:
		if trend == "down" {
			majority, mode = domain.MajorityToken1, "trend_down"
			pctBelowBase, pctAboveBase = params.SkewLowPct, params.SkewHighPct
		} else {
			majority, mode = domain.MajorityToken2, "trend_up"
			pctBelowBase, pctAboveBase = params.SkewHighPct, params.SkewLowPct
		}
	}

	highVol := params.VolHighThresholdPct > 0 && atrPctNow > params.VolHighThresholdPct

	var totalWidthPct float64
	switch {
	case totalWidthOverride != nil:
		totalWidthPct = *totalWidthOverride
	case poolType == domain.PoolTypeHighVol:
		totalWidthPct = params.HighVolMaxMajorSidePct
	case poolType == domain.PoolTypeStandard || poolType == "":
		totalWidthPct = params.StandardMaxMajorSidePct
	default:
		totalWidthPct = pctBelowBase + pctAboveBase
	}
	if totalWidthPct < 2e-6 {
		totalWidthPct = 2e-6
	}

	pctBelow, pctAbove := scaleToTotalWidth(pctBelowBase, pctAboveBase, totalWidthPct)

	pa := p * (1.0 - pctBelow)
	pb := p * (1.0 + pctAbove)
	pa, pb = ensureValidBand(pa, pb, p)

	return bandResult{
		Pa: pa, Pb: pb,
		Mode:         mode,
		Majority:     majority,
		HighVol:      highVol,
		PctBelowBase: pctBelowBase,
		PctAboveBase: pctAboveBase,
	}
}

// targetPcts mirrors the `·10` scaling documented (and deliberately left
// unclamped, per the Open Questions) in §9.
func targetPcts(majority domain.Majority, pctBelowBase, pctAboveBase float64) (major, minor float64) {
	if majority == domain.MajorityToken1 {
		return pctBelowBase * 10, pctAboveBase * 10
	}
	return pctAboveBase * 10, pctBelowBase * 10
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
