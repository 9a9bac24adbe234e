package episode

import (
	"testing"
	"time"

	"github.com/jona04/colab-finance-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseStrategy() domain.Strategy {
	return domain.Strategy{
		Name:   "trend-follow",
		Symbol: "BTCUSDT",
		Params: domain.StrategyParams{
			Eps:                     1e-6,
			CooloffBars:             1,
			BreakoutConfirmBars:     1,
			VolHighThresholdPct:     0.01,
			SkewLowPct:              0.075,
			SkewHighPct:             0.025,
			StandardMaxMajorSidePct: 0.05,
			HighVolMaxMajorSidePct:  0.10,
			Tiers: []domain.Tier{
				{Name: "tight", ATRPctThreshold: 0.005, BarsRequired: 3, AllowedFrom: []string{"standard"}, MaxMajorSidePct: 0.02},
			},
		},
	}
}

func snap(p, emaFast, emaSlow, atr float64, ts time.Time) domain.Snapshot {
	return domain.Snapshot{Symbol: "BTCUSDT", Close: p, EMAFast: emaFast, EMASlow: emaSlow, ATRPct: atr, CloseTime: ts}
}

func TestEvaluate_FirstOpen_TrendUp(t *testing.T) {
	strat := baseStrategy()
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	res := Evaluate(strat, snap(100, 11, 10, 0.004, ts), nil)

	require.True(t, res.FirstOpen)
	require.NotNil(t, res.Opened)
	ep := res.Opened
	assert.Equal(t, domain.MajorityToken2, ep.MajorityOnOpen)
	assert.Equal(t, domain.PoolTypeStandard, ep.PoolType)
	assert.InDelta(t, 98.75, ep.Pa, 1e-6)
	assert.InDelta(t, 103.75, ep.Pb, 1e-6)
	// target_major/minor mirror pct_above_base/pct_below_base (unscaled
	// skew bases) times 10, per the source's `·10` convention — see
	// Open Questions in SPEC_FULL.md on why this is left unclamped.
	assert.InDelta(t, 0.75, ep.TargetMajorPct, 1e-6)
	assert.InDelta(t, 0.25, ep.TargetMinorPct, 1e-6)
}

func TestEvaluate_ConfirmedBreakout(t *testing.T) {
	strat := baseStrategy()
	strat.Params.BreakoutConfirmBars = 2
	strat.Params.CooloffBars = 1
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	current := &domain.Episode{
		StrategyID:     strat.StrategyID(),
		Pa:             98.75,
		Pb:             103.75,
		PoolType:       domain.PoolTypeStandard,
		LastEventBar:   2,
		MajorityOnOpen: domain.MajorityToken2,
		Status:         domain.EpisodeOpen,
		AtrStreak:      map[string]int{"tight": 0},
	}

	res := Evaluate(strat, snap(103.76, 11, 10, 0.003, ts), current)
	require.Nil(t, res.Closed)
	require.NotNil(t, res.StreakUpdate)
	assert.Equal(t, 1, res.StreakUpdate.OutAboveStreak)

	current2 := res.StreakUpdate
	res2 := Evaluate(strat, snap(103.80, 11, 10, 0.003, ts.Add(time.Minute)), current2)
	require.NotNil(t, res2.Closed)
	assert.Equal(t, domain.CloseReasonCrossMax, res2.Closed.CloseReason.Kind)
	require.NotNil(t, res2.Opened)
	assert.Equal(t, domain.PoolType("tight"), res2.Opened.PoolType)
}

func TestEvaluate_TierTightening(t *testing.T) {
	strat := baseStrategy()
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	current := &domain.Episode{
		StrategyID:     strat.StrategyID(),
		Pa:             90,
		Pb:             110,
		PoolType:       domain.PoolTypeStandard,
		LastEventBar:   0,
		MajorityOnOpen: domain.MajorityToken2,
		Status:         domain.EpisodeOpen,
		AtrStreak:      map[string]int{"tight": 0},
	}

	for i := 0; i < 2; i++ {
		res := Evaluate(strat, snap(100, 11, 10, 0.003, ts.Add(time.Duration(i)*time.Minute)), current)
		require.Nil(t, res.Closed)
		current = res.StreakUpdate
	}

	res := Evaluate(strat, snap(100, 11, 10, 0.003, ts.Add(2*time.Minute)), current)
	require.NotNil(t, res.Closed)
	assert.Equal(t, domain.CloseReasonTighten, res.Closed.CloseReason.Kind)
	assert.Equal(t, "tight", res.Closed.CloseReason.TierName)
}

func TestEnsureValidBand_KeepsPriceStrictlyInside(t *testing.T) {
	pa, pb := ensureValidBand(100, 100, 100)
	assert.Less(t, pa, 100.0)
	assert.Greater(t, pb, 100.0)
	assert.Less(t, pa, pb)
}
