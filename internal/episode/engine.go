// Package episode implements the §4.E Episode State Machine: per
// (strategy, closed candle) tick it decides whether to keep the current
// OPEN episode, close it and open a new one, or open the very first one.
package episode

import (
	"github.com/jona04/colab-finance-go/internal/domain"
)

const defaultEps = 1e-6

// Result is everything one tick of Evaluate produces. A first open sets
// FirstOpen and Opened; a transition sets Closed and Opened; otherwise
// StreakUpdate carries the existing episode with its updated counters.
// StreakUpdate is nil whenever a transition fires.
type Result struct {
	FirstOpen    bool
	Opened       *domain.Episode
	Closed       *domain.Episode
	StreakUpdate *domain.Episode
}

// Evaluate runs one bar of the state machine for a single strategy.
// current is nil when the strategy has no OPEN episode.
func Evaluate(strategy domain.Strategy, snapshot domain.Snapshot, current *domain.Episode) Result {
	params := strategy.Params
	eps := params.Eps
	if eps == 0 {
		eps = defaultEps
	}
	cooloff := params.CooloffBars
	if cooloff == 0 {
		cooloff = 1
	}
	confirm := params.BreakoutConfirmBars
	if confirm == 0 {
		confirm = 1
	}

	p := snapshot.Close
	trend := trendAt(snapshot.EMAFast, snapshot.EMASlow)

	if current == nil {
		return firstOpen(strategy, snapshot, params, trend, p)
	}

	iSinceOpen := current.LastEventBar + 1
	outAbove, outBelow := updateBreakoutStreaks(p, current.Pa, current.Pb, eps, current.OutAboveStreak, current.OutBelowStreak)

	updated := *current
	updated.OutAboveStreak = outAbove
	updated.OutBelowStreak = outBelow
	updated.LastEventBar = iSinceOpen

	var trigger domain.CloseReason

	if iSinceOpen >= cooloff && (outAbove >= confirm || outBelow >= confirm) {
		if outAbove >= confirm {
			trigger = domain.CloseReason{Kind: domain.CloseReasonCrossMax}
		} else {
			trigger = domain.CloseReason{Kind: domain.CloseReasonCrossMin}
		}
	}

	if trigger.Kind == "" && iSinceOpen >= cooloff {
		if params.VolHighThresholdPct > 0 && snapshot.ATRPct > params.VolHighThresholdPct && current.PoolType != domain.PoolTypeHighVol {
			trigger = domain.CloseReason{Kind: domain.CloseReasonHighVol}
		}
	}

	if trigger.Kind == "" && current.Pa < p && p < current.Pb && iSinceOpen >= cooloff {
		chosen, newStreaks := tierTrigger(params.Tiers, current.PoolType, snapshot.ATRPct, current.AtrStreak)
		updated.AtrStreak = newStreaks
		if chosen != nil {
			trigger = domain.CloseReason{Kind: domain.CloseReasonTighten, TierName: chosen.Name}
		}
	}

	if trigger.Kind == "" {
		return Result{StreakUpdate: &updated}
	}

	closed := updated
	closed.Status = domain.EpisodeClosed
	closed.CloseTime = snapshot.CloseTime
	closed.ClosePrice = p
	closed.CloseReason = trigger

	opened := openWithWidth(strategy, snapshot, params, trend, p, trigger)
	return Result{Closed: &closed, Opened: &opened}
}

func firstOpen(strategy domain.Strategy, snapshot domain.Snapshot, params domain.StrategyParams, trend string, p float64) Result {
	width := params.StandardMaxMajorSidePct
	band := pickBandForTrend(p, trend, params, snapshot.ATRPct, &width, domain.PoolTypeStandard)
	major, minor := targetPcts(band.Majority, band.PctBelowBase, band.PctAboveBase)

	ep := domain.Episode{
		StrategyID:     strategy.StrategyID(),
		OpenTime:       snapshot.CloseTime,
		OpenPrice:      p,
		Pa:             band.Pa,
		Pb:             band.Pb,
		PoolType:       domain.PoolTypeStandard,
		ModeOnOpen:     band.Mode,
		MajorityOnOpen: band.Majority,
		TargetMajorPct: major,
		TargetMinorPct: minor,
		LastEventBar:   0,
		AtrStreak:      zeroStreaks(params.Tiers),
		Dex:            strategy.Dex,
		Alias:          strategy.Alias,
		Token0Address:  strategy.Token0Address,
		Token1Address:  strategy.Token1Address,
		Status:         domain.EpisodeOpen,
	}
	return Result{FirstOpen: true, Opened: &ep}
}

// openWithWidth builds the episode opened immediately after a trigger
// closes the current one, choosing the next pool_type and target total
// width per §4.E's transition rules.
func openWithWidth(strategy domain.Strategy, snapshot domain.Snapshot, params domain.StrategyParams, trend string, p float64, trigger domain.CloseReason) domain.Episode {
	var nextPoolType domain.PoolType
	var totalWidth float64

	switch trigger.Kind {
	case domain.CloseReasonCrossMin, domain.CloseReasonCrossMax:
		if len(params.Tiers) > 0 {
			strictest := strictestTier(params.Tiers)
			nextPoolType = domain.PoolType(strictest.Name)
			totalWidth = strictest.MaxMajorSidePct
		} else {
			nextPoolType = domain.PoolTypeStandard
			totalWidth = params.StandardMaxMajorSidePct
		}
	case domain.CloseReasonHighVol:
		nextPoolType = domain.PoolTypeHighVol
		totalWidth = params.HighVolMaxMajorSidePct
	case domain.CloseReasonTighten:
		nextPoolType = domain.PoolType(trigger.TierName)
		totalWidth = params.StandardMaxMajorSidePct
		for _, tier := range params.Tiers {
			if tier.Name == trigger.TierName {
				totalWidth = tier.MaxMajorSidePct
				break
			}
		}
	}

	band := pickBandForTrend(p, trend, params, snapshot.ATRPct, &totalWidth, nextPoolType)
	major, minor := targetPcts(band.Majority, band.PctBelowBase, band.PctAboveBase)

	return domain.Episode{
		StrategyID:     strategy.StrategyID(),
		OpenTime:       snapshot.CloseTime,
		OpenPrice:      p,
		Pa:             band.Pa,
		Pb:             band.Pb,
		PoolType:       nextPoolType,
		ModeOnOpen:     band.Mode,
		MajorityOnOpen: band.Majority,
		TargetMajorPct: major,
		TargetMinorPct: minor,
		LastEventBar:   0,
		AtrStreak:      zeroStreaks(params.Tiers),
		Dex:            strategy.Dex,
		Alias:          strategy.Alias,
		Token0Address:  strategy.Token0Address,
		Token1Address:  strategy.Token1Address,
		Status:         domain.EpisodeOpen,
	}
}

// strictestTier returns the tier with the highest atr_pct_threshold,
// i.e. the narrowest band, picked first out of the descending order.
func strictestTier(tiers []domain.Tier) domain.Tier {
	strictest := tiers[0]
	for _, t := range tiers[1:] {
		if t.ATRPctThreshold > strictest.ATRPctThreshold {
			strictest = t
		}
	}
	return strictest
}

func zeroStreaks(tiers []domain.Tier) map[string]int {
	out := make(map[string]int, len(tiers))
	for _, t := range tiers {
		out[t.Name] = 0
	}
	return out
}
