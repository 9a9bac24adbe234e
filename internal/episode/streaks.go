package episode

import (
	"sort"

	"github.com/jona04/colab-finance-go/internal/domain"
)

// updateBreakoutStreaks implements §4.E's per-bar streak update: crossing
// above resets the below-streak and vice versa; re-entry resets both.
func updateBreakoutStreaks(p, pa, pb, eps float64, outAbove, outBelow int) (int, int) {
	above := p > pb*(1.0+eps)
	below := p < pa*(1.0-eps)
	switch {
	case above:
		return outAbove + 1, 0
	case below:
		return 0, outBelow + 1
	default:
		return 0, 0
	}
}

// tierTrigger evaluates the tier-tightening rule (§4.E rule 3): tiers are
// scanned ascending by threshold; the scan stops at the tier whose name
// equals the current pool type, and a tier's own streak updates only
// while the current pool type is one of its `allowed_from`.
func tierTrigger(tiers []domain.Tier, poolTypeCur domain.PoolType, atrPct float64, streaks map[string]int) (chosen *domain.Tier, updated map[string]int) {
	sorted := make([]domain.Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ATRPctThreshold < sorted[j].ATRPctThreshold })

	updated = make(map[string]int, len(streaks))
	for k, v := range streaks {
		updated[k] = v
	}

	for i := range sorted {
		tier := sorted[i]
		if string(poolTypeCur) == tier.Name {
			break
		}
		if !contains(tier.AllowedFrom, string(poolTypeCur)) {
			continue
		}
		if atrPct <= tier.ATRPctThreshold {
			updated[tier.Name] = updated[tier.Name] + 1
		} else {
			updated[tier.Name] = 0
		}
		if updated[tier.Name] >= tier.BarsRequired {
			picked := sorted[i]
			return &picked, updated
		}
	}
	return nil, updated
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
