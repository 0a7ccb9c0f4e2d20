package progression

import (
	"math"

	"noctisium/internal/kpi"
)

// ApplyReport describes what one week's application changed.
type ApplyReport struct {
	Week        kpi.WeekKey
	StatXP      map[Stat]int
	RRGained    int
	LevelBefore int
	LevelAfter  int
	LevelUp     bool
	TierBefore  Tier
	TierAfter   Tier
	RankUp      bool
}

// ApplyWeek folds one scored week into the progression state and returns
// the updated state plus a report of what moved. The input state is not
// mutated; the caller persists the returned one. Applying the same week
// twice is the caller's to prevent (the engine keys applications by week).
func ApplyWeek(state State, week kpi.WeekProgress, cfg Config) (State, ApplyReport) {
	next := state.Clone()
	report := ApplyReport{
		Week:        week.Week,
		StatXP:      map[Stat]int{},
		LevelBefore: state.Level(),
		TierBefore:  TierForRR(state.RR, cfg.RankLadder),
	}

	// Category completion feeds the mapped stats, split by weight.
	for cat, completion := range week.ByCategory {
		weights, ok := cfg.CategoryStats[cat]
		if !ok {
			continue
		}
		totalWeight := 0
		for _, w := range weights {
			totalWeight += w
		}
		if totalWeight == 0 {
			continue
		}
		xp := int(math.Round(completion * cfg.WeekXPRate))
		if xp <= 0 {
			continue
		}
		distributeXP(report.StatXP, xp, weights, totalWeight)
	}

	for stat, xp := range report.StatXP {
		next.XP[stat] += xp
		next.TotalXP += xp
	}

	report.RRGained = int(week.Completion) / cfg.RRPerPoints
	next.RR += report.RRGained
	next.WeeksApplied++

	report.LevelAfter = next.Level()
	report.LevelUp = report.LevelAfter > report.LevelBefore
	report.TierAfter = TierForRR(next.RR, cfg.RankLadder)
	report.RankUp = TierIndex(report.TierAfter) > TierIndex(report.TierBefore)
	return next, report
}

// distributeXP splits xp across stats proportionally to their weights,
// assigning integer-division remainders to the heaviest stat so no XP is
// lost and the split is deterministic.
func distributeXP(into map[Stat]int, xp int, weights map[Stat]int, totalWeight int) {
	distributed := 0
	heaviest := Stat("")
	heaviestWeight := -1
	for _, stat := range Stats {
		w, ok := weights[stat]
		if !ok {
			continue
		}
		share := xp * w / totalWeight
		into[stat] += share
		distributed += share
		if w > heaviestWeight {
			heaviest = stat
			heaviestWeight = w
		}
	}
	if rem := xp - distributed; rem > 0 && heaviest != "" {
		into[heaviest] += rem
	}
}

// ApplyReward applies an achievement reward payload exactly once: RR and
// per-stat XP deltas land atomically on the returned state.
func ApplyReward(state State, rr int, statXP map[Stat]int) State {
	next := state.Clone()
	next.RR += rr
	for stat, xp := range statXP {
		if !stat.IsValid() || xp <= 0 {
			continue
		}
		next.XP[stat] += xp
		next.TotalXP += xp
	}
	return next
}

// CritChance is the informational critical-hit probability for a week:
// base below 80% completion, then a linear bonus clamped at max.
func CritChance(completion float64, cfg CritConfig) float64 {
	chance := cfg.Base
	if completion > 80 {
		chance += (completion - 80) * cfg.Slope
	}
	if chance < cfg.Base {
		chance = cfg.Base
	}
	if chance > cfg.Max {
		chance = cfg.Max
	}
	return chance
}
