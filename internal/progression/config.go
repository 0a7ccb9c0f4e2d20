package progression

import (
	"fmt"

	"noctisium/internal/kpi"
)

// CritConfig parameterizes the critical-hit chance model. The chance is
// informational flavor for the dashboard, not load-bearing state.
type CritConfig struct {
	Base  float64 `yaml:"base"`  // percent, floor of the clamp
	Slope float64 `yaml:"slope"` // percent per completion point above 80
	Max   float64 `yaml:"max"`   // percent, ceiling of the clamp
}

// Config is the tunable part of the progression model. Numeric tuning is
// a configuration concern; the leveling curve itself is not tunable.
type Config struct {
	// WeekXPRate converts one category-completion point into stat XP.
	WeekXPRate float64 `yaml:"week_xp_rate"`
	// RRPerPoints is the completion-percentage cost of one RR point
	// (10 means 1 RR per 10 percentage points).
	RRPerPoints int `yaml:"rr_per_points"`
	// CategoryStats distributes a category's XP across stats by
	// percentage weight.
	CategoryStats map[kpi.Category]map[Stat]int `yaml:"category_stats"`
	Crit          CritConfig                    `yaml:"crit"`
	RankLadder    []RankThreshold               `yaml:"rank_ladder"`
}

// DefaultConfig returns the shipped tuning.
func DefaultConfig() Config {
	return Config{
		WeekXPRate:  1.2,
		RRPerPoints: 10,
		CategoryStats: map[kpi.Category]map[Stat]int{
			kpi.CategoryFitness:    {StatSTR: 70, StatVIT: 30},
			kpi.CategoryHealth:     {StatVIT: 100},
			kpi.CategoryLearning:   {StatINT: 100},
			kpi.CategoryDiscipline: {StatWIS: 100},
			kpi.CategorySocial:     {StatCHA: 100},
			kpi.CategoryLeisure:    {StatCHA: 50, StatWIS: 50},
		},
		Crit: CritConfig{Base: 5, Slope: 0.25, Max: 25},
		RankLadder: []RankThreshold{
			{Tier: TierBronze, MinRR: 0},
			{Tier: TierSilver, MinRR: 100},
			{Tier: TierGold, MinRR: 300},
			{Tier: TierPlatinum, MinRR: 700},
			{Tier: TierDiamond, MinRR: 1500},
			{Tier: TierGrandmaster, MinRR: 3000},
		},
	}
}

// Validate rejects tunings the update functions cannot work with.
func (c Config) Validate() error {
	if c.WeekXPRate <= 0 {
		return fmt.Errorf("week_xp_rate must be positive, got %v", c.WeekXPRate)
	}
	if c.RRPerPoints <= 0 {
		return fmt.Errorf("rr_per_points must be positive, got %d", c.RRPerPoints)
	}
	if c.Crit.Base < 0 || c.Crit.Max < c.Crit.Base || c.Crit.Slope < 0 {
		return fmt.Errorf("crit config out of range: %+v", c.Crit)
	}
	if len(c.RankLadder) == 0 {
		return fmt.Errorf("rank_ladder is empty")
	}
	prev := -1
	for _, th := range c.RankLadder {
		if TierIndex(th.Tier) < 0 {
			return fmt.Errorf("unknown rank tier %q", th.Tier)
		}
		if th.MinRR <= prev && !(prev == -1 && th.MinRR == 0) {
			return fmt.Errorf("rank_ladder thresholds must be strictly ascending")
		}
		prev = th.MinRR
	}
	for cat, weights := range c.CategoryStats {
		if !cat.IsValid() {
			return fmt.Errorf("unknown category %q in category_stats", cat)
		}
		for stat := range weights {
			if !stat.IsValid() {
				return fmt.Errorf("unknown stat %q for category %q", stat, cat)
			}
		}
	}
	return nil
}
