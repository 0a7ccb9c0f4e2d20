package progression

// Tier is a rung on the rating ladder.
type Tier string

const (
	TierBronze      Tier = "bronze"
	TierSilver      Tier = "silver"
	TierGold        Tier = "gold"
	TierPlatinum    Tier = "platinum"
	TierDiamond     Tier = "diamond"
	TierGrandmaster Tier = "grandmaster"
)

// Tiers lists every tier in ascending order; index doubles as the tier's
// numeric rank for achievement conditions.
var Tiers = []Tier{TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond, TierGrandmaster}

// TierIndex returns the ascending position of a tier, or -1 if unknown.
func TierIndex(t Tier) int {
	for i, tier := range Tiers {
		if tier == t {
			return i
		}
	}
	return -1
}

// RankThreshold maps a tier to the minimum cumulative RR that reaches it.
type RankThreshold struct {
	Tier  Tier `yaml:"tier"`
	MinRR int  `yaml:"min_rr"`
}

// RankState is the derived ladder position for display.
type RankState struct {
	Tier   Tier
	RR     int
	NextRR int // RR still needed for the next tier; 0 at the top
}

// TierForRR resolves the tier for a cumulative RR total against an
// ascending threshold table. RR never decreases, so the derived tier is
// monotonically non-decreasing; there is no demotion rule.
func TierForRR(rr int, thresholds []RankThreshold) Tier {
	tier := Tiers[0]
	for _, th := range thresholds {
		if rr >= th.MinRR {
			tier = th.Tier
		}
	}
	return tier
}

// RankOf expands a cumulative RR total into the full ladder position.
func RankOf(rr int, thresholds []RankThreshold) RankState {
	state := RankState{Tier: TierForRR(rr, thresholds), RR: rr}
	for _, th := range thresholds {
		if rr < th.MinRR {
			state.NextRR = th.MinRR - rr
			break
		}
	}
	return state
}
