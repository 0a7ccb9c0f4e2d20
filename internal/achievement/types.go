package achievement

import (
	"time"

	"noctisium/internal/progression"
)

// Rarity grades an achievement for display.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

func (r Rarity) IsValid() bool {
	switch r {
	case RarityCommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	default:
		return false
	}
}

// ConditionKind enumerates the testable predicate kinds. Adding a kind
// means extending the evaluator's switch, which is the single dispatch
// point.
type ConditionKind string

const (
	// KindTotalQuests: cumulative applied weeks >= target.
	KindTotalQuests ConditionKind = "total_quests"
	// KindQuestStreak: current weekly streak length >= target.
	KindQuestStreak ConditionKind = "quest_streak"
	// KindStatLevel: the named stat's level >= target.
	KindStatLevel ConditionKind = "stat_level"
	// KindRank: rank tier index >= target.
	KindRank ConditionKind = "rank"
	// KindTotalRR: cumulative rating points >= target.
	KindTotalRR ConditionKind = "total_rr"
	// KindCustom: a named caller-supplied predicate over the facts.
	KindCustom ConditionKind = "custom"
)

func (k ConditionKind) IsValid() bool {
	switch k {
	case KindTotalQuests, KindQuestStreak, KindStatLevel, KindRank, KindTotalRR, KindCustom:
		return true
	default:
		return false
	}
}

// Condition is one testable predicate; an achievement needs all of its
// conditions to hold simultaneously.
type Condition struct {
	Kind   ConditionKind    `yaml:"kind"`
	Target int              `yaml:"target"`
	Stat   progression.Stat `yaml:"stat,omitempty"` // stat_level only
	Name   string           `yaml:"name,omitempty"` // custom only
}

// Reward is the payload applied exactly once on unlock.
type Reward struct {
	RR     int                      `yaml:"rr,omitempty"`
	StatXP map[progression.Stat]int `yaml:"stat_xp,omitempty"`
	Title  string                   `yaml:"title,omitempty"`
}

// Definition is static configuration for one unlockable achievement.
type Definition struct {
	Key         string      `yaml:"key"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Icon        string      `yaml:"icon"`
	Rarity      Rarity      `yaml:"rarity"`
	Hidden      bool        `yaml:"hidden,omitempty"`
	Conditions  []Condition `yaml:"conditions"`
	Reward      Reward      `yaml:"reward"`
	Order       int         `yaml:"order"`
}

// Facts is the aggregated state snapshot conditions are evaluated
// against. The engine assembles it from progression state, streak
// analytics and usage counters.
type Facts struct {
	TotalQuests int
	QuestStreak int
	StatLevels  map[progression.Stat]int
	RankIndex   int
	TotalRR     int
	DaysActive  int
	// LatestCompletion is the most recent applied week's percentage,
	// available to custom predicates.
	LatestCompletion float64
}

// Predicate answers a custom condition against the facts.
type Predicate func(f Facts, target int) bool

// Unlock is an unlock event emitted by a successful evaluation.
type Unlock struct {
	Key        string
	Definition Definition
	UnlockedAt time.Time
}
