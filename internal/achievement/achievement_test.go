package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noctisium/internal/progression"
)

func TestDefaultRegistryLoads(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, reg.Len(), 80)

	// Registry is ordered by display order.
	defs := reg.All()
	for i := 1; i < len(defs); i++ {
		assert.LessOrEqual(t, defs[i-1].Order, defs[i].Order)
	}

	def, ok := reg.Get("first_week")
	require.True(t, ok)
	assert.Equal(t, RarityCommon, def.Rarity)

	_, ok = reg.Get("no_such_key")
	assert.False(t, ok)
}

func TestRegistryValidation(t *testing.T) {
	cases := map[string]string{
		"empty set": `achievements: []`,
		"duplicate key": `
achievements:
  - {key: a, title: A, rarity: common, conditions: [{kind: total_rr, target: 1}]}
  - {key: a, title: A2, rarity: common, conditions: [{kind: total_rr, target: 2}]}`,
		"bad rarity": `
achievements:
  - {key: a, title: A, rarity: mythic, conditions: [{kind: total_rr, target: 1}]}`,
		"no conditions": `
achievements:
  - {key: a, title: A, rarity: common, conditions: []}`,
		"bad kind": `
achievements:
  - {key: a, title: A, rarity: common, conditions: [{kind: nope, target: 1}]}`,
		"stat_level without stat": `
achievements:
  - {key: a, title: A, rarity: common, conditions: [{kind: stat_level, target: 1}]}`,
		"unknown predicate": `
achievements:
  - {key: a, title: A, rarity: common, conditions: [{kind: custom, target: 1, name: nope}]}`,
		"bad reward stat": `
achievements:
  - key: a
    title: A
    rarity: common
    conditions: [{kind: total_rr, target: 1}]
    reward: {stat_xp: {NOPE: 10}}`,
	}
	for name, doc := range cases {
		_, err := LoadRegistry([]byte(doc), BuiltinPredicates())
		assert.Error(t, err, name)
	}
}

func evaluatorForTest(t *testing.T) *Evaluator {
	t.Helper()
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	return NewEvaluator(reg, BuiltinPredicates())
}

func keys(defs []Definition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Key
	}
	return out
}

func TestEvaluateAllConditionsMustHold(t *testing.T) {
	eval := evaluatorForTest(t)

	// strong_and_steady needs quest_streak >= 7 AND STR level >= 5.
	facts := Facts{
		QuestStreak: 8,
		StatLevels:  map[progression.Stat]int{progression.StatSTR: 4},
	}
	newly, err := eval.Evaluate(facts, nil)
	require.NoError(t, err)
	assert.NotContains(t, keys(newly), "strong_and_steady")

	facts.StatLevels[progression.StatSTR] = 5
	newly, err = eval.Evaluate(facts, nil)
	require.NoError(t, err)
	assert.Contains(t, keys(newly), "strong_and_steady")
}

func TestEvaluateSkipsAlreadyUnlocked(t *testing.T) {
	eval := evaluatorForTest(t)
	facts := Facts{TotalQuests: 1}

	newly, err := eval.Evaluate(facts, nil)
	require.NoError(t, err)
	assert.Contains(t, keys(newly), "first_week")

	unlocked := map[string]bool{}
	for _, k := range keys(newly) {
		unlocked[k] = true
	}
	again, err := eval.Evaluate(facts, unlocked)
	require.NoError(t, err)
	assert.Empty(t, again, "same qualifying state must not re-fire")
}

func TestEvaluateCustomPredicates(t *testing.T) {
	eval := evaluatorForTest(t)

	facts := Facts{
		StatLevels: map[progression.Stat]int{
			progression.StatSTR: 3, progression.StatVIT: 3, progression.StatINT: 3,
			progression.StatWIS: 3, progression.StatCHA: 3,
		},
		LatestCompletion: 100,
		DaysActive:       7,
	}
	newly, err := eval.Evaluate(facts, nil)
	require.NoError(t, err)
	got := keys(newly)
	assert.Contains(t, got, "balanced_3")
	assert.Contains(t, got, "perfect_week")
	assert.Contains(t, got, "active_7")
	assert.NotContains(t, got, "balanced_5")
}

func TestEvaluateHiddenSameAsVisible(t *testing.T) {
	eval := evaluatorForTest(t)
	facts := Facts{QuestStreak: 8, LatestCompletion: 100}

	newly, err := eval.Evaluate(facts, nil)
	require.NoError(t, err)
	assert.Contains(t, keys(newly), "secret_flawless_streak",
		"hidden achievements evaluate like visible ones")
}

func TestVisibleFiltersLockedHidden(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)

	visible := reg.Visible(nil)
	for _, def := range visible {
		assert.False(t, def.Hidden)
	}
	assert.Equal(t, reg.Len(), len(visible)+3, "three hidden achievements shipped")

	withUnlock := reg.Visible(map[string]bool{"secret_flawless_streak": true})
	assert.Equal(t, len(visible)+1, len(withUnlock))
}

func TestEvaluateUnknownPredicateFailsLoudly(t *testing.T) {
	doc := `
achievements:
  - {key: a, title: A, rarity: common, conditions: [{kind: custom, target: 1, name: ghost}], order: 1}`
	reg, err := LoadRegistry([]byte(doc), map[string]Predicate{"ghost": func(Facts, int) bool { return true }})
	require.NoError(t, err)

	// Registry validated against one predicate set, evaluator given another.
	eval := NewEvaluator(reg, nil)
	_, err = eval.Evaluate(Facts{}, nil)
	assert.Error(t, err)
}
