package achievement

import "fmt"

// Evaluator checks achievement definitions against fact snapshots. It is
// stateless: the already-unlocked set is an input, and deciding what to
// do with newly qualifying definitions is the caller's job. The engine
// serializes evaluations per user and persists unlock records plus
// rewards in one transaction, which is what makes unlocking idempotent.
type Evaluator struct {
	registry *Registry
	custom   map[string]Predicate
}

// NewEvaluator builds an evaluator over a validated registry. custom maps
// predicate names referenced by KindCustom conditions; it may be nil when
// the registry uses none.
func NewEvaluator(registry *Registry, custom map[string]Predicate) *Evaluator {
	return &Evaluator{registry: registry, custom: custom}
}

// Evaluate returns every definition whose conditions all hold for facts
// and whose key is absent from unlocked, in registry order. It never
// emits a key already present in unlocked, so re-evaluating the same
// qualifying state yields nothing new.
func (e *Evaluator) Evaluate(facts Facts, unlocked map[string]bool) ([]Definition, error) {
	var newly []Definition
	for _, def := range e.registry.All() {
		if unlocked[def.Key] {
			continue
		}
		qualifies, err := e.satisfied(def, facts)
		if err != nil {
			return nil, fmt.Errorf("achievement %q: %w", def.Key, err)
		}
		if qualifies {
			newly = append(newly, def)
		}
	}
	return newly, nil
}

// satisfied reports whether all of def's conditions hold simultaneously.
// An achievement with no conditions never qualifies.
func (e *Evaluator) satisfied(def Definition, facts Facts) (bool, error) {
	if len(def.Conditions) == 0 {
		return false, nil
	}
	for _, cond := range def.Conditions {
		ok, err := e.holds(cond, facts)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (e *Evaluator) holds(cond Condition, facts Facts) (bool, error) {
	switch cond.Kind {
	case KindTotalQuests:
		return facts.TotalQuests >= cond.Target, nil
	case KindQuestStreak:
		return facts.QuestStreak >= cond.Target, nil
	case KindStatLevel:
		return facts.StatLevels[cond.Stat] >= cond.Target, nil
	case KindRank:
		return facts.RankIndex >= cond.Target, nil
	case KindTotalRR:
		return facts.TotalRR >= cond.Target, nil
	case KindCustom:
		pred, ok := e.custom[cond.Name]
		if !ok {
			return false, fmt.Errorf("unknown custom predicate %q", cond.Name)
		}
		return pred(facts, cond.Target), nil
	default:
		return false, fmt.Errorf("unknown condition kind %q", cond.Kind)
	}
}

// BuiltinPredicates are the custom predicates the shipped registry
// references.
func BuiltinPredicates() map[string]Predicate {
	return map[string]Predicate{
		// balanced_build: every primary stat at or above the target level.
		"balanced_build": func(f Facts, target int) bool {
			for _, level := range f.StatLevels {
				if level < target {
					return false
				}
			}
			return len(f.StatLevels) > 0
		},
		// perfect_week: latest applied week completed at 100% or better.
		"perfect_week": func(f Facts, target int) bool {
			return f.LatestCompletion >= 100
		},
		// days_active: cumulative active days at or above the target.
		"days_active": func(f Facts, target int) bool {
			return f.DaysActive >= target
		},
	}
}
