package achievement

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed definitions.yaml
var defaultDefinitions []byte

// Registry holds the validated achievement definition set in display
// order.
type Registry struct {
	defs []Definition
}

// LoadRegistry parses and validates a YAML definition set. customNames
// are the predicate names KindCustom conditions may reference.
func LoadRegistry(data []byte, customNames map[string]Predicate) (*Registry, error) {
	var doc struct {
		Achievements []Definition `yaml:"achievements"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse achievement definitions: %w", err)
	}
	if len(doc.Achievements) == 0 {
		return nil, fmt.Errorf("achievement definitions: empty set")
	}

	seen := map[string]bool{}
	for i, def := range doc.Achievements {
		if def.Key == "" {
			return nil, fmt.Errorf("achievement #%d: missing key", i)
		}
		if seen[def.Key] {
			return nil, fmt.Errorf("achievement %q: duplicate key", def.Key)
		}
		seen[def.Key] = true
		if def.Title == "" {
			return nil, fmt.Errorf("achievement %q: missing title", def.Key)
		}
		if !def.Rarity.IsValid() {
			return nil, fmt.Errorf("achievement %q: invalid rarity %q", def.Key, def.Rarity)
		}
		if len(def.Conditions) == 0 {
			return nil, fmt.Errorf("achievement %q: no conditions", def.Key)
		}
		for _, cond := range def.Conditions {
			if err := validateCondition(cond, customNames); err != nil {
				return nil, fmt.Errorf("achievement %q: %w", def.Key, err)
			}
		}
		for stat := range def.Reward.StatXP {
			if !stat.IsValid() {
				return nil, fmt.Errorf("achievement %q: reward references unknown stat %q", def.Key, stat)
			}
		}
	}

	defs := doc.Achievements
	sort.SliceStable(defs, func(i, j int) bool { return defs[i].Order < defs[j].Order })
	return &Registry{defs: defs}, nil
}

// DefaultRegistry loads the embedded definition set against the builtin
// predicates.
func DefaultRegistry() (*Registry, error) {
	return LoadRegistry(defaultDefinitions, BuiltinPredicates())
}

func validateCondition(cond Condition, customNames map[string]Predicate) error {
	if !cond.Kind.IsValid() {
		return fmt.Errorf("invalid condition kind %q", cond.Kind)
	}
	switch cond.Kind {
	case KindStatLevel:
		if !cond.Stat.IsValid() {
			return fmt.Errorf("stat_level condition needs a valid stat, got %q", cond.Stat)
		}
	case KindCustom:
		if cond.Name == "" {
			return fmt.Errorf("custom condition needs a predicate name")
		}
		if _, ok := customNames[cond.Name]; !ok {
			return fmt.Errorf("custom condition references unknown predicate %q", cond.Name)
		}
	}
	if cond.Kind != KindCustom && cond.Target < 0 {
		return fmt.Errorf("condition target must be non-negative, got %d", cond.Target)
	}
	return nil
}

// All returns the definitions in display order. The slice is shared;
// callers must not modify it.
func (r *Registry) All() []Definition {
	return r.defs
}

// Get looks a definition up by key.
func (r *Registry) Get(key string) (Definition, bool) {
	for _, def := range r.defs {
		if def.Key == key {
			return def, true
		}
	}
	return Definition{}, false
}

// Len reports the number of definitions.
func (r *Registry) Len() int { return len(r.defs) }

// Visible filters out hidden achievements that are not in the unlocked
// set. Hidden affects display only, never evaluation.
func (r *Registry) Visible(unlocked map[string]bool) []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, def := range r.defs {
		if def.Hidden && !unlocked[def.Key] {
			continue
		}
		out = append(out, def)
	}
	return out
}
