package engine

import (
	"context"

	"github.com/rs/zerolog/log"

	"noctisium/internal/achievement"
	"noctisium/internal/kpi"
	"noctisium/internal/progression"
	"noctisium/internal/storage"
)

// ProgressionSnapshot bundles everything the status view needs.
type ProgressionSnapshot struct {
	Level   int
	TotalXP int
	Stats   []progression.StatSnapshot
	Rank    progression.RankState
	// CritChance maps applied week keys to their informational
	// critical-hit probability.
	CritChance  map[string]float64
	WeeksLogged int
	DaysActive  int
}

// Progression assembles the user's current progression snapshot.
func (s *Service) Progression(ctx context.Context, user string) (*ProgressionSnapshot, error) {
	c, err := s.characters.GetOrCreate(ctx, user)
	if err != nil {
		return nil, err
	}

	snap := ProgressionSnapshot{
		Level:       c.State.Level(),
		TotalXP:     c.State.TotalXP,
		Rank:        progression.RankOf(c.State.RR, s.cfg.RankLadder),
		CritChance:  map[string]float64{},
		WeeksLogged: c.State.WeeksApplied,
		DaysActive:  c.DaysActive,
	}
	for _, stat := range progression.Stats {
		snap.Stats = append(snap.Stats, c.State.Snapshot(stat))
	}

	records, defs, overrides, err := s.loadHistory(ctx, user)
	if err != nil {
		return nil, err
	}
	applied, err := s.characters.AppliedWeeks(ctx, user)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		key := rec.Week.String()
		if !applied[key] {
			continue
		}
		wp := kpi.ComputeWeek(rec, defs, overrides[key])
		snap.CritChance[key] = progression.CritChance(wp.Completion, s.cfg.Crit)
	}
	return &snap, nil
}

// Unlocks returns the user's unlock records, most recent first. A
// record whose key is missing from the registry means the definition
// set and the store disagree; that is logged but the record is still
// returned so the history stays complete.
func (s *Service) Unlocks(ctx context.Context, user string) ([]storage.UnlockRecord, error) {
	recs, err := s.unlocks.List(ctx, user)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if _, ok := s.registry.Get(rec.AchievementKey); !ok {
			log.Warn().Str("achievement", rec.AchievementKey).
				Msg("unlock record references an unknown achievement")
		}
	}
	return recs, nil
}

// assembleFacts builds the aggregated snapshot achievement conditions
// are evaluated against.
func (s *Service) assembleFacts(ctx context.Context, user string, c *storage.Character) (achievement.Facts, error) {
	facts := achievement.Facts{
		TotalQuests: c.State.WeeksApplied,
		StatLevels:  map[progression.Stat]int{},
		RankIndex:   progression.TierIndex(progression.TierForRR(c.State.RR, s.cfg.RankLadder)),
		TotalRR:     c.State.RR,
		DaysActive:  c.DaysActive,
	}
	for _, stat := range progression.Stats {
		facts.StatLevels[stat] = c.State.StatLevel(stat)
	}

	applied, err := s.characters.AppliedWeeks(ctx, user)
	if err != nil {
		return facts, err
	}
	facts.QuestStreak = appliedStreak(applied)

	latest, ok, err := s.characters.LatestAppliedCompletion(ctx, user)
	if err != nil {
		return facts, err
	}
	if ok {
		facts.LatestCompletion = latest
	}
	return facts, nil
}

// appliedStreak counts the run of consecutive calendar weeks, ending at
// the most recent applied week, that were all applied.
func appliedStreak(applied map[string]bool) int {
	var latest kpi.WeekKey
	for key := range applied {
		wk, err := kpi.ParseWeekKey(key)
		if err != nil {
			continue
		}
		if latest.IsZero() || latest.Before(wk) {
			latest = wk
		}
	}
	if latest.IsZero() {
		return 0
	}

	streak := 0
	for wk := latest; applied[wk.String()]; wk = wk.Prev() {
		streak++
		if streak > len(applied) {
			break
		}
	}
	return streak
}
