package analytics

import "noctisium/internal/kpi"

// Snapshot bundles every derived analytics view for one user. It is
// recomputed on demand from the raw records and never persisted.
type Snapshot struct {
	Trend           []TrendPoint
	Correlations    []Correlation
	Streaks         map[string]KPIStreaks
	Distribution    []int
	Records         []PersonalRecord
	Highlights      []Highlight
	Recommendations []Recommendation
}

// Compute derives a full snapshot from ordered (oldest first) weekly
// records, the KPI definitions, and optional per-week target overrides.
// Every layer degrades to an empty result on insufficient history.
func Compute(records []kpi.WeeklyRecord, defs []kpi.Definition, overrides map[string]map[string]float64) Snapshot {
	weeks := make([]kpi.WeekProgress, 0, len(records))
	completions := make([]float64, 0, len(records))
	for _, rec := range records {
		wp := kpi.ComputeWeek(rec, defs, overrides[rec.Week.String()])
		weeks = append(weeks, wp)
		completions = append(completions, wp.Completion)
	}

	var latest *kpi.WeekProgress
	if len(weeks) > 0 {
		latest = &weeks[len(weeks)-1]
	}

	snap := Snapshot{
		Trend:        Trend(weeks),
		Correlations: Correlations(records, defs),
		Streaks:      Streaks(records, defs),
		Distribution: Distribution(completions),
		Records:      PersonalRecords(records, defs),
	}
	snap.Highlights, snap.Recommendations = Insights(
		snap.Trend, snap.Streaks, snap.Records, snap.Correlations, latest, defs)
	return snap
}
