package analytics

import (
	"noctisium/internal/kpi"
	"noctisium/internal/timeseries"
)

// StreakType distinguishes an ongoing streak from a completed one.
type StreakType string

const (
	StreakCurrent    StreakType = "current"
	StreakHistorical StreakType = "historical"
)

// Streak is a maximal run of consecutive weeks meeting a KPI's target.
type Streak struct {
	Type      StreakType
	Length    int
	StartWeek kpi.WeekKey
	EndWeek   kpi.WeekKey // zero for an ongoing streak
}

// KPIStreaks summarizes one KPI's compliance runs.
type KPIStreaks struct {
	KPIID   string
	Current Streak
	Longest Streak
}

// complianceSeries marks, oldest first, whether each week met the KPI's
// target. Weeks with no value recorded count as non-compliant.
func complianceSeries(records []kpi.WeeklyRecord, def kpi.Definition) []bool {
	series := make([]bool, len(records))
	for i, rec := range records {
		v, ok := rec.Values[def.ID]
		series[i] = ok && def.Target > 0 && v >= def.Target
	}
	return series
}

// Streaks computes current and longest target streaks per active KPI
// over the ordered (oldest first) record history.
func Streaks(records []kpi.WeeklyRecord, defs []kpi.Definition) map[string]KPIStreaks {
	out := make(map[string]KPIStreaks, len(defs))
	for _, def := range defs {
		if !def.Active {
			continue
		}
		series := complianceSeries(records, def)

		entry := KPIStreaks{KPIID: def.ID}
		if cur := timeseries.CurrentStreak(series); cur > 0 {
			entry.Current = Streak{
				Type:      StreakCurrent,
				Length:    cur,
				StartWeek: records[len(records)-cur].Week,
			}
		}
		if run, ok := timeseries.LongestRun(series); ok {
			entry.Longest = Streak{
				Type:      StreakHistorical,
				Length:    run.Length,
				StartWeek: records[run.Start].Week,
				EndWeek:   records[run.End].Week,
			}
			// The trailing run has no end yet.
			if run.End == len(records)-1 {
				entry.Longest.Type = StreakCurrent
				entry.Longest.EndWeek = kpi.WeekKey{}
			}
		}
		out[def.ID] = entry
	}
	return out
}
