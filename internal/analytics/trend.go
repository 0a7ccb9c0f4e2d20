package analytics

import (
	"noctisium/internal/kpi"
	"noctisium/internal/timeseries"
)

// TrendPoint is one week's completion with its week-over-week movement.
type TrendPoint struct {
	Week        kpi.WeekKey
	Completion  float64
	Change      float64 // completion minus previous week; 0 for the first week
	MonthlyAvg  float64 // mean over the trailing 4-week window ending here
	WindowWeeks int     // how many weeks the window actually held
}

// monthlyWindow is the trailing window used for the rolling average.
const monthlyWindow = 4

// Trend derives per-week deltas and trailing averages from an ordered
// (oldest first) sequence of week completions.
func Trend(weeks []kpi.WeekProgress) []TrendPoint {
	points := make([]TrendPoint, 0, len(weeks))
	for i, w := range weeks {
		p := TrendPoint{Week: w.Week, Completion: w.Completion}
		if i > 0 {
			p.Change = w.Completion - weeks[i-1].Completion
		}

		start := i - monthlyWindow + 1
		if start < 0 {
			start = 0
		}
		window := make([]float64, 0, monthlyWindow)
		for _, prev := range weeks[start : i+1] {
			window = append(window, prev.Completion)
		}
		p.MonthlyAvg = timeseries.Mean(window)
		p.WindowWeeks = len(window)

		points = append(points, p)
	}
	return points
}

// DistributionBuckets are the fixed score histogram edges. Values land in
// the bucket whose lower edge equals them; the final bucket is open-ended
// and also catches exactly 100.
var DistributionBuckets = []string{"0-19", "20-39", "40-59", "60-79", "80-99", "100+"}

// Distribution counts week completions into the fixed buckets. The counts
// always sum to len(completions).
func Distribution(completions []float64) []int {
	counts := make([]int, len(DistributionBuckets))
	for _, v := range completions {
		idx := 0
		switch {
		case v >= 100:
			idx = 5
		case v >= 80:
			idx = 4
		case v >= 60:
			idx = 3
		case v >= 40:
			idx = 2
		case v >= 20:
			idx = 1
		}
		counts[idx]++
	}
	return counts
}

// PersonalRecord is the best raw value ever recorded for one KPI.
type PersonalRecord struct {
	KPIID string
	Name  string
	Value float64
	Week  kpi.WeekKey
}

// PersonalRecords extracts, per active KPI, the maximum raw value across
// all records. Only strictly greater values displace a record, so ties
// keep the earliest week.
func PersonalRecords(records []kpi.WeeklyRecord, defs []kpi.Definition) []PersonalRecord {
	names := map[string]string{}
	order := make([]string, 0, len(defs))
	for _, d := range defs {
		if !d.Active {
			continue
		}
		names[d.ID] = d.Name
		order = append(order, d.ID)
	}

	best := map[string]PersonalRecord{}
	for _, rec := range records {
		for id, v := range rec.Values {
			name, known := names[id]
			if !known {
				continue
			}
			cur, seen := best[id]
			if !seen || v > cur.Value {
				best[id] = PersonalRecord{KPIID: id, Name: name, Value: v, Week: rec.Week}
			}
		}
	}

	out := make([]PersonalRecord, 0, len(best))
	for _, id := range order {
		if pr, ok := best[id]; ok {
			out = append(out, pr)
		}
	}
	return out
}
