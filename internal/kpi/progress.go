package kpi

import "math"

// Status classifies one KPI's week against its target.
type Status string

const (
	StatusMet     Status = "met"
	StatusPartial Status = "partial"
	StatusMissed  Status = "missed"
)

// Progress is one KPI's contribution to a week.
type Progress struct {
	KPIID    string
	Value    float64
	Target   float64
	Fraction float64 // clamp(value/target, 0, 1)
	Status   Status
}

// WeekProgress is the calculator's output for one week.
type WeekProgress struct {
	Week WeekKey
	// PerKPI holds every scored KPI, including ones excluded from the
	// aggregate, ordered by definition sort order.
	PerKPI []Progress
	// Completion is the aggregate percentage in [0, 100] over active,
	// counting KPIs only.
	Completion float64
	// ByCategory is the mean completion percentage per category, over
	// the same KPI set that feeds Completion.
	ByCategory map[Category]float64
}

// ComputeWeek scores one week's raw values against the given definitions.
// Inactive definitions are ignored; values with no matching definition are
// orphaned data points and skipped; non-finite values are treated as
// invalid input and skipped. Overrides, when non-nil, replace a KPI's
// target for this week only. A week with no scorable KPIs completes at 0.
func ComputeWeek(record WeeklyRecord, defs []Definition, overrides map[string]float64) WeekProgress {
	out := WeekProgress{Week: record.Week, ByCategory: map[Category]float64{}}

	catSum := map[Category]float64{}
	catN := map[Category]int{}
	sum := 0.0
	counted := 0

	for _, def := range defs {
		if !def.Active {
			continue
		}
		value, present := record.Values[def.ID]
		if !present {
			value = 0
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		target := def.Target
		if ov, ok := overrides[def.ID]; ok && ov > 0 {
			target = ov
		}
		if target <= 0 {
			continue
		}

		p := Progress{
			KPIID:    def.ID,
			Value:    value,
			Target:   target,
			Fraction: clamp01(value / target),
			Status:   classify(value, target, def.MinTarget),
		}
		out.PerKPI = append(out.PerKPI, p)

		if !def.CountsTowardTotal {
			continue
		}
		sum += p.Fraction
		counted++
		catSum[def.Category] += p.Fraction
		catN[def.Category]++
	}

	if counted > 0 {
		out.Completion = sum / float64(counted) * 100
	}
	for cat, s := range catSum {
		out.ByCategory[cat] = s / float64(catN[cat]) * 100
	}
	return out
}

func classify(value, target float64, minTarget *float64) Status {
	if value >= target {
		return StatusMet
	}
	if minTarget != nil && value >= *minTarget {
		return StatusPartial
	}
	return StatusMissed
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
