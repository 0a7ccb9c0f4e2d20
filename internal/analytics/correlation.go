package analytics

import (
	"math"
	"sort"

	"noctisium/internal/kpi"
	"noctisium/internal/timeseries"
)

// Strength classifies the magnitude of a correlation coefficient.
type Strength string

const (
	StrengthStrong   Strength = "strong"   // |r| >= 0.7
	StrengthModerate Strength = "moderate" // |r| >= 0.4
	StrengthWeak     Strength = "weak"
)

func classifyStrength(r float64) Strength {
	abs := math.Abs(r)
	switch {
	case abs >= 0.7:
		return StrengthStrong
	case abs >= 0.4:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

// Correlation relates an unordered pair of KPIs across their shared weeks.
type Correlation struct {
	KPIA        string
	KPIB        string
	Coefficient float64
	Strength    Strength
	Weeks       int // overlapping sample size
}

// Correlations computes Pearson correlation for every unordered pair of
// active KPIs with at least two overlapping weeks of data. Pairs whose
// correlation is undefined (zero variance, too few points) are omitted.
// Output order follows definition order, so it is deterministic.
func Correlations(records []kpi.WeeklyRecord, defs []kpi.Definition) []Correlation {
	ids := make([]string, 0, len(defs))
	for _, d := range defs {
		if d.Active {
			ids = append(ids, d.ID)
		}
	}

	var out []Correlation
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := alignedSeries(records, ids[i], ids[j])
			if len(a) < 2 {
				continue
			}
			r, ok := timeseries.Pearson(a, b)
			if !ok {
				continue
			}
			out = append(out, Correlation{
				KPIA:        ids[i],
				KPIB:        ids[j],
				Coefficient: r,
				Strength:    classifyStrength(r),
				Weeks:       len(a),
			})
		}
	}
	return out
}

// alignedSeries collects the paired values for the weeks where both KPIs
// have a recorded value.
func alignedSeries(records []kpi.WeeklyRecord, idA, idB string) (a, b []float64) {
	for _, rec := range records {
		va, okA := rec.Values[idA]
		vb, okB := rec.Values[idB]
		if !okA || !okB {
			continue
		}
		a = append(a, va)
		b = append(b, vb)
	}
	return a, b
}

// TopCorrelations returns the n strongest correlations by |coefficient|,
// breaking ties by original (insertion) order. The input is not modified.
func TopCorrelations(all []Correlation, n int) []Correlation {
	ranked := make([]Correlation, len(all))
	copy(ranked, all)
	sort.SliceStable(ranked, func(i, j int) bool {
		return math.Abs(ranked[i].Coefficient) > math.Abs(ranked[j].Coefficient)
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
