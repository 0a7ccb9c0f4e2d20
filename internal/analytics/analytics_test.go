package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noctisium/internal/kpi"
)

func week(n int) kpi.WeekKey { return kpi.WeekKey{Year: 2025, Week: n} }

func progressSeries(completions ...float64) []kpi.WeekProgress {
	out := make([]kpi.WeekProgress, len(completions))
	for i, c := range completions {
		out[i] = kpi.WeekProgress{Week: week(i + 1), Completion: c}
	}
	return out
}

func TestTrendDeltasAndMonthlyAverage(t *testing.T) {
	points := Trend(progressSeries(40, 55, 70, 100))
	require.Len(t, points, 4)

	assert.Zero(t, points[0].Change, "first week has no predecessor")
	assert.InDelta(t, 15.0, points[1].Change, 1e-9)
	assert.InDelta(t, 30.0, points[3].Change, 1e-9)
	assert.InDelta(t, 66.25, points[3].MonthlyAvg, 1e-9)
	assert.Equal(t, 4, points[3].WindowWeeks)

	// Window is trailing: a fifth week drops the first.
	points = Trend(progressSeries(40, 55, 70, 100, 75))
	assert.InDelta(t, 75.0, points[4].MonthlyAvg, 1e-9)
}

func TestDistributionBoundaries(t *testing.T) {
	values := []float64{0, 20, 40, 60, 80, 100, 150}
	counts := Distribution(values)
	require.Len(t, counts, len(DistributionBuckets))

	total := 0
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, len(values), total, "no value dropped or double-counted")

	// Each boundary belongs to the bucket whose lower edge equals it;
	// 100 and 150 both land in the open-ended bucket.
	assert.Equal(t, []int{1, 1, 1, 1, 1, 2}, counts)
}

func TestPersonalRecordsFirstOccurrenceWins(t *testing.T) {
	defs := []kpi.Definition{{ID: "run", Name: "Running", Active: true, Target: 1, CountsTowardTotal: true}}
	records := []kpi.WeeklyRecord{
		{Week: week(1), Values: map[string]float64{"run": 12}},
		{Week: week(2), Values: map[string]float64{"run": 8}},
		{Week: week(3), Values: map[string]float64{"run": 12}}, // tie, must not displace
	}

	prs := PersonalRecords(records, defs)
	require.Len(t, prs, 1)
	assert.Equal(t, 12.0, prs[0].Value)
	assert.Equal(t, week(1), prs[0].Week)

	// A strictly greater value moves the record.
	records = append(records, kpi.WeeklyRecord{Week: week(4), Values: map[string]float64{"run": 13}})
	prs = PersonalRecords(records, defs)
	assert.Equal(t, 13.0, prs[0].Value)
	assert.Equal(t, week(4), prs[0].Week)
}

func corrFixture() ([]kpi.WeeklyRecord, []kpi.Definition) {
	defs := []kpi.Definition{
		{ID: "a", Name: "A", Active: true, Target: 1, CountsTowardTotal: true},
		{ID: "b", Name: "B", Active: true, Target: 1, CountsTowardTotal: true},
		{ID: "c", Name: "C", Active: true, Target: 1, CountsTowardTotal: true},
	}
	records := []kpi.WeeklyRecord{
		{Week: week(1), Values: map[string]float64{"a": 10, "b": 12, "c": 40}},
		{Week: week(2), Values: map[string]float64{"a": 20, "b": 18, "c": 31}},
		{Week: week(3), Values: map[string]float64{"a": 30, "b": 33, "c": 22}},
		{Week: week(4), Values: map[string]float64{"a": 40, "b": 41, "c": 10}},
	}
	return records, defs
}

func TestCorrelationsClassifyAndRank(t *testing.T) {
	records, defs := corrFixture()
	corrs := Correlations(records, defs)
	require.Len(t, corrs, 3) // a-b, a-c, b-c; no self pairs

	byPair := map[string]Correlation{}
	for _, c := range corrs {
		byPair[c.KPIA+"/"+c.KPIB] = c
		assert.NotEqual(t, c.KPIA, c.KPIB)
	}

	ab := byPair["a/b"]
	assert.Greater(t, ab.Coefficient, 0.95)
	assert.Equal(t, StrengthStrong, ab.Strength)
	assert.Equal(t, 4, ab.Weeks)

	ac := byPair["a/c"]
	assert.Less(t, ac.Coefficient, -0.9)
	assert.Equal(t, StrengthStrong, ac.Strength, "strength ignores sign")

	top := TopCorrelations(corrs, 1)
	require.Len(t, top, 1)

	top = TopCorrelations(corrs, 10)
	assert.Len(t, top, 3, "n larger than input returns everything")
}

func TestCorrelationsSkipSparseAndFlatPairs(t *testing.T) {
	defs := []kpi.Definition{
		{ID: "a", Active: true, Target: 1, CountsTowardTotal: true},
		{ID: "flat", Active: true, Target: 1, CountsTowardTotal: true},
		{ID: "sparse", Active: true, Target: 1, CountsTowardTotal: true},
	}
	records := []kpi.WeeklyRecord{
		{Week: week(1), Values: map[string]float64{"a": 1, "flat": 5}},
		{Week: week(2), Values: map[string]float64{"a": 2, "flat": 5, "sparse": 9}},
		{Week: week(3), Values: map[string]float64{"a": 3, "flat": 5}},
	}

	corrs := Correlations(records, defs)
	assert.Empty(t, corrs, "flat pair is undefined, sparse pair has <2 overlaps")
}

func TestStreaksFromRecords(t *testing.T) {
	defs := []kpi.Definition{{ID: "gym", Name: "Gym", Active: true, Target: 3, CountsTowardTotal: true}}
	// Compliance: true true false true true true.
	values := []float64{3, 4, 1, 3, 5, 3}
	records := make([]kpi.WeeklyRecord, len(values))
	for i, v := range values {
		records[i] = kpi.WeeklyRecord{Week: week(i + 1), Values: map[string]float64{"gym": v}}
	}

	streaks := Streaks(records, defs)
	s, ok := streaks["gym"]
	require.True(t, ok)
	assert.Equal(t, 3, s.Current.Length)
	assert.Equal(t, week(4), s.Current.StartWeek)
	assert.Equal(t, 3, s.Longest.Length)
	assert.True(t, s.Longest.EndWeek.IsZero(), "longest run is still ongoing")
}

func TestInsightsRulesFire(t *testing.T) {
	records, defs := corrFixture()
	snap := Compute(records, defs, nil)

	// Strong correlations must surface as highlights.
	var linked int
	for _, h := range snap.Highlights {
		if h.Type == HighlightTrend {
			linked++
		}
	}
	assert.Greater(t, linked, 0)

	// Ranking prefers high impact and respects n.
	recs := []Recommendation{
		{Impact: ImpactLow}, {Impact: ImpactHigh}, {Impact: ImpactMedium},
	}
	top := TopRecommendations(recs, 2)
	require.Len(t, top, 2)
	assert.Equal(t, ImpactHigh, top[0].Impact)
	assert.Equal(t, ImpactMedium, top[1].Impact)
}

func TestInsightsPerfectFirstWeek(t *testing.T) {
	trend := []TrendPoint{{Week: week(1), Completion: 100}}
	highs, _ := Insights(trend, nil, nil, nil, nil, nil)

	var perfect int
	for _, h := range highs {
		if h.Type == HighlightAchievement {
			perfect++
		}
	}
	assert.Equal(t, 1, perfect, "a lone perfect week still earns the callout")
}

func TestComputeDegradesOnEmptyHistory(t *testing.T) {
	snap := Compute(nil, nil, nil)
	assert.Empty(t, snap.Trend)
	assert.Empty(t, snap.Correlations)
	assert.Empty(t, snap.Records)
	assert.Empty(t, snap.Highlights)
	assert.Empty(t, snap.Recommendations)

	total := 0
	for _, c := range snap.Distribution {
		total += c
	}
	assert.Zero(t, total)
}
