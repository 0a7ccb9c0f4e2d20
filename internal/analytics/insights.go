package analytics

import (
	"fmt"
	"sort"

	"noctisium/internal/kpi"
)

// HighlightType tags a highlight for display.
type HighlightType string

const (
	HighlightAchievement HighlightType = "achievement"
	HighlightWarning     HighlightType = "warning"
	HighlightTrend       HighlightType = "trend"
	HighlightRecord      HighlightType = "record"
	HighlightStreak      HighlightType = "streak"
)

// Impact ranks a recommendation's expected payoff.
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// Highlight is a positive or cautionary callout derived from the data.
type Highlight struct {
	Type HighlightType
	Icon string
	Text string
}

// Recommendation is an actionable suggestion with an impact class.
type Recommendation struct {
	Impact Impact
	Icon   string
	Text   string
}

// insightInput bundles the precomputed signals the rules inspect.
type insightInput struct {
	trend   []TrendPoint
	streaks map[string]KPIStreaks
	records []PersonalRecord
	corrs   []Correlation
	latest  *kpi.WeekProgress
	names   map[string]string
}

// Insights runs every rule against the precomputed signals and returns
// all highlights and recommendations that fire. Rules are independent;
// selection and ranking are left to the caller.
func Insights(trend []TrendPoint, streaks map[string]KPIStreaks, records []PersonalRecord,
	corrs []Correlation, latest *kpi.WeekProgress, defs []kpi.Definition) ([]Highlight, []Recommendation) {

	in := insightInput{
		trend:   trend,
		streaks: streaks,
		records: records,
		corrs:   corrs,
		latest:  latest,
		names:   map[string]string{},
	}
	for _, d := range defs {
		in.names[d.ID] = d.Name
	}

	var highs []Highlight
	var recs []Recommendation
	highs = append(highs, streakHighlights(in)...)
	highs = append(highs, trendHighlights(in)...)
	highs = append(highs, recordHighlights(in)...)
	highs = append(highs, correlationHighlights(in)...)
	recs = append(recs, underperformanceRecs(in)...)
	recs = append(recs, momentumRecs(in)...)
	return highs, recs
}

func (in insightInput) name(id string) string {
	if n, ok := in.names[id]; ok && n != "" {
		return n
	}
	return id
}

// streakHighlights fires for every KPI with an ongoing streak of 3+ weeks.
func streakHighlights(in insightInput) []Highlight {
	var out []Highlight
	for _, id := range sortedKeys(in.streaks) {
		s := in.streaks[id]
		if s.Current.Length >= 3 {
			out = append(out, Highlight{
				Type: HighlightStreak,
				Icon: "🔥",
				Text: fmt.Sprintf("%s hit its target %d weeks in a row", in.name(id), s.Current.Length),
			})
		}
	}
	return out
}

// trendHighlights fires on a sustained upswing or a sharp drop in the
// latest week-over-week movement.
func trendHighlights(in insightInput) []Highlight {
	if len(in.trend) == 0 {
		return nil
	}
	last := in.trend[len(in.trend)-1]
	var out []Highlight
	// Delta rules need a previous week; the perfect-week rule does not.
	if len(in.trend) >= 2 {
		if last.Change >= 15 {
			out = append(out, Highlight{
				Type: HighlightTrend,
				Icon: "📈",
				Text: fmt.Sprintf("Completion jumped %.0f points to %.0f%% this week", last.Change, last.Completion),
			})
		}
		if last.Change <= -15 {
			out = append(out, Highlight{
				Type: HighlightWarning,
				Icon: "📉",
				Text: fmt.Sprintf("Completion dropped %.0f points to %.0f%% this week", -last.Change, last.Completion),
			})
		}
	}
	if last.Completion >= 100 {
		out = append(out, Highlight{
			Type: HighlightAchievement,
			Icon: "🏆",
			Text: "Perfect week: every KPI hit its target",
		})
	}
	return out
}

// recordHighlights fires when the most recent week set a personal record.
func recordHighlights(in insightInput) []Highlight {
	if len(in.trend) == 0 {
		return nil
	}
	latestWeek := in.trend[len(in.trend)-1].Week
	var out []Highlight
	for _, pr := range in.records {
		if pr.Week == latestWeek {
			out = append(out, Highlight{
				Type: HighlightRecord,
				Icon: "🥇",
				Text: fmt.Sprintf("New personal record for %s: %.4g", pr.Name, pr.Value),
			})
		}
	}
	return out
}

// correlationHighlights surfaces strong relationships worth knowing about.
func correlationHighlights(in insightInput) []Highlight {
	var out []Highlight
	for _, c := range in.corrs {
		if c.Strength != StrengthStrong {
			continue
		}
		direction := "rise together"
		if c.Coefficient < 0 {
			direction = "move in opposite directions"
		}
		out = append(out, Highlight{
			Type: HighlightTrend,
			Icon: "🔗",
			Text: fmt.Sprintf("%s and %s %s (r=%.2f)", in.name(c.KPIA), in.name(c.KPIB), direction, c.Coefficient),
		})
	}
	return out
}

// underperformanceRecs flags KPIs missed in the latest week, grading
// impact by how far short of target they fell.
func underperformanceRecs(in insightInput) []Recommendation {
	if in.latest == nil {
		return nil
	}
	var out []Recommendation
	for _, p := range in.latest.PerKPI {
		if p.Status != kpi.StatusMissed {
			continue
		}
		impact := ImpactMedium
		if p.Fraction < 0.25 {
			impact = ImpactHigh
		} else if p.Fraction >= 0.75 {
			impact = ImpactLow
		}
		out = append(out, Recommendation{
			Impact: impact,
			Icon:   "🎯",
			Text:   fmt.Sprintf("%s reached %.0f%% of target, try planning it earlier in the week", in.name(p.KPIID), p.Fraction*100),
		})
	}
	return out
}

// momentumRecs nudges the user to protect a long streak that is at risk
// after a down week.
func momentumRecs(in insightInput) []Recommendation {
	if len(in.trend) < 2 {
		return nil
	}
	last := in.trend[len(in.trend)-1]
	if last.Change >= 0 {
		return nil
	}
	var out []Recommendation
	for _, id := range sortedKeys(in.streaks) {
		s := in.streaks[id]
		if s.Current.Length >= 4 {
			out = append(out, Recommendation{
				Impact: ImpactMedium,
				Icon:   "🛡️",
				Text:   fmt.Sprintf("Protect the %d-week %s streak after a down week", s.Current.Length, in.name(id)),
			})
		}
	}
	return out
}

func sortedKeys(m map[string]KPIStreaks) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TopHighlights selects up to n highlights, preferring achievements and
// records over informational ones.
func TopHighlights(all []Highlight, n int) []Highlight {
	weight := map[HighlightType]int{
		HighlightAchievement: 0,
		HighlightRecord:      1,
		HighlightStreak:      2,
		HighlightWarning:     3,
		HighlightTrend:       4,
	}
	ranked := make([]Highlight, len(all))
	copy(ranked, all)
	sort.SliceStable(ranked, func(i, j int) bool {
		return weight[ranked[i].Type] < weight[ranked[j].Type]
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// TopRecommendations selects up to n recommendations by impact.
func TopRecommendations(all []Recommendation, n int) []Recommendation {
	weight := map[Impact]int{ImpactHigh: 0, ImpactMedium: 1, ImpactLow: 2}
	ranked := make([]Recommendation, len(all))
	copy(ranked, all)
	sort.SliceStable(ranked, func(i, j int) bool {
		return weight[ranked[i].Impact] < weight[ranked[j].Impact]
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
