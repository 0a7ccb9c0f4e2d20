package engine

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"noctisium/internal/kpi"
)

// Weekday indexes Monday..Sunday for daily-breakdown values.
var weekdayIndex = map[string]int{
	"mon": 0, "tue": 1, "wed": 2, "thu": 3, "fri": 4, "sat": 5, "sun": 6,
}

// ParseWeekday resolves a short weekday name to its Monday-based index.
func ParseWeekday(input string) (int, error) {
	idx, ok := weekdayIndex[strings.ToLower(strings.TrimSpace(input))]
	if !ok {
		return 0, fmt.Errorf("invalid weekday %q (want mon..sun)", input)
	}
	return idx, nil
}

// LogValue writes one KPI's weekly value, creating the week record
// lazily on first write. Writes to future weeks are rejected; corrective
// edits to the current or past weeks are allowed.
func (s *Service) LogValue(ctx context.Context, user string, week kpi.WeekKey, kpiID string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("value for %q is not finite", kpiID)
	}
	if err := s.checkWeekWritable(week); err != nil {
		return err
	}

	def, err := s.kpis.Get(ctx, kpiID)
	if err != nil {
		return err
	}
	if def == nil {
		return fmt.Errorf("KPI %q not found", kpiID)
	}

	rec, err := s.records.GetWeek(ctx, user, week)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = &kpi.WeeklyRecord{Week: week, Values: map[string]float64{}, Daily: map[string][7]float64{}}
	}
	rec.Values[kpiID] = value

	if err := s.records.UpsertWeek(ctx, user, rec); err != nil {
		return err
	}
	if err := s.touchActivity(ctx, user); err != nil {
		return err
	}
	log.Debug().Str("week", week.String()).Str("kpi", kpiID).Float64("value", value).Msg("value logged")
	return nil
}

// LogDailyValue writes one day's contribution for a daily-breakdown KPI
// and recomputes the weekly total as the sum of the seven days.
func (s *Service) LogDailyValue(ctx context.Context, user string, week kpi.WeekKey, kpiID string, dayIndex int, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("value for %q is not finite", kpiID)
	}
	if dayIndex < 0 || dayIndex > 6 {
		return fmt.Errorf("day index %d out of range", dayIndex)
	}
	if err := s.checkWeekWritable(week); err != nil {
		return err
	}

	def, err := s.kpis.Get(ctx, kpiID)
	if err != nil {
		return err
	}
	if def == nil {
		return fmt.Errorf("KPI %q not found", kpiID)
	}
	if def.Mode != kpi.DisplayDailyBreakdown {
		return fmt.Errorf("KPI %q does not use a daily breakdown", kpiID)
	}

	rec, err := s.records.GetWeek(ctx, user, week)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = &kpi.WeeklyRecord{Week: week, Values: map[string]float64{}, Daily: map[string][7]float64{}}
	}

	days := rec.Daily[kpiID]
	days[dayIndex] = value
	rec.Daily[kpiID] = days

	total := 0.0
	for _, v := range days {
		total += v
	}
	rec.Values[kpiID] = total

	if err := s.records.UpsertWeek(ctx, user, rec); err != nil {
		return err
	}
	return s.touchActivity(ctx, user)
}

// SetWeekTarget records a one-week target override for a KPI.
func (s *Service) SetWeekTarget(ctx context.Context, user string, week kpi.WeekKey, kpiID string, target float64) error {
	if target <= 0 {
		return fmt.Errorf("override target must be positive, got %v", target)
	}
	def, err := s.kpis.Get(ctx, kpiID)
	if err != nil {
		return err
	}
	if def == nil {
		return fmt.Errorf("KPI %q not found", kpiID)
	}
	return s.records.SetOverride(ctx, user, week, kpiID, target)
}

func (s *Service) checkWeekWritable(week kpi.WeekKey) error {
	current := kpi.WeekKeyOf(s.now())
	if current.Before(week) {
		return FutureWeekError{Week: week}
	}
	return nil
}

// touchActivity bumps the days-active counter at most once per calendar
// day.
func (s *Service) touchActivity(ctx context.Context, user string) error {
	c, err := s.characters.GetOrCreate(ctx, user)
	if err != nil {
		return err
	}
	today := s.now().Format("2006-01-02")
	if c.LastActiveDay == today {
		return nil
	}
	c.LastActiveDay = today
	c.DaysActive++
	return s.characters.Update(ctx, c)
}

// record fetching shared by the analytics and progression paths.
func (s *Service) loadHistory(ctx context.Context, user string) ([]kpi.WeeklyRecord, []kpi.Definition, map[string]map[string]float64, error) {
	records, err := s.records.ListAll(ctx, user)
	if err != nil {
		return nil, nil, nil, err
	}
	defs, err := s.kpis.ListAll(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	overrides, err := s.records.ListOverrides(ctx, user)
	if err != nil {
		return nil, nil, nil, err
	}
	return records, defs, overrides, nil
}
