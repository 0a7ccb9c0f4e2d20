package engine

import (
	"context"

	"noctisium/internal/analytics"
	"noctisium/internal/kpi"
)

// Analytics recomputes the full derived snapshot from the user's raw
// history. Nothing here is persisted.
func (s *Service) Analytics(ctx context.Context, user string) (*analytics.Snapshot, error) {
	records, defs, overrides, err := s.loadHistory(ctx, user)
	if err != nil {
		return nil, err
	}
	snap := analytics.Compute(records, defs, overrides)
	return &snap, nil
}

// WeekReport scores a single week for display.
func (s *Service) WeekReport(ctx context.Context, user string, week kpi.WeekKey) (*kpi.WeekProgress, error) {
	rec, err := s.records.GetWeek(ctx, user, week)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &kpi.WeeklyRecord{Week: week}
	}
	defs, err := s.kpis.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	overrides, err := s.records.ListOverrides(ctx, user)
	if err != nil {
		return nil, err
	}
	wp := kpi.ComputeWeek(*rec, defs, overrides[week.String()])
	return &wp, nil
}
