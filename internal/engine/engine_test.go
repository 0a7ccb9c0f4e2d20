package engine

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"noctisium/internal/achievement"
	"noctisium/internal/kpi"
	"noctisium/internal/progression"
	"noctisium/internal/storage"
)

func newTestService(t *testing.T) (*Service, func()) {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	db, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	registry, err := achievement.DefaultRegistry()
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	svc, err := NewService(db, registry, progression.DefaultConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	// Deterministic clock so week-writability checks are stable.
	svc.now = func() time.Time { return time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC) }

	cleanup := func() {
		_ = db.Close()
	}
	return svc, cleanup
}

func seedKPIs(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	inputs := []CreateKPIInput{
		{ID: "workouts", Name: "Workouts", Category: kpi.CategoryFitness, Target: 4, CountsTowardTotal: true},
		{ID: "reading", Name: "Reading", Category: kpi.CategoryLearning, Target: 5, CountsTowardTotal: true},
		{ID: "sleep", Name: "Sleep on time", Category: kpi.CategoryHealth, Target: 7, Mode: kpi.DisplayDailyBreakdown, CountsTowardTotal: true},
	}
	for _, in := range inputs {
		if _, err := svc.CreateKPI(ctx, in); err != nil {
			t.Fatalf("CreateKPI %s: %v", in.ID, err)
		}
	}
}

func TestCreateKPIValidation(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := svc.CreateKPI(ctx, CreateKPIInput{ID: "Bad ID", Name: "x", Target: 1}); err == nil {
		t.Fatalf("expected error for invalid id")
	}
	if _, err := svc.CreateKPI(ctx, CreateKPIInput{ID: "ok", Name: "", Target: 1}); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if _, err := svc.CreateKPI(ctx, CreateKPIInput{ID: "ok", Name: "x", Target: 0}); err == nil {
		t.Fatalf("expected error for zero target")
	}

	if _, err := svc.CreateKPI(ctx, CreateKPIInput{ID: "ok", Name: "x", Target: 3}); err != nil {
		t.Fatalf("CreateKPI: %v", err)
	}
	if _, err := svc.CreateKPI(ctx, CreateKPIInput{ID: "ok", Name: "y", Target: 3}); err == nil {
		t.Fatalf("expected error for duplicate id")
	}
}

func TestLogValueAndWeekReport(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()
	seedKPIs(t, svc)

	week := kpi.WeekKeyOf(svc.now())
	user := storage.MainUserKey

	if err := svc.LogValue(ctx, user, week, "workouts", 4); err != nil {
		t.Fatalf("LogValue: %v", err)
	}
	if err := svc.LogValue(ctx, user, week, "reading", 2.5); err != nil {
		t.Fatalf("LogValue: %v", err)
	}
	if err := svc.LogValue(ctx, user, week, "nope", 1); err == nil {
		t.Fatalf("expected error for unknown KPI")
	}
	if err := svc.LogValue(ctx, user, week, "workouts", math.NaN()); err == nil {
		t.Fatalf("expected error for NaN value")
	}
	if err := svc.LogValue(ctx, user, week.Next(), "workouts", 1); err == nil {
		t.Fatalf("expected error for future week")
	} else {
		var fw FutureWeekError
		if !errors.As(err, &fw) {
			t.Fatalf("want FutureWeekError, got %v", err)
		}
	}

	// Daily breakdown sums into the weekly value.
	for i, v := range []float64{1, 1, 0, 1, 1, 0, 1} {
		if err := svc.LogDailyValue(ctx, user, week, "sleep", i, v); err != nil {
			t.Fatalf("LogDailyValue day %d: %v", i, err)
		}
	}
	if err := svc.LogDailyValue(ctx, user, week, "workouts", 0, 1); err == nil {
		t.Fatalf("expected error logging daily value on simple KPI")
	}

	wp, err := svc.WeekReport(ctx, user, week)
	if err != nil {
		t.Fatalf("WeekReport: %v", err)
	}
	// workouts 4/4 = 1.0, reading 2.5/5 = 0.5, sleep 5/7.
	want := (1.0 + 0.5 + 5.0/7.0) / 3 * 100
	if math.Abs(wp.Completion-want) > 1e-9 {
		t.Fatalf("completion=%v, want %v", wp.Completion, want)
	}
}

func TestApplyWeekIdempotentUnlocks(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()
	seedKPIs(t, svc)

	user := storage.MainUserKey
	week := kpi.WeekKeyOf(svc.now())

	if err := svc.LogValue(ctx, user, week, "workouts", 4); err != nil {
		t.Fatalf("LogValue: %v", err)
	}
	if err := svc.LogValue(ctx, user, week, "reading", 5); err != nil {
		t.Fatalf("LogValue: %v", err)
	}

	res, err := svc.ApplyWeek(ctx, user, week)
	if err != nil {
		t.Fatalf("ApplyWeek: %v", err)
	}
	if res.Report.RRGained <= 0 {
		t.Fatalf("expected RR gain, got %d", res.Report.RRGained)
	}

	unlockedKeys := map[string]bool{}
	for _, u := range res.Unlocks {
		unlockedKeys[u.Key] = true
	}
	if !unlockedKeys["first_week"] {
		t.Fatalf("expected first_week unlock, got %v", res.Unlocks)
	}

	c, err := svc.CharacterRepo().GetOrCreate(ctx, user)
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	rrAfterFirst := c.State.RR

	// Re-applying the same week must fail and change nothing.
	if _, err := svc.ApplyWeek(ctx, user, week); err == nil {
		t.Fatalf("expected WeekAlreadyAppliedError")
	} else {
		var dup WeekAlreadyAppliedError
		if !errors.As(err, &dup) {
			t.Fatalf("want WeekAlreadyAppliedError, got %v", err)
		}
	}

	// Re-evaluating the same qualifying state yields no new events and
	// no double reward.
	again, err := svc.EvaluateAchievements(ctx, user)
	if err != nil {
		t.Fatalf("EvaluateAchievements: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no new unlocks, got %v", again)
	}
	c, err = svc.CharacterRepo().GetOrCreate(ctx, user)
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	if c.State.RR != rrAfterFirst {
		t.Fatalf("RR changed on re-evaluation: %d -> %d", rrAfterFirst, c.State.RR)
	}

	// Exactly one unlock record exists for first_week.
	recs, err := svc.UnlockRepo().List(ctx, user)
	if err != nil {
		t.Fatalf("list unlocks: %v", err)
	}
	count := 0
	for _, r := range recs {
		if r.AchievementKey == "first_week" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("first_week unlock records = %d, want 1", count)
	}
}

func TestApplyWeekFailedCreditLeavesWeekUnapplied(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()
	seedKPIs(t, svc)

	user := storage.MainUserKey
	week := kpi.WeekKeyOf(svc.now())
	if err := svc.LogValue(ctx, user, week, "workouts", 4); err != nil {
		t.Fatalf("LogValue: %v", err)
	}

	// Block the credit step mid-apply; the applied-week marker must
	// roll back with it.
	if _, err := svc.db.ExecContext(ctx, `
		CREATE TRIGGER block_character_update BEFORE UPDATE ON characters
		BEGIN SELECT RAISE(ABORT, 'characters locked'); END
	`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}
	if _, err := svc.ApplyWeek(ctx, user, week); err == nil {
		t.Fatalf("expected apply to fail with updates blocked")
	} else {
		var dup WeekAlreadyAppliedError
		if errors.As(err, &dup) {
			t.Fatalf("failed apply reported as already applied: %v", err)
		}
	}

	applied, err := svc.CharacterRepo().AppliedWeeks(ctx, user)
	if err != nil {
		t.Fatalf("applied weeks: %v", err)
	}
	if applied[week.String()] {
		t.Fatalf("week %s marked applied after failed credit", week)
	}

	// Once the fault clears, the retry credits the week normally.
	if _, err := svc.db.ExecContext(ctx, `DROP TRIGGER block_character_update`); err != nil {
		t.Fatalf("drop trigger: %v", err)
	}
	res, err := svc.ApplyWeek(ctx, user, week)
	if err != nil {
		t.Fatalf("retry ApplyWeek: %v", err)
	}
	if res.Report.RRGained <= 0 {
		t.Fatalf("expected RR gain on retry, got %d", res.Report.RRGained)
	}
}

func TestApplyWeekBuildsStreakFacts(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()
	seedKPIs(t, svc)

	user := storage.MainUserKey
	current := kpi.WeekKeyOf(svc.now())
	weeks := []kpi.WeekKey{current.Prev().Prev(), current.Prev(), current}

	for _, wk := range weeks {
		if err := svc.LogValue(ctx, user, wk, "workouts", 4); err != nil {
			t.Fatalf("LogValue %s: %v", wk, err)
		}
		if _, err := svc.ApplyWeek(ctx, user, wk); err != nil {
			t.Fatalf("ApplyWeek %s: %v", wk, err)
		}
	}

	c, err := svc.CharacterRepo().GetOrCreate(ctx, user)
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	facts, err := svc.assembleFacts(ctx, user, c)
	if err != nil {
		t.Fatalf("assembleFacts: %v", err)
	}
	if facts.TotalQuests != 3 {
		t.Fatalf("TotalQuests=%d, want 3", facts.TotalQuests)
	}
	if facts.QuestStreak != 3 {
		t.Fatalf("QuestStreak=%d, want 3", facts.QuestStreak)
	}

	// The three-week streak achievement must be on the books now.
	unlocked, err := svc.UnlockRepo().UnlockedSet(ctx, user)
	if err != nil {
		t.Fatalf("unlocked set: %v", err)
	}
	if !unlocked["streak_3"] {
		t.Fatalf("expected streak_3 unlocked")
	}
}

func TestProgressionSnapshot(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()
	seedKPIs(t, svc)

	user := storage.MainUserKey
	week := kpi.WeekKeyOf(svc.now())
	if err := svc.LogValue(ctx, user, week, "workouts", 4); err != nil {
		t.Fatalf("LogValue: %v", err)
	}
	if err := svc.LogValue(ctx, user, week, "reading", 5); err != nil {
		t.Fatalf("LogValue: %v", err)
	}
	if _, err := svc.ApplyWeek(ctx, user, week); err != nil {
		t.Fatalf("ApplyWeek: %v", err)
	}

	snap, err := svc.Progression(ctx, user)
	if err != nil {
		t.Fatalf("Progression: %v", err)
	}
	if len(snap.Stats) != len(progression.Stats) {
		t.Fatalf("stats=%d, want %d", len(snap.Stats), len(progression.Stats))
	}
	if snap.WeeksLogged != 1 {
		t.Fatalf("WeeksLogged=%d, want 1", snap.WeeksLogged)
	}
	if _, ok := snap.CritChance[week.String()]; !ok {
		t.Fatalf("expected crit chance entry for %s", week)
	}
	if snap.Rank.Tier != progression.TierBronze {
		t.Fatalf("tier=%s, want bronze", snap.Rank.Tier)
	}
}

func TestDisabledKPIDropsFromAggregate(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()
	seedKPIs(t, svc)

	user := storage.MainUserKey
	week := kpi.WeekKeyOf(svc.now())
	if err := svc.LogValue(ctx, user, week, "workouts", 4); err != nil {
		t.Fatalf("LogValue: %v", err)
	}

	before, err := svc.WeekReport(ctx, user, week)
	if err != nil {
		t.Fatalf("WeekReport: %v", err)
	}

	// Disabling the two unmet KPIs can only raise the aggregate.
	if err := svc.DisableKPI(ctx, "reading"); err != nil {
		t.Fatalf("DisableKPI: %v", err)
	}
	if err := svc.DisableKPI(ctx, "sleep"); err != nil {
		t.Fatalf("DisableKPI: %v", err)
	}
	after, err := svc.WeekReport(ctx, user, week)
	if err != nil {
		t.Fatalf("WeekReport: %v", err)
	}
	if after.Completion < before.Completion {
		t.Fatalf("completion fell after disabling unmet KPIs: %v -> %v", before.Completion, after.Completion)
	}
	if after.Completion != 100 {
		t.Fatalf("completion=%v, want 100 with only workouts active", after.Completion)
	}
}
