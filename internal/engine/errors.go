package engine

import (
	"fmt"

	"noctisium/internal/kpi"
)

// FutureWeekError rejects writes to weeks that have not started yet.
type FutureWeekError struct {
	Week kpi.WeekKey
}

func (e FutureWeekError) Error() string {
	return fmt.Sprintf("week %s has not started yet", e.Week)
}

// WeekAlreadyAppliedError signals an attempt to fold the same week into
// the progression state twice.
type WeekAlreadyAppliedError struct {
	Week kpi.WeekKey
}

func (e WeekAlreadyAppliedError) Error() string {
	return fmt.Sprintf("week %s is already applied", e.Week)
}

// RewardError wraps a failed reward application. Rewards must never be
// dropped silently, so this always surfaces to the caller.
type RewardError struct {
	AchievementKey string
	Err            error
}

func (e RewardError) Error() string {
	return fmt.Sprintf("apply reward for %q: %v", e.AchievementKey, e.Err)
}

func (e RewardError) Unwrap() error { return e.Err }
