package engine

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"noctisium/internal/achievement"
	"noctisium/internal/kpi"
	"noctisium/internal/progression"
	"noctisium/internal/storage"
)

// ApplyResult reports what applying one week changed, including any
// achievement unlocks it triggered.
type ApplyResult struct {
	Report  progression.ApplyReport
	Unlocks []achievement.Unlock
}

// ApplyWeek folds one recorded week into the user's progression state
// and evaluates achievements. Each week applies at most once; a second
// call returns WeekAlreadyAppliedError. The whole read-decide-write
// sequence holds the per-user lock, so concurrent evaluations can never
// both decide to unlock the same achievement.
func (s *Service) ApplyWeek(ctx context.Context, user string, week kpi.WeekKey) (*ApplyResult, error) {
	lock := s.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	if err := s.checkWeekWritable(week); err != nil {
		return nil, err
	}

	records, defs, overrides, err := s.loadHistory(ctx, user)
	if err != nil {
		return nil, err
	}
	var rec *kpi.WeeklyRecord
	for i := range records {
		if records[i].Week == week {
			rec = &records[i]
			break
		}
	}
	if rec == nil {
		rec = &kpi.WeeklyRecord{Week: week}
	}
	weekProgress := kpi.ComputeWeek(*rec, defs, overrides[week.String()])

	c, err := s.characters.GetOrCreate(ctx, user)
	if err != nil {
		return nil, err
	}

	next, report := progression.ApplyWeek(c.State, weekProgress, s.cfg)

	// The applied-week marker and the credited state commit together:
	// a failed update must leave the week unapplied so a retry can
	// still credit it.
	updated := *c
	updated.State = next
	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := storage.NewCharacterRepo(tx)
		fresh, err := repo.MarkWeekApplied(ctx, user, week, weekProgress.Completion)
		if err != nil {
			return err
		}
		if !fresh {
			return WeekAlreadyAppliedError{Week: week}
		}
		return repo.Update(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}
	c.State = next
	log.Info().Str("week", week.String()).
		Float64("completion", weekProgress.Completion).
		Int("rr_gained", report.RRGained).
		Bool("level_up", report.LevelUp).
		Msg("week applied")

	unlocks, err := s.evaluateLocked(ctx, user, c)
	if err != nil {
		return nil, err
	}
	return &ApplyResult{Report: report, Unlocks: unlocks}, nil
}

// EvaluateAchievements runs the unlock protocol against the current
// state without applying a week. It returns the newly fired unlock
// events, empty when nothing new qualifies.
func (s *Service) EvaluateAchievements(ctx context.Context, user string) ([]achievement.Unlock, error) {
	lock := s.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	c, err := s.characters.GetOrCreate(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.evaluateLocked(ctx, user, c)
}

// evaluateLocked runs read unlock records -> decide -> write unlock
// record + apply reward. Callers must hold the user lock.
func (s *Service) evaluateLocked(ctx context.Context, user string, c *storage.Character) ([]achievement.Unlock, error) {
	unlocked, err := s.unlocks.UnlockedSet(ctx, user)
	if err != nil {
		return nil, err
	}
	facts, err := s.assembleFacts(ctx, user, c)
	if err != nil {
		return nil, err
	}

	newly, err := s.evaluator.Evaluate(facts, unlocked)
	if err != nil {
		return nil, err
	}
	if len(newly) == 0 {
		return nil, nil
	}

	now := s.now()
	events := make([]achievement.Unlock, 0, len(newly))

	// Unlock record and reward land in one transaction per achievement:
	// either both persist or neither does.
	for _, def := range newly {
		rewarded := progression.ApplyReward(c.State, def.Reward.RR, def.Reward.StatXP)
		err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			if err := storage.NewUnlockRepo(tx).Insert(ctx, storage.UnlockRecord{
				UserKey:        user,
				AchievementKey: def.Key,
				UnlockedAt:     now,
				RRAwarded:      def.Reward.RR,
			}); err != nil {
				return err
			}
			updated := *c
			updated.State = rewarded
			return storage.NewCharacterRepo(tx).Update(ctx, &updated)
		})
		if err != nil {
			return events, RewardError{AchievementKey: def.Key, Err: err}
		}
		c.State = rewarded
		log.Info().Str("achievement", def.Key).Int("rr", def.Reward.RR).Msg("achievement unlocked")
		events = append(events, achievement.Unlock{Key: def.Key, Definition: def, UnlockedAt: now})
	}
	return events, nil
}
