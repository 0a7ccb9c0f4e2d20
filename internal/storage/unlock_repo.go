package storage

import (
	"context"
	"fmt"
	"time"
)

// UnlockRecord is one persisted achievement unlock. The primary key on
// (user_key, achievement_key) is what makes unlocking idempotent at the
// storage level.
type UnlockRecord struct {
	UserKey        string
	AchievementKey string
	UnlockedAt     time.Time
	RRAwarded      int
}

// UnlockRepo persists achievement unlock records.
type UnlockRepo struct {
	db DBTX
}

func NewUnlockRepo(db DBTX) *UnlockRepo {
	return &UnlockRepo{db: db}
}

// Insert appends an unlock record. A duplicate key is an error: the
// evaluator consults the unlocked set first, so hitting the constraint
// means the unlock protocol was violated.
func (r *UnlockRepo) Insert(ctx context.Context, rec UnlockRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO achievement_unlocks (user_key, achievement_key, unlocked_at, rr_awarded)
		VALUES (?, ?, ?, ?)
	`, rec.UserKey, rec.AchievementKey, rec.UnlockedAt, rec.RRAwarded)
	if err != nil {
		return fmt.Errorf("unlock insert %q: %w", rec.AchievementKey, err)
	}
	return nil
}

// UnlockedSet returns every unlocked achievement key for the user.
func (r *UnlockRepo) UnlockedSet(ctx context.Context, user string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT achievement_key FROM achievement_unlocks WHERE user_key = ?
	`, user)
	if err != nil {
		return nil, fmt.Errorf("unlock list: %w", err)
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("unlock scan: %w", err)
		}
		out[key] = true
	}
	return out, rows.Err()
}

// List returns the user's unlock records, most recent first.
func (r *UnlockRepo) List(ctx context.Context, user string) ([]UnlockRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_key, achievement_key, unlocked_at, rr_awarded
		FROM achievement_unlocks
		WHERE user_key = ?
		ORDER BY unlocked_at DESC, achievement_key
	`, user)
	if err != nil {
		return nil, fmt.Errorf("unlock list: %w", err)
	}
	defer rows.Close()

	var out []UnlockRecord
	for rows.Next() {
		var rec UnlockRecord
		if err := rows.Scan(&rec.UserKey, &rec.AchievementKey, &rec.UnlockedAt, &rec.RRAwarded); err != nil {
			return nil, fmt.Errorf("unlock scan: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
