package storage

import (
	"context"
	"database/sql"
	"fmt"

	"noctisium/internal/kpi"
	"noctisium/internal/progression"
)

// MainUserKey is the single local user, matching the local-first model.
const MainUserKey = "main_user"

// Character is the persisted progression row for one user.
type Character struct {
	UserKey       string
	State         progression.State
	DaysActive    int
	LastActiveDay string // YYYY-MM-DD of the last counted active day
}

// CharacterRepo persists progression state and usage counters.
type CharacterRepo struct {
	db DBTX
}

func NewCharacterRepo(db DBTX) *CharacterRepo {
	return &CharacterRepo{db: db}
}

func (r *CharacterRepo) Get(ctx context.Context, user string) (*Character, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_key, xp_str, xp_vit, xp_int, xp_wis, xp_cha, rr,
			weeks_applied, days_active, last_active_day
		FROM characters WHERE user_key = ?
	`, user)

	c := Character{State: progression.NewState()}
	var xpStr, xpVit, xpInt, xpWis, xpCha int
	err := row.Scan(&c.UserKey, &xpStr, &xpVit, &xpInt, &xpWis, &xpCha,
		&c.State.RR, &c.State.WeeksApplied, &c.DaysActive, &c.LastActiveDay)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("character get: %w", err)
	}
	c.State.XP[progression.StatSTR] = xpStr
	c.State.XP[progression.StatVIT] = xpVit
	c.State.XP[progression.StatINT] = xpInt
	c.State.XP[progression.StatWIS] = xpWis
	c.State.XP[progression.StatCHA] = xpCha
	c.State.TotalXP = xpStr + xpVit + xpInt + xpWis + xpCha
	return &c, nil
}

func (r *CharacterRepo) GetOrCreate(ctx context.Context, user string) (*Character, error) {
	c, err := r.Get(ctx, user)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}
	if _, err := r.db.ExecContext(ctx, `INSERT INTO characters (user_key) VALUES (?)`, user); err != nil {
		return nil, fmt.Errorf("character insert: %w", err)
	}
	return r.Get(ctx, user)
}

func (r *CharacterRepo) Update(ctx context.Context, c *Character) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE characters
		SET xp_str = ?, xp_vit = ?, xp_int = ?, xp_wis = ?, xp_cha = ?,
			rr = ?, weeks_applied = ?, days_active = ?, last_active_day = ?
		WHERE user_key = ?
	`, c.State.XP[progression.StatSTR], c.State.XP[progression.StatVIT],
		c.State.XP[progression.StatINT], c.State.XP[progression.StatWIS],
		c.State.XP[progression.StatCHA], c.State.RR, c.State.WeeksApplied,
		c.DaysActive, c.LastActiveDay, c.UserKey)
	if err != nil {
		return fmt.Errorf("character update: %w", err)
	}
	return nil
}

// MarkWeekApplied records that a week's completion has been folded into
// the character. Returns false when the week was already applied.
func (r *CharacterRepo) MarkWeekApplied(ctx context.Context, user string, week kpi.WeekKey, completion float64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO applied_weeks (user_key, year, week, completion)
		VALUES (?, ?, ?, ?)
	`, user, week.Year, week.Week, completion)
	if err != nil {
		return false, fmt.Errorf("applied week insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("applied week insert: %w", err)
	}
	return n > 0, nil
}

// LatestAppliedCompletion returns the completion of the most recently
// applied week, with ok=false when no week was applied yet.
func (r *CharacterRepo) LatestAppliedCompletion(ctx context.Context, user string) (float64, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT completion FROM applied_weeks
		WHERE user_key = ? ORDER BY year DESC, week DESC LIMIT 1
	`, user)
	var completion float64
	if err := row.Scan(&completion); err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("applied week latest: %w", err)
	}
	return completion, true, nil
}

// AppliedWeeks returns the set of applied week keys.
func (r *CharacterRepo) AppliedWeeks(ctx context.Context, user string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT year, week FROM applied_weeks WHERE user_key = ?
	`, user)
	if err != nil {
		return nil, fmt.Errorf("applied weeks list: %w", err)
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var year, week int
		if err := rows.Scan(&year, &week); err != nil {
			return nil, fmt.Errorf("applied weeks scan: %w", err)
		}
		out[kpi.WeekKey{Year: year, Week: week}.String()] = true
	}
	return out, rows.Err()
}
