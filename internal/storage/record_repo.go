package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"noctisium/internal/kpi"
)

// RecordRepo persists weekly KPI records per user. Value and daily maps
// are stored as JSON text columns.
type RecordRepo struct {
	db DBTX
}

func NewRecordRepo(db DBTX) *RecordRepo {
	return &RecordRepo{db: db}
}

func (r *RecordRepo) GetWeek(ctx context.Context, user string, week kpi.WeekKey) (*kpi.WeeklyRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT values_json, daily_json FROM weekly_records
		WHERE user_key = ? AND year = ? AND week = ?
	`, user, week.Year, week.Week)

	var valuesJSON, dailyJSON string
	if err := row.Scan(&valuesJSON, &dailyJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("record get: %w", err)
	}
	return decodeRecord(week, valuesJSON, dailyJSON)
}

// UpsertWeek writes a full record, creating the week lazily on first
// write.
func (r *RecordRepo) UpsertWeek(ctx context.Context, user string, rec *kpi.WeeklyRecord) error {
	valuesJSON, err := json.Marshal(rec.Values)
	if err != nil {
		return fmt.Errorf("record encode values: %w", err)
	}
	dailyJSON, err := json.Marshal(rec.Daily)
	if err != nil {
		return fmt.Errorf("record encode daily: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO weekly_records (user_key, year, week, values_json, daily_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_key, year, week)
		DO UPDATE SET values_json = excluded.values_json,
			daily_json = excluded.daily_json,
			updated_at = excluded.updated_at
	`, user, rec.Week.Year, rec.Week.Week, string(valuesJSON), string(dailyJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record upsert: %w", err)
	}
	return nil
}

// ListAll returns every record for the user ordered oldest first.
func (r *RecordRepo) ListAll(ctx context.Context, user string) ([]kpi.WeeklyRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT year, week, values_json, daily_json FROM weekly_records
		WHERE user_key = ?
		ORDER BY year, week
	`, user)
	if err != nil {
		return nil, fmt.Errorf("record list: %w", err)
	}
	defer rows.Close()

	var out []kpi.WeeklyRecord
	for rows.Next() {
		var year, week int
		var valuesJSON, dailyJSON string
		if err := rows.Scan(&year, &week, &valuesJSON, &dailyJSON); err != nil {
			return nil, fmt.Errorf("record scan: %w", err)
		}
		rec, err := decodeRecord(kpi.WeekKey{Year: year, Week: week}, valuesJSON, dailyJSON)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func decodeRecord(week kpi.WeekKey, valuesJSON, dailyJSON string) (*kpi.WeeklyRecord, error) {
	rec := kpi.WeeklyRecord{Week: week, Values: map[string]float64{}, Daily: map[string][7]float64{}}
	if err := json.Unmarshal([]byte(valuesJSON), &rec.Values); err != nil {
		return nil, fmt.Errorf("record decode values: %w", err)
	}
	if err := json.Unmarshal([]byte(dailyJSON), &rec.Daily); err != nil {
		return nil, fmt.Errorf("record decode daily: %w", err)
	}
	return &rec, nil
}

// SetOverride records a per-week target override for one KPI.
func (r *RecordRepo) SetOverride(ctx context.Context, user string, week kpi.WeekKey, kpiID string, target float64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO week_overrides (user_key, year, week, kpi_id, target)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_key, year, week, kpi_id) DO UPDATE SET target = excluded.target
	`, user, week.Year, week.Week, kpiID, target)
	if err != nil {
		return fmt.Errorf("override set: %w", err)
	}
	return nil
}

// ListOverrides returns all overrides for the user keyed by week string,
// then KPI ID.
func (r *RecordRepo) ListOverrides(ctx context.Context, user string) (map[string]map[string]float64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT year, week, kpi_id, target FROM week_overrides WHERE user_key = ?
	`, user)
	if err != nil {
		return nil, fmt.Errorf("override list: %w", err)
	}
	defer rows.Close()

	out := map[string]map[string]float64{}
	for rows.Next() {
		var year, week int
		var kpiID string
		var target float64
		if err := rows.Scan(&year, &week, &kpiID, &target); err != nil {
			return nil, fmt.Errorf("override scan: %w", err)
		}
		key := kpi.WeekKey{Year: year, Week: week}.String()
		if out[key] == nil {
			out[key] = map[string]float64{}
		}
		out[key][kpiID] = target
	}
	return out, rows.Err()
}
