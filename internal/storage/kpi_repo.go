package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"noctisium/internal/kpi"
)

// KPIRepo persists KPI definitions. Definitions are global to the local
// install, not scoped per user.
type KPIRepo struct {
	db DBTX
}

func NewKPIRepo(db DBTX) *KPIRepo {
	return &KPIRepo{db: db}
}

const kpiColumns = `id, name, unit, category, target, min_target, color, auto_source,
	display_mode, sort_order, active, counts_toward_total, created_at, updated_at`

func (r *KPIRepo) Insert(ctx context.Context, d *kpi.Definition) error {
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kpis (`+kpiColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.Name, d.Unit, string(d.Category), d.Target, d.MinTarget, d.Color, d.AutoSource,
		string(d.Mode), d.SortOrder, d.Active, d.CountsTowardTotal, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("kpi insert: %w", err)
	}
	return nil
}

func (r *KPIRepo) Update(ctx context.Context, d *kpi.Definition) error {
	d.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE kpis
		SET name = ?, unit = ?, category = ?, target = ?, min_target = ?, color = ?,
			auto_source = ?, display_mode = ?, sort_order = ?, active = ?,
			counts_toward_total = ?, updated_at = ?
		WHERE id = ?
	`, d.Name, d.Unit, string(d.Category), d.Target, d.MinTarget, d.Color, d.AutoSource,
		string(d.Mode), d.SortOrder, d.Active, d.CountsTowardTotal, d.UpdatedAt, d.ID)
	if err != nil {
		return fmt.Errorf("kpi update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("kpi %q not found", d.ID)
	}
	return nil
}

// Disable soft-disables a definition so historical records keep their
// referent.
func (r *KPIRepo) Disable(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE kpis SET active = 0, updated_at = ? WHERE id = ?
	`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("kpi disable: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("kpi %q not found", id)
	}
	return nil
}

func (r *KPIRepo) Get(ctx context.Context, id string) (*kpi.Definition, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+kpiColumns+` FROM kpis WHERE id = ?`, id)
	d, err := scanKPI(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("kpi get: %w", err)
	}
	return d, nil
}

// ListAll returns every definition (active and inactive) in sort order.
func (r *KPIRepo) ListAll(ctx context.Context) ([]kpi.Definition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+kpiColumns+` FROM kpis ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, fmt.Errorf("kpi list: %w", err)
	}
	defer rows.Close()

	var out []kpi.Definition
	for rows.Next() {
		d, err := scanKPI(rows)
		if err != nil {
			return nil, fmt.Errorf("kpi scan: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKPI(row rowScanner) (*kpi.Definition, error) {
	var d kpi.Definition
	var category, mode string
	var minTarget sql.NullFloat64
	err := row.Scan(&d.ID, &d.Name, &d.Unit, &category, &d.Target, &minTarget, &d.Color,
		&d.AutoSource, &mode, &d.SortOrder, &d.Active, &d.CountsTowardTotal,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.Category = kpi.Category(category)
	d.Mode = kpi.DisplayMode(mode)
	if minTarget.Valid {
		v := minTarget.Float64
		d.MinTarget = &v
	}
	return &d, nil
}
