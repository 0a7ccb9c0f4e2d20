package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Migrate applies the idempotent schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kpis (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			unit TEXT,
			category TEXT NOT NULL,
			target REAL NOT NULL,
			min_target REAL,
			color TEXT,
			auto_source TEXT,
			display_mode TEXT DEFAULT 'simple',
			sort_order INTEGER DEFAULT 0,
			active INTEGER DEFAULT 1,
			counts_toward_total INTEGER DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS weekly_records (
			user_key TEXT NOT NULL,
			year INTEGER NOT NULL,
			week INTEGER NOT NULL,
			values_json TEXT NOT NULL DEFAULT '{}',
			daily_json TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_key, year, week)
		);`,
		`CREATE TABLE IF NOT EXISTS week_overrides (
			user_key TEXT NOT NULL,
			year INTEGER NOT NULL,
			week INTEGER NOT NULL,
			kpi_id TEXT NOT NULL,
			target REAL NOT NULL,
			PRIMARY KEY (user_key, year, week, kpi_id)
		);`,
		`CREATE TABLE IF NOT EXISTS characters (
			user_key TEXT PRIMARY KEY,
			xp_str INTEGER DEFAULT 0,
			xp_vit INTEGER DEFAULT 0,
			xp_int INTEGER DEFAULT 0,
			xp_wis INTEGER DEFAULT 0,
			xp_cha INTEGER DEFAULT 0,
			rr INTEGER DEFAULT 0,
			weeks_applied INTEGER DEFAULT 0,
			days_active INTEGER DEFAULT 0,
			last_active_day TEXT DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS applied_weeks (
			user_key TEXT NOT NULL,
			year INTEGER NOT NULL,
			week INTEGER NOT NULL,
			completion REAL NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_key, year, week)
		);`,
		`CREATE TABLE IF NOT EXISTS achievement_unlocks (
			user_key TEXT NOT NULL,
			achievement_key TEXT NOT NULL,
			unlocked_at DATETIME NOT NULL,
			rr_awarded INTEGER DEFAULT 0,
			PRIMARY KEY (user_key, achievement_key)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_weekly_records_user ON weekly_records(user_key, year, week);`,
		`CREATE INDEX IF NOT EXISTS idx_unlocks_user ON achievement_unlocks(user_key);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	log.Debug().Msg("schema migrated")
	return nil
}
