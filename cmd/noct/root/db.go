package root

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"noctisium/internal/achievement"
	"noctisium/internal/config"
	"noctisium/internal/engine"
	"noctisium/internal/kpi"
	"noctisium/internal/storage"
)

func openDB(ctx context.Context) (*sql.DB, func(), error) {
	path, err := storage.ResolveDBPath()
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return db, cleanup, nil
}

func openService(ctx context.Context) (*engine.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	registry, err := achievement.DefaultRegistry()
	if err != nil {
		return nil, nil, err
	}
	db, cleanup, err := openDB(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc, err := engine.NewService(db, registry, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

// resolveWeek parses an explicit week key, defaulting to the current ISO
// week when the flag is empty.
func resolveWeek(flag string) (kpi.WeekKey, error) {
	if flag == "" {
		return kpi.WeekKeyOf(time.Now()), nil
	}
	return kpi.ParseWeekKey(flag)
}

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database utilities",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the database location",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := storage.ResolveDBPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			db, cleanup, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			// Open already migrates; run again explicitly so the
			// command reports success on an up-to-date schema too.
			if err := storage.Migrate(ctx, db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	})

	return cmd
}
