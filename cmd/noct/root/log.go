package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"noctisium/internal/engine"
	"noctisium/internal/storage"
	"noctisium/internal/ui"
)

func newLogCmd() *cobra.Command {
	var weekFlag string
	var day string

	cmd := &cobra.Command{
		Use:   "log <kpi-id> <value>",
		Short: "Log a value for a KPI's week",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("kpi id and value are required")
			}
			if _, err := strconv.ParseFloat(args[1], 64); err != nil {
				return errors.New("value must be a number")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			week, err := resolveWeek(weekFlag)
			if err != nil {
				return err
			}
			value, _ := strconv.ParseFloat(args[1], 64)

			if day != "" {
				idx, err := engine.ParseWeekday(day)
				if err != nil {
					return err
				}
				if err := svc.LogDailyValue(ctx, storage.MainUserKey, week, args[0], idx, value); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Logged %s %s on %s of %s\n", ui.IconDone, args[1], args[0], day, week)
				return nil
			}

			if err := svc.LogValue(ctx, storage.MainUserKey, week, args[0], value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Logged %s %s for %s\n", ui.IconDone, args[1], args[0], week)
			return nil
		},
	}

	cmd.Flags().StringVarP(&weekFlag, "week", "w", "", "ISO week key (YYYY-Www), defaults to this week")
	cmd.Flags().StringVarP(&day, "day", "d", "", "Weekday (mon..sun) for daily-breakdown KPIs")
	return cmd
}

func newTargetCmd() *cobra.Command {
	var weekFlag string

	cmd := &cobra.Command{
		Use:   "target <kpi-id> <value>",
		Short: "Override a KPI's target for one week",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("kpi id and value are required")
			}
			if _, err := strconv.ParseFloat(args[1], 64); err != nil {
				return errors.New("value must be a number")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			week, err := resolveWeek(weekFlag)
			if err != nil {
				return err
			}
			value, _ := strconv.ParseFloat(args[1], 64)
			if err := svc.SetWeekTarget(ctx, storage.MainUserKey, week, args[0], value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s targets %s for %s only\n", ui.IconDone, args[0], trimFloat(value), week)
			return nil
		},
	}

	cmd.Flags().StringVarP(&weekFlag, "week", "w", "", "ISO week key (YYYY-Www), defaults to this week")
	return cmd
}
