package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"noctisium/internal/kpi"
	"noctisium/internal/storage"
	"noctisium/internal/ui"
)

func newWeekCmd() *cobra.Command {
	var weekFlag string

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the scored report for a week",
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
			report, err := svc.WeekReport(ctx, storage.MainUserKey, week)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconChart, "Week "+week.String()))
			fmt.Fprintf(cmd.OutOrStdout(), "%s %.1f%%  %s\n\n",
				ui.Key.Render("Completion:"), report.Completion, ui.Bar(report.Completion/100, 24))

			if len(report.PerKPI) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Nothing logged this week."))
				return nil
			}

			for _, p := range report.PerKPI {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %s/%s  %s %s\n",
					ui.Key.Render(p.KPIID), trimFloat(p.Value), trimFloat(p.Target),
					ui.Bar(p.Fraction, 12), ui.StatusText(string(p.Status)))
			}

			if len(report.ByCategory) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "")
				fmt.Fprintln(cmd.OutOrStdout(), ui.H2.Render("By category"))
				for _, cat := range kpi.Categories {
					pct, ok := report.ByCategory[cat]
					if !ok {
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "- %s %.0f%%\n", cat, pct)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&weekFlag, "week", "w", "", "ISO week key (YYYY-Www), defaults to this week")
	return cmd
}
