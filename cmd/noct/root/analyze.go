package root

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"noctisium/internal/analytics"
	"noctisium/internal/storage"
	"noctisium/internal/ui"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Show trends, streaks, correlations and insights",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			snap, err := svc.Analytics(ctx, storage.MainUserKey)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, ui.Heading(ui.IconChart, "Analytics"))

			if len(snap.Trend) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No weeks logged yet."))
				return nil
			}

			values := make([]float64, len(snap.Trend))
			for i, p := range snap.Trend {
				values[i] = p.Completion
			}
			last := snap.Trend[len(snap.Trend)-1]
			fmt.Fprintln(out, ui.H2.Render("Trend"))
			fmt.Fprintf(out, "%s  %s\n", ui.Spark(values),
				ui.Muted.Render(fmt.Sprintf("%d weeks", len(values))))
			fmt.Fprintf(out, "- %s %.1f%% (%+.1f vs previous)\n", ui.Key.Render("Latest:"), last.Completion, last.Change)
			fmt.Fprintf(out, "- %s %.1f%% over %d weeks\n", ui.Key.Render("Rolling avg:"), last.MonthlyAvg, last.WindowWeeks)
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render("Distribution"))
			for i, label := range analytics.DistributionBuckets {
				count := snap.Distribution[i]
				fmt.Fprintf(out, "- %-6s %s %d\n", label, ui.Bar(float64(count)/float64(len(values)), 14), count)
			}
			fmt.Fprintln(out, "")

			if len(snap.Streaks) > 0 {
				fmt.Fprintln(out, ui.H2.Render(ui.IconFire+" Streaks"))
				ids := make([]string, 0, len(snap.Streaks))
				for id := range snap.Streaks {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				for _, id := range ids {
					st := snap.Streaks[id]
					fmt.Fprintf(out, "- %s current %d, longest %d\n",
						ui.Key.Render(id), st.Current.Length, st.Longest.Length)
				}
				fmt.Fprintln(out, "")
			}

			if len(snap.Records) > 0 {
				fmt.Fprintln(out, ui.H2.Render(ui.IconTrophy+" Personal records"))
				for _, r := range snap.Records {
					fmt.Fprintf(out, "- %s %s (%s)\n", ui.Key.Render(r.Name), trimFloat(r.Value), r.Week)
				}
				fmt.Fprintln(out, "")
			}

			top := analytics.TopCorrelations(snap.Correlations, 5)
			if len(top) > 0 {
				fmt.Fprintln(out, ui.H2.Render("Correlations"))
				for _, c := range top {
					fmt.Fprintf(out, "- %s × %s  r=%+.2f %s %s\n",
						c.KPIA, c.KPIB, c.Coefficient, ui.Muted.Render(string(c.Strength)),
						ui.Muted.Render(fmt.Sprintf("(%d weeks)", c.Weeks)))
				}
				fmt.Fprintln(out, "")
			}

			for _, h := range analytics.TopHighlights(snap.Highlights, 5) {
				fmt.Fprintf(out, "%s %s\n", h.Icon, h.Text)
			}
			for _, r := range analytics.TopRecommendations(snap.Recommendations, 3) {
				fmt.Fprintf(out, "%s %s\n", r.Icon, ui.Muted.Render(r.Text))
			}
			return nil
		},
	}
	return cmd
}
