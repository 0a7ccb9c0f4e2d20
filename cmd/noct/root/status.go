package root

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"noctisium/internal/storage"
	"noctisium/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show character stats, rank and progression",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := svc.Progression(ctx, storage.MainUserKey)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Character Status"))
			fmt.Fprintln(out, ui.LabelValue("Level", p.Level))
			fmt.Fprintln(out, ui.LabelValue("Total XP", p.TotalXP))
			rank := fmt.Sprintf("%s (%d RR)", ui.Gold.Render(string(p.Rank.Tier)), p.Rank.RR)
			if p.Rank.NextRR > 0 {
				rank += " " + ui.Muted.Render(fmt.Sprintf("(%d RR to next tier)", p.Rank.NextRR))
			}
			fmt.Fprintln(out, ui.LabelValue("Rank", rank))
			fmt.Fprintln(out, ui.LabelValue("Weeks applied", p.WeeksLogged))
			fmt.Fprintln(out, ui.LabelValue("Days active", p.DaysActive))
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render(ui.IconChart+" Stats"))
			for _, st := range p.Stats {
				span := st.XP + st.XPForNext
				frac := 0.0
				if span > 0 {
					frac = float64(st.XP) / float64(span)
				}
				fmt.Fprintf(out, "- %s lvl %2d %s %s\n",
					ui.Key.Render(string(st.Stat)), st.Level, ui.Bar(frac, 16),
					ui.Muted.Render(fmt.Sprintf("(%d to next)", st.XPForNext)))
			}

			if len(p.CritChance) > 0 {
				fmt.Fprintln(out, "")
				fmt.Fprintln(out, ui.H2.Render(ui.IconBolt+" Crit chance"))
				weeks := make([]string, 0, len(p.CritChance))
				for w := range p.CritChance {
					weeks = append(weeks, w)
				}
				sort.Strings(weeks)
				for _, w := range weeks {
					fmt.Fprintf(out, "- %s %.1f%%\n", w, p.CritChance[w])
				}
			}
			return nil
		},
	}
	return cmd
}
