package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"noctisium/internal/progression"
	"noctisium/internal/storage"
	"noctisium/internal/ui"
)

func newApplyCmd() *cobra.Command {
	var weekFlag string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Close a week: award XP and RR, evaluate achievements",
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
			res, err := svc.ApplyWeek(ctx, storage.MainUserKey, week)
			if err != nil {
				return err
			}
			rep := res.Report

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconBolt, "Applied "+rep.Week.String()))
			for _, stat := range progression.Stats {
				xp, ok := rep.StatXP[stat]
				if !ok || xp == 0 {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %+d XP\n", ui.Key.Render(string(stat)), xp)
			}
			if rep.RRGained > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %+d\n", ui.Key.Render("RR"), rep.RRGained)
			}
			if rep.LevelUp {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s lvl %d → %d\n", ui.IconSparkle, ui.BadgeLevelUp, rep.LevelBefore, rep.LevelAfter)
			}
			if rep.RankUp {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s → %s\n", ui.IconCrown, ui.BadgeRankUp, rep.TierBefore, rep.TierAfter)
			}

			for _, u := range res.Unlocks {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Unlocked: %s %s %s\n",
					ui.IconTrophy, u.Definition.Icon, ui.Gold.Render(u.Definition.Title),
					ui.RarityText(string(u.Definition.Rarity)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&weekFlag, "week", "w", "", "ISO week key (YYYY-Www), defaults to this week")
	return cmd
}
