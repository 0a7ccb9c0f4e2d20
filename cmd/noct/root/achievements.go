package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"noctisium/internal/storage"
	"noctisium/internal/ui"
)

func newAchievementsCmd() *cobra.Command {
	var lockedToo bool

	cmd := &cobra.Command{
		Use:     "achievements",
		Aliases: []string{"ach"},
		Short:   "List achievements and evaluate pending unlocks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			out := cmd.OutOrStdout()

			// Catch up on anything earned since the last apply.
			fresh, err := svc.EvaluateAchievements(ctx, storage.MainUserKey)
			if err != nil {
				return err
			}
			for _, u := range fresh {
				fmt.Fprintf(out, "%s Unlocked: %s %s\n", ui.IconTrophy, u.Definition.Icon, ui.Gold.Render(u.Definition.Title))
			}

			recs, err := svc.Unlocks(ctx, storage.MainUserKey)
			if err != nil {
				return err
			}
			unlocked := map[string]bool{}
			for _, r := range recs {
				unlocked[r.AchievementKey] = true
			}

			fmt.Fprintln(out, ui.Heading(ui.IconMedal, "Achievements"))
			visible := svc.Registry().Visible(unlocked)
			done := 0
			for _, def := range visible {
				if unlocked[def.Key] {
					done++
					fmt.Fprintf(out, "- %s %s %s %s\n", def.Icon, ui.Good.Render(def.Title),
						ui.RarityText(string(def.Rarity)), ui.Muted.Render(def.Description))
					continue
				}
				if !lockedToo {
					continue
				}
				fmt.Fprintf(out, "- %s %s %s %s\n", def.Icon, ui.Muted.Render(def.Title),
					ui.RarityText(string(def.Rarity)), ui.Muted.Render(def.Description))
			}
			fmt.Fprintln(out, "")
			fmt.Fprintf(out, "%s %d/%d unlocked\n", ui.Key.Render("Progress:"), done, svc.Registry().Len())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&lockedToo, "all", "a", false, "Include locked achievements")
	return cmd
}
