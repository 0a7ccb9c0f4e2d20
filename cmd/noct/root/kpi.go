package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"noctisium/internal/engine"
	"noctisium/internal/kpi"
	"noctisium/internal/ui"
)

func newKPICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kpi",
		Short: "Manage KPI definitions",
	}
	cmd.AddCommand(
		newKPIAddCmd(),
		newKPIListCmd(),
		newKPITargetCmd(),
		newKPIDisableCmd(),
	)
	return cmd
}

func newKPIAddCmd() *cobra.Command {
	var (
		name       string
		unit       string
		category   string
		target     float64
		minTarget  float64
		color      string
		autoSource string
		daily      bool
		sortOrder  int
		noCount    bool
	)

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a KPI with a weekly target",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
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

			if name == "" {
				name = args[0]
			}
			in := engine.CreateKPIInput{
				ID:                args[0],
				Name:              name,
				Unit:              unit,
				Category:          kpi.ParseCategory(category),
				Target:            target,
				Color:             color,
				AutoSource:        autoSource,
				Mode:              kpi.DisplaySimple,
				SortOrder:         sortOrder,
				CountsTowardTotal: !noCount,
			}
			if daily {
				in.Mode = kpi.DisplayDailyBreakdown
			}
			if minTarget > 0 {
				in.MinTarget = &minTarget
			}

			def, err := svc.CreateKPI(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s (%s, target %s %s/week)\n",
				ui.IconDone, ui.Key.Render(def.ID), def.Category, trimFloat(def.Target), def.Unit)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name (defaults to the id)")
	cmd.Flags().StringVarP(&unit, "unit", "u", "times", "Unit label (km, pages, hours, ...)")
	cmd.Flags().StringVarP(&category, "category", "c", string(kpi.DefaultCategory), "Category (fitness|health|learning|discipline|social|leisure)")
	cmd.Flags().Float64VarP(&target, "target", "t", 1, "Weekly target value")
	cmd.Flags().Float64Var(&minTarget, "min", 0, "Partial-credit floor (0 disables)")
	cmd.Flags().StringVar(&color, "color", "", "Hex color for charts")
	cmd.Flags().StringVar(&autoSource, "source", "", "External sync source tag")
	cmd.Flags().BoolVar(&daily, "daily", false, "Track per-day values summed into the week")
	cmd.Flags().IntVar(&sortOrder, "order", 0, "Sort position in listings")
	cmd.Flags().BoolVar(&noCount, "no-count", false, "Exclude from the aggregate completion score")

	return cmd
}

func newKPIListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List KPI definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			defs, err := svc.KPIRepo().ListAll(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconTarget, "KPIs"))
			shown := 0
			for _, d := range defs {
				if !d.Active && !all {
					continue
				}
				shown++
				line := fmt.Sprintf("- %s %s  %s %s/week  %s",
					ui.Key.Render(d.ID), ui.Muted.Render("("+d.Name+")"),
					trimFloat(d.Target), d.Unit, ui.Muted.Render(string(d.Category)))
				if d.Mode == kpi.DisplayDailyBreakdown {
					line += " " + ui.Muted.Render("[daily]")
				}
				if !d.CountsTowardTotal {
					line += " " + ui.Muted.Render("[not counted]")
				}
				if !d.Active {
					line += " " + ui.Bad.Render("[disabled]")
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			if shown == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No KPIs yet. Add one with `noct kpi add`."))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include disabled KPIs")
	return cmd
}

func newKPITargetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target <id> <value>",
		Short: "Change a KPI's default weekly target",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("id and value are required")
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

			value, _ := strconv.ParseFloat(args[1], 64)
			if err := svc.UpdateKPITarget(ctx, args[0], value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Target for %s is now %s\n", ui.IconDone, args[0], trimFloat(value))
			return nil
		},
	}
	return cmd
}

func newKPIDisableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disable <id>",
		Short: "Disable a KPI (history is kept)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
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

			if err := svc.DisableKPI(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Disabled %s\n", ui.IconDone, args[0])
			return nil
		},
	}
	return cmd
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
