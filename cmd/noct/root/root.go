package root

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"noctisium/internal/ui"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "noct",
	Short:         "Noctisium — weekly KPI analytics with RPG progression",
	Long:          "Noctisium is a local-first CLI/TUI dashboard that scores weekly habit KPIs, analyzes trends and streaks, and feeds them into a character progression with ranks and achievements.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	var verbose bool
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		}
	}

	rootCmd.AddCommand(
		newKPICmd(),
		newLogCmd(),
		newTargetCmd(),
		newWeekCmd(),
		newApplyCmd(),
		newAnalyzeCmd(),
		newStatusCmd(),
		newAchievementsCmd(),
		newBoardCmd(),
		newDBCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
