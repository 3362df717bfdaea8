package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/questpulse/questpulse/internal/assistant"
	"github.com/questpulse/questpulse/internal/monitor"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single health check and print the snapshot",
	Long: `Run the full monitoring pipeline once, outside the fixed schedule:
collect metrics, classify status, evaluate triggers, and dispatch an
intervention if one is eligible. Useful for debugging trigger
configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry(cmd)
		if err != nil {
			return err
		}

		cfg, err := monitor.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// One-shot run: acknowledge immediately, nothing follows to suppress
		sched, err := monitor.NewScheduler(&monitor.SchedulerDeps{
			Source:       store,
			Registry:     registry,
			Sink:         assistant.NewConsoleSink(0),
			TriggerStore: store,
			Config:       cfg,
		})
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}

		m, err := sched.ManualCheck(cmd.Context())
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}

		printSnapshot(m)
		return nil
	},
}

// printSnapshot renders a metrics snapshot to the terminal
func printSnapshot(m *monitor.HealthMetrics) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s\n\n", cyan("=== Health Snapshot ==="))

	fmt.Printf("Status:    %s\n", colorStatus(m.OverallStatus))
	for _, reason := range m.StatusReasons {
		fmt.Printf("  - %s\n", reason)
	}
	fmt.Println()

	fmt.Printf("Today:     %d/%d tasks done (%.0f%% raw, %.0f%% weighted)\n",
		m.TodayCompletedCount, m.TodayTotalCount, m.TodayCompletionRate, m.WeightedCompletionRate)
	fmt.Printf("Last completion: %d minutes ago\n", m.TimeSinceLastCompletion)
	fmt.Printf("Overdue:   %d tasks, %d quests, %d chapters\n",
		m.OverdueTasksCount, m.OverdueQuestsCount, m.OverdueChaptersCount)
	if m.InconsistentDeadlinesCount > 0 {
		fmt.Printf("Deadline inconsistencies: %d\n", m.InconsistentDeadlinesCount)
	}
	fmt.Printf("Trend:     %s, energy %s\n", m.WeeklyTrend, m.EnergyPattern)

	if len(m.AtRiskQuests) > 0 {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Printf("\n%s\n", yellow("At-risk quests:"))
		for _, q := range m.AtRiskQuests {
			fmt.Printf("  %s %q: %.0f%% done, needs %.0f%%/day (suggest: %s)\n",
				colorRisk(q.RiskLevel), q.QuestTitle, q.CurrentProgress, q.RequiredDailyProgress, q.SuggestedAction)
		}
	}
	fmt.Println()
}

func colorStatus(s monitor.HealthStatus) string {
	switch s {
	case monitor.StatusGreen:
		return color.GreenString(string(s))
	case monitor.StatusYellow:
		return color.YellowString(string(s))
	case monitor.StatusRed:
		return color.RedString(string(s))
	default:
		return string(s)
	}
}

func colorRisk(r monitor.RiskLevel) string {
	switch r {
	case monitor.RiskCritical:
		return color.RedString("[critical]")
	case monitor.RiskHigh:
		return color.YellowString("[high]")
	default:
		return color.HiBlackString("[medium]")
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
