package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var triggersCmd = &cobra.Command{
	Use:   "triggers",
	Short: "List configured intervention triggers",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry(cmd)
		if err != nil {
			return err
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		fmt.Printf("\n%s\n\n", cyan("=== Intervention Triggers ==="))

		now := time.Now()
		for _, t := range registry.All() {
			state := color.GreenString("ready")
			if !t.Enabled {
				state = gray("disabled")
			} else if t.OnCooldown(now) {
				remaining := t.Cooldown() - now.Sub(*t.LastTriggered)
				state = color.YellowString("cooldown (%v left)", remaining.Round(time.Minute))
			}

			fmt.Printf("%s  %s\n", t.ID, state)
			if t.Condition.Metric == "custom" {
				fmt.Printf("    condition: custom %s >= %.0f\n", t.Condition.CustomType, t.Condition.Threshold)
			} else {
				fmt.Printf("    condition: %s %s %.0f\n", t.Condition.Metric, t.Condition.Operator, t.Condition.Threshold)
			}
			if t.Condition.TimeWindow != nil {
				fmt.Printf("    window:    %s-%s\n", t.Condition.TimeWindow.Start, t.Condition.TimeWindow.End)
			}
			fmt.Printf("    cooldown:  %dm, level: %s\n", t.CooldownMinutes, t.Response)
			if t.LastTriggered != nil {
				fmt.Printf("    last fired: %s\n", t.LastTriggered.Format("2006-01-02 15:04:05"))
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(triggersCmd)
}
