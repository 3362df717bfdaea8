package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/questpulse/questpulse/internal/monitor"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current health snapshot without evaluating triggers",
	Long: `Collect and classify a fresh health snapshot, read-only: no triggers
are evaluated, no interventions dispatched, no cooldowns touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()

		collector, err := monitor.NewCollector(store, now)
		if err != nil {
			return err
		}
		m, err := collector.Collect(cmd.Context(), now)
		if err != nil {
			return fmt.Errorf("failed to collect metrics: %w", err)
		}
		m.OverallStatus, m.StatusReasons = monitor.EvaluateStatus(m, now)

		printSnapshot(m)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
