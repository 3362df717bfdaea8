package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/questpulse/questpulse/internal/assistant"
	"github.com/questpulse/questpulse/internal/monitor"
)

// consoleAckWindow is how long a console-delivered intervention counts as
// active; there is no terminal dismissal surface to acknowledge sooner.
const consoleAckWindow = 30 * time.Minute

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the health monitor loop until interrupted",
	Long: `Start the monitoring loop: an immediate health check, then one per
check interval (10 minutes by default, QP_MONITOR_CHECK_INTERVAL to
override). Interventions are delivered by Claude when ANTHROPIC_API_KEY
is set, otherwise printed directly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry(cmd)
		if err != nil {
			return err
		}

		var sink monitor.InterventionSink
		var activeFn func() bool
		if os.Getenv("ANTHROPIC_API_KEY") != "" {
			coach, err := assistant.NewCoach(&assistant.CoachConfig{})
			if err != nil {
				return fmt.Errorf("failed to create assistant: %w", err)
			}
			sink = coach
		} else {
			// No dismissal surface on a plain terminal; the intervention
			// stays active for a window so dispatches don't stack up
			console := assistant.NewConsoleSink(consoleAckWindow)
			sink = console
			activeFn = console.Active
		}

		cfg, err := monitor.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		sched, err := monitor.NewScheduler(&monitor.SchedulerDeps{
			Source:             store,
			Registry:           registry,
			Sink:               sink,
			TriggerStore:       store,
			ActiveIntervention: activeFn,
			Config:             cfg,
		})
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}

		sched.Start(cmd.Context())

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		fmt.Println("Monitor running. Press Ctrl+C to stop.")
		<-sigCh
		fmt.Println("\nShutting down...")
		sched.Stop()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}
