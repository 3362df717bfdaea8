// Command questpulse is the personal task and quest tracker's health
// monitor CLI: it watches your task/quest data, classifies your current
// productivity health, and surfaces at most one intervention at a time.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/questpulse/questpulse/internal/monitor"
	"github.com/questpulse/questpulse/internal/storage/sqlite"
)

var (
	dbPath       string
	triggersPath string
	configPath   string

	// store is opened by the root PersistentPreRunE and shared by all commands
	store *sqlite.SQLiteStorage
)

var rootCmd = &cobra.Command{
	Use:   "questpulse",
	Short: "Health monitor for your tasks, quests, and goals",
	Long: `questpulse watches your task and quest data, derives a health snapshot
(green/yellow/red), and dispatches at most one intervention at a time
when configured triggers fire.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real env vars win
		_ = godotenv.Load()

		s, err := sqlite.New(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		store = s
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			store.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath(), "path to the questpulse database")
	rootCmd.PersistentFlags().StringVar(&triggersPath, "triggers", defaultTriggersPath(), "path to the trigger configuration file")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to the monitor configuration file")
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "questpulse.db"
	}
	return filepath.Join(home, ".questpulse", "questpulse.db")
}

func defaultTriggersPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "triggers.yaml"
	}
	return filepath.Join(home, ".questpulse", "triggers.yaml")
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "monitor.json"
	}
	return filepath.Join(home, ".questpulse", "monitor.json")
}

// loadRegistry loads trigger definitions (file or defaults), persists them
// so cooldowns survive restarts, and builds the registry from the stored
// rows, which carry any surviving last-fired timestamps.
func loadRegistry(cmd *cobra.Command) (*monitor.Registry, error) {
	ctx := cmd.Context()

	defs, err := monitor.LoadTriggersFile(triggersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load triggers: %w", err)
	}
	defined := make(map[string]bool, len(defs))
	for _, t := range defs {
		if err := store.SaveTrigger(ctx, t); err != nil {
			return nil, fmt.Errorf("failed to persist trigger %s: %w", t.ID, err)
		}
		defined[t.ID] = true
	}

	stored, err := store.ListTriggers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list triggers: %w", err)
	}

	registry := monitor.NewRegistry()
	for _, t := range stored {
		// A trigger removed from the config must stop firing, not linger
		// in the database
		if !defined[t.ID] {
			if err := store.DeleteTrigger(ctx, t.ID); err != nil {
				return nil, fmt.Errorf("failed to prune trigger %s: %w", t.ID, err)
			}
			continue
		}
		if err := registry.Register(t); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
