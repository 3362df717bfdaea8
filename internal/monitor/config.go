package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds monitor engine settings
type Config struct {
	// Enabled controls whether the scheduler runs at all
	// Default: true
	Enabled bool `json:"enabled"`

	// CheckInterval is how often the pipeline ticks
	// Default: 10 minutes
	CheckInterval time.Duration `json:"check_interval"`

	// LogEvaluations controls whether non-firing ticks are logged
	// Default: false
	LogEvaluations bool `json:"log_evaluations"`
}

// DefaultConfig returns the monitor configuration defaults
func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		CheckInterval: 10 * time.Minute,
	}
}

// LoadFromFile loads monitor configuration from a JSON file.
// Returns default config if the file doesn't exist; an error if the file
// exists but is invalid.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultConfig().CheckInterval
	}

	return cfg, nil
}

// LoadFromEnv loads monitor configuration from environment variables.
// Prefix: QP_MONITOR_
func LoadFromEnv() *Config {
	return applyEnv(DefaultConfig())
}

// Load layers configuration sources: defaults, then the JSON file at path,
// then QP_MONITOR_* environment overrides.
func Load(path string) (*Config, error) {
	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg *Config) *Config {
	if val := os.Getenv("QP_MONITOR_ENABLED"); val != "" {
		cfg.Enabled = parseBool(val)
	}
	if val := os.Getenv("QP_MONITOR_CHECK_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			cfg.CheckInterval = d
		}
	}
	if val := os.Getenv("QP_MONITOR_LOG_EVALUATIONS"); val != "" {
		cfg.LogEvaluations = parseBool(val)
	}

	return cfg
}

func parseBool(val string) bool {
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false
	}
	return b
}

// triggerFile is the YAML shape of a trigger configuration file
type triggerFile struct {
	Triggers []*Trigger `yaml:"triggers"`
}

// LoadTriggersFile reads trigger definitions from a YAML file.
// A missing file returns the default trigger set; a present but invalid
// file is an error.
func LoadTriggersFile(path string) ([]*Trigger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultTriggers(), nil
		}
		return nil, fmt.Errorf("failed to read triggers file: %w", err)
	}

	var f triggerFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse triggers file: %w", err)
	}

	for _, t := range f.Triggers {
		if t.ID == "" {
			return nil, fmt.Errorf("trigger with empty id in %s", path)
		}
		if t.CooldownMinutes < 0 {
			return nil, fmt.Errorf("trigger %q has negative cooldown", t.ID)
		}
		// Unknown metrics are tolerated: such a trigger simply never
		// fires (evaluation returns false, it does not error). Warn so
		// the misconfiguration is visible.
		if !t.Condition.Metric.IsValid() {
			fmt.Printf("Monitor: warning: trigger %s references unknown metric %q and will never fire\n", t.ID, t.Condition.Metric)
		}
	}

	return f.Triggers, nil
}
