package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("QP_MONITOR_ENABLED", "")
		t.Setenv("QP_MONITOR_CHECK_INTERVAL", "")
		t.Setenv("QP_MONITOR_LOG_EVALUATIONS", "")

		cfg := LoadFromEnv()
		if !cfg.Enabled {
			t.Errorf("Enabled default should be true")
		}
		if cfg.CheckInterval != 10*time.Minute {
			t.Errorf("CheckInterval = %v, want 10m", cfg.CheckInterval)
		}
		if cfg.LogEvaluations {
			t.Errorf("LogEvaluations default should be false")
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("QP_MONITOR_ENABLED", "false")
		t.Setenv("QP_MONITOR_CHECK_INTERVAL", "30s")
		t.Setenv("QP_MONITOR_LOG_EVALUATIONS", "true")

		cfg := LoadFromEnv()
		if cfg.Enabled {
			t.Errorf("Enabled = true, want false")
		}
		if cfg.CheckInterval != 30*time.Second {
			t.Errorf("CheckInterval = %v, want 30s", cfg.CheckInterval)
		}
		if !cfg.LogEvaluations {
			t.Errorf("LogEvaluations = false, want true")
		}
	})

	t.Run("invalid interval keeps default", func(t *testing.T) {
		t.Setenv("QP_MONITOR_CHECK_INTERVAL", "soon")
		cfg := LoadFromEnv()
		if cfg.CheckInterval != 10*time.Minute {
			t.Errorf("CheckInterval = %v, want default 10m", cfg.CheckInterval)
		}
	})
}

func TestLoadFromFile(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.json"))
		if err != nil {
			t.Fatalf("LoadFromFile: %v", err)
		}
		if !cfg.Enabled || cfg.CheckInterval != 10*time.Minute {
			t.Errorf("missing file did not yield defaults: %+v", cfg)
		}
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "monitor.json")
		content := fmt.Sprintf(`{"enabled": false, "check_interval": %d, "log_evaluations": true}`,
			5*time.Minute)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadFromFile(path)
		if err != nil {
			t.Fatalf("LoadFromFile: %v", err)
		}
		if cfg.Enabled {
			t.Errorf("Enabled = true, want false")
		}
		if cfg.CheckInterval != 5*time.Minute {
			t.Errorf("CheckInterval = %v, want 5m", cfg.CheckInterval)
		}
		if !cfg.LogEvaluations {
			t.Errorf("LogEvaluations = false, want true")
		}
	})

	t.Run("malformed file errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "monitor.json")
		if err := os.WriteFile(path, []byte(`{"enabled": `), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFromFile(path); err == nil {
			t.Errorf("malformed file accepted")
		}
	})

	t.Run("non-positive interval falls back to default", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "monitor.json")
		if err := os.WriteFile(path, []byte(`{"check_interval": 0}`), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadFromFile(path)
		if err != nil {
			t.Fatalf("LoadFromFile: %v", err)
		}
		if cfg.CheckInterval != 10*time.Minute {
			t.Errorf("CheckInterval = %v, want default 10m", cfg.CheckInterval)
		}
	})
}

func TestLoadLayersEnvOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.json")
	content := fmt.Sprintf(`{"enabled": true, "check_interval": %d}`, 5*time.Minute)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("QP_MONITOR_CHECK_INTERVAL", "90s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CheckInterval != 90*time.Second {
		t.Errorf("CheckInterval = %v, want the env override 90s", cfg.CheckInterval)
	}
	if !cfg.Enabled {
		t.Errorf("Enabled = false, want the file value true")
	}
}

func TestLoadTriggersFile(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		triggers, err := LoadTriggersFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("LoadTriggersFile: %v", err)
		}
		if len(triggers) != len(DefaultTriggers()) {
			t.Errorf("got %d triggers, want the default set", len(triggers))
		}
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "triggers.yaml")
		content := `triggers:
  - id: evening-slump
    type: stale_completion
    enabled: true
    condition:
      metric: timeSinceLastCompletion
      operator: ">"
      threshold: 90
      time_window:
        start: "17:00"
        end: "22:00"
    cooldown: 120
    response: popup
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		triggers, err := LoadTriggersFile(path)
		if err != nil {
			t.Fatalf("LoadTriggersFile: %v", err)
		}
		if len(triggers) != 1 {
			t.Fatalf("got %d triggers, want 1", len(triggers))
		}

		tr := triggers[0]
		if tr.ID != "evening-slump" || !tr.Enabled {
			t.Errorf("unexpected trigger: %+v", tr)
		}
		if tr.Condition.Metric != MetricTimeSinceLastCompletion || tr.Condition.Operator != OpGreaterThan {
			t.Errorf("unexpected condition: %+v", tr.Condition)
		}
		if tr.Condition.TimeWindow == nil || tr.Condition.TimeWindow.Start != "17:00" {
			t.Errorf("time window not parsed: %+v", tr.Condition.TimeWindow)
		}
		if tr.CooldownMinutes != 120 || tr.Response != ResponsePopup {
			t.Errorf("cooldown/response not parsed: %+v", tr)
		}
	})

	t.Run("malformed yaml errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "triggers.yaml")
		if err := os.WriteFile(path, []byte("triggers: [not closed"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTriggersFile(path); err == nil {
			t.Errorf("malformed file accepted")
		}
	})

	t.Run("empty trigger id errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "triggers.yaml")
		content := "triggers:\n  - type: x\n    enabled: true\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTriggersFile(path); err == nil {
			t.Errorf("trigger without id accepted")
		}
	})

	t.Run("unknown metric tolerated", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "triggers.yaml")
		content := `triggers:
  - id: mystery
    type: x
    enabled: true
    condition:
      metric: somethingElse
      operator: ">"
      threshold: 1
    cooldown: 60
    response: popup
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		triggers, err := LoadTriggersFile(path)
		if err != nil {
			t.Fatalf("LoadTriggersFile: %v", err)
		}
		if len(triggers) != 1 {
			t.Errorf("got %d triggers, want 1", len(triggers))
		}
		// The trigger loads but its condition can never match.
		m := healthyMetrics()
		m.OverdueTasksCount = 10
		if got := CheckTriggers(triggers, m, morning); got != nil {
			t.Errorf("trigger with unknown metric fired")
		}
	})
}
