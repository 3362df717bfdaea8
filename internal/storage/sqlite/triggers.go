package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/questpulse/questpulse/internal/monitor"
)

// SaveTrigger upserts a trigger definition. The persisted last_triggered
// is preserved on conflict unless the incoming trigger carries one, so
// reloading trigger config does not reset live cooldowns.
func (s *SQLiteStorage) SaveTrigger(ctx context.Context, trigger *monitor.Trigger) error {
	var windowStart, windowEnd string
	if trigger.Condition.TimeWindow != nil {
		windowStart = trigger.Condition.TimeWindow.Start
		windowEnd = trigger.Condition.TimeWindow.End
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO triggers (id, type, enabled, metric, operator, threshold, custom_type,
			window_start, window_end, cooldown_minutes, last_triggered, response_level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			enabled = excluded.enabled,
			metric = excluded.metric,
			operator = excluded.operator,
			threshold = excluded.threshold,
			custom_type = excluded.custom_type,
			window_start = excluded.window_start,
			window_end = excluded.window_end,
			cooldown_minutes = excluded.cooldown_minutes,
			last_triggered = COALESCE(excluded.last_triggered, triggers.last_triggered),
			response_level = excluded.response_level`,
		trigger.ID, trigger.Type, trigger.Enabled, string(trigger.Condition.Metric),
		string(trigger.Condition.Operator), trigger.Condition.Threshold, trigger.Condition.CustomType,
		windowStart, windowEnd, trigger.CooldownMinutes,
		nullTime(trigger.LastTriggered), string(trigger.Response))
	if err != nil {
		return fmt.Errorf("failed to save trigger: %w", err)
	}
	return nil
}

// ListTriggers returns all persisted triggers in insertion order
func (s *SQLiteStorage) ListTriggers(ctx context.Context) ([]*monitor.Trigger, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, enabled, metric, operator, threshold, custom_type,
			window_start, window_end, cooldown_minutes, last_triggered, response_level
		FROM triggers ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list triggers: %w", err)
	}
	defer rows.Close()

	var triggers []*monitor.Trigger
	for rows.Next() {
		var t monitor.Trigger
		var metric, operator, customType, windowStart, windowEnd, response string
		var lastTriggered sql.NullTime
		if err := rows.Scan(&t.ID, &t.Type, &t.Enabled, &metric, &operator, &t.Condition.Threshold,
			&customType, &windowStart, &windowEnd, &t.CooldownMinutes, &lastTriggered, &response); err != nil {
			return nil, fmt.Errorf("failed to scan trigger: %w", err)
		}
		t.Condition.Metric = monitor.MetricSelector(metric)
		t.Condition.Operator = monitor.Operator(operator)
		t.Condition.CustomType = customType
		if windowStart != "" && windowEnd != "" {
			t.Condition.TimeWindow = &monitor.TimeWindow{Start: windowStart, End: windowEnd}
		}
		t.LastTriggered = timePtr(lastTriggered)
		t.Response = monitor.ResponseLevel(response)
		triggers = append(triggers, &t)
	}
	return triggers, rows.Err()
}

// DeleteTrigger removes a persisted trigger. Deleting an unknown id is a
// no-op so config pruning is idempotent.
func (s *SQLiteStorage) DeleteTrigger(ctx context.Context, triggerID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM triggers WHERE id = ?`, triggerID)
	if err != nil {
		return fmt.Errorf("failed to delete trigger: %w", err)
	}
	return nil
}

// MarkTriggerFired records a dispatch time for cooldown persistence
func (s *SQLiteStorage) MarkTriggerFired(ctx context.Context, triggerID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE triggers SET last_triggered = ? WHERE id = ?`, at, triggerID)
	if err != nil {
		return fmt.Errorf("failed to mark trigger fired: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("trigger %s not found", triggerID)
	}
	return nil
}
