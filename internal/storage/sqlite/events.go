package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/questpulse/questpulse/internal/events"
)

// AppendEvent stores a productivity event. Events are append-only; there
// is deliberately no update or delete path.
func (s *SQLiteStorage) AppendEvent(ctx context.Context, event *events.ProductivityEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO productivity_events (id, type, timestamp, task_id, quest_id, note)
		VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID, string(event.Type), event.Timestamp, event.TaskID, event.QuestID, event.Note)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// QueryEvents returns events matching the filter, newest first.
// Since is exclusive, Until is inclusive, matching the weekly-trend
// window semantics (now-7d, now].
func (s *SQLiteStorage) QueryEvents(ctx context.Context, filter events.Filter) ([]*events.ProductivityEvent, error) {
	query := `SELECT id, type, timestamp, task_id, quest_id, note FROM productivity_events`
	var conds []string
	var args []interface{}

	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		conds = append(conds, fmt.Sprintf("type IN (%s)", strings.Join(placeholders, ", ")))
	}
	if !filter.Since.IsZero() {
		conds = append(conds, "timestamp > ?")
		args = append(args, filter.Since)
	}
	if !filter.Until.IsZero() {
		conds = append(conds, "timestamp <= ?")
		args = append(args, filter.Until)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var result []*events.ProductivityEvent
	for rows.Next() {
		var e events.ProductivityEvent
		var eventType string
		if err := rows.Scan(&e.ID, &eventType, &e.Timestamp, &e.TaskID, &e.QuestID, &e.Note); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Type = events.EventType(eventType)
		result = append(result, &e)
	}
	return result, rows.Err()
}

// nullString converts an empty link ID to NULL so foreign key columns
// accept standalone rows; '' is a real value to SQLite and would demand
// a parent row with that id.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nullTime converts a *time.Time to a driver-friendly nullable value
func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

// timePtr converts a scanned sql.NullTime back to a *time.Time
func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
