// Package events defines the append-only productivity event stream.
// Events are emitted as the user works and are never mutated; the health
// monitor reads them back by type and time range.
package events

import "time"

// EventType identifies what happened
type EventType string

const (
	// EventTypeTaskCompleted indicates a task was marked done
	EventTypeTaskCompleted EventType = "task.completed"
	// EventTypeChecklistTick indicates a single checklist item on a task was ticked
	EventTypeChecklistTick EventType = "task.checklist_tick"
	// EventTypeTaskPostponed indicates a task deadline was pushed back
	EventTypeTaskPostponed EventType = "task.postponed"
	// EventTypeQuestCompleted indicates a quest reached 100% and was closed
	EventTypeQuestCompleted EventType = "quest.completed"
	// EventTypeReflectionRecorded indicates the user logged a reflection
	EventTypeReflectionRecorded EventType = "reflection.recorded"
)

// ProductivityEvent is a single immutable entry in the event stream
type ProductivityEvent struct {
	// ID is a unique identifier for this event
	ID string
	// Type categorizes the event
	Type EventType
	// Timestamp is when the event occurred
	Timestamp time.Time
	// TaskID is the task involved, if any
	TaskID string
	// QuestID is the quest involved, if any
	QuestID string
	// Note carries optional free-form detail
	Note string
}

// Filter selects a subset of the event stream
type Filter struct {
	// Types restricts results to these event types (empty = all types)
	Types []EventType
	// Since excludes events at or before this time (zero = no lower bound)
	Since time.Time
	// Until excludes events after this time (zero = no upper bound)
	Until time.Time
	// Limit caps the number of results (0 = no limit)
	Limit int
}

// Matches reports whether an event passes the filter's type and time bounds
func (f Filter) Matches(e *ProductivityEvent) bool {
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if e.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.Since.IsZero() && !e.Timestamp.After(f.Since) {
		return false
	}
	if !f.Until.IsZero() && e.Timestamp.After(f.Until) {
		return false
	}
	return true
}
