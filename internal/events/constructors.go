package events

import (
	"time"

	"github.com/google/uuid"
)

// NewTaskCompletedEvent creates a new event recording a task completion.
func NewTaskCompletedEvent(taskID, questID string, at time.Time) *ProductivityEvent {
	return &ProductivityEvent{
		ID:        uuid.New().String(),
		Type:      EventTypeTaskCompleted,
		Timestamp: at,
		TaskID:    taskID,
		QuestID:   questID,
	}
}

// NewChecklistTickEvent creates a new event recording a checklist item tick.
func NewChecklistTickEvent(taskID string, at time.Time, note string) *ProductivityEvent {
	return &ProductivityEvent{
		ID:        uuid.New().String(),
		Type:      EventTypeChecklistTick,
		Timestamp: at,
		TaskID:    taskID,
		Note:      note,
	}
}

// NewTaskPostponedEvent creates a new event recording a deadline postponement.
func NewTaskPostponedEvent(taskID string, at time.Time) *ProductivityEvent {
	return &ProductivityEvent{
		ID:        uuid.New().String(),
		Type:      EventTypeTaskPostponed,
		Timestamp: at,
		TaskID:    taskID,
	}
}

// NewQuestCompletedEvent creates a new event recording a quest completion.
func NewQuestCompletedEvent(questID string, at time.Time) *ProductivityEvent {
	return &ProductivityEvent{
		ID:        uuid.New().String(),
		Type:      EventTypeQuestCompleted,
		Timestamp: at,
		QuestID:   questID,
	}
}

// NewReflectionRecordedEvent creates a new event recording a reflection entry.
func NewReflectionRecordedEvent(at time.Time) *ProductivityEvent {
	return &ProductivityEvent{
		ID:        uuid.New().String(),
		Type:      EventTypeReflectionRecorded,
		Timestamp: at,
	}
}
