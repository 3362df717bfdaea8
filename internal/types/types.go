// Package types defines the core domain model shared across questpulse:
// tasks, quests, the season/chapter hierarchy, and reflections.
package types

import "time"

// TaskType categorizes a task by the kind of work it represents.
// The health monitor weights completion rates by task type.
type TaskType string

const (
	// TaskTypeCreative is deep, generative work (writing, building, designing)
	TaskTypeCreative TaskType = "creative"
	// TaskTypeTax is obligatory administrative work (email, errands, paperwork)
	TaskTypeTax TaskType = "tax"
	// TaskTypeMaintenance is recurring upkeep (cleaning, exercise, review)
	TaskTypeMaintenance TaskType = "maintenance"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusOpen      TaskStatus = "open"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusArchived  TaskStatus = "archived"
)

// Task is a single unit of work, optionally linked to a quest
type Task struct {
	ID    string
	Title string
	Type  TaskType

	Status TaskStatus

	// QuestID links this task to a quest (empty if standalone)
	QuestID string

	// ScheduledFor is the day this task is planned for (nil if unscheduled)
	ScheduledFor *time.Time

	// Deadline is the hard due date (nil if none)
	Deadline *time.Time

	// PostponeCount tracks how many times the deadline has been pushed back
	PostponeCount int

	CreatedAt   time.Time
	CompletedAt *time.Time
	ArchivedAt  *time.Time
}

// Completed reports whether the task has been finished
func (t *Task) Completed() bool {
	return t.Status == TaskStatusCompleted
}

// Overdue reports whether the task has a deadline in the past and is still open
func (t *Task) Overdue(now time.Time) bool {
	return t.Status == TaskStatusOpen && t.Deadline != nil && t.Deadline.Before(now)
}

// QuestStatus represents the lifecycle state of a quest
type QuestStatus string

const (
	QuestStatusActive    QuestStatus = "active"
	QuestStatusCompleted QuestStatus = "completed"
	QuestStatusArchived  QuestStatus = "archived"
)

// Quest is a medium-term goal made up of tasks, optionally linked to a chapter
type Quest struct {
	ID    string
	Title string

	Status QuestStatus

	// ChapterID links this quest to a chapter (empty if standalone)
	ChapterID string

	// Progress is percent complete, 0-100
	Progress float64

	// Deadline is the target completion date (nil if open-ended)
	Deadline *time.Time

	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Active reports whether the quest is still being pursued
func (q *Quest) Active() bool {
	return q.Status == QuestStatusActive
}

// Overdue reports whether an active quest has blown past its deadline
func (q *Quest) Overdue(now time.Time) bool {
	return q.Active() && q.Deadline != nil && q.Deadline.Before(now)
}

// Chapter is a narrative grouping of quests within a season
type Chapter struct {
	ID    string
	Title string

	// SeasonID links this chapter to a season (empty if standalone)
	SeasonID string

	// Deadline is the target end date for the chapter (nil if open-ended)
	Deadline *time.Time

	CreatedAt time.Time
}

// Season is the top of the planning hierarchy: a multi-month arc of chapters
type Season struct {
	ID    string
	Title string

	StartsAt time.Time
	EndsAt   time.Time

	CreatedAt time.Time
}

// EnergyState is a self-reported energy level captured in a reflection
type EnergyState string

const (
	EnergyHigh   EnergyState = "high"
	EnergyMedium EnergyState = "medium"
	EnergyLow    EnergyState = "low"
)

// Score maps an energy state to a numeric value for averaging.
// Unknown states score as medium.
func (e EnergyState) Score() float64 {
	switch e {
	case EnergyHigh:
		return 3
	case EnergyLow:
		return 1
	default:
		return 2
	}
}

// Reflection is a journal entry the user records at the end of a work session
type Reflection struct {
	ID          string
	EnergyState EnergyState
	Note        string
	CreatedAt   time.Time
}
