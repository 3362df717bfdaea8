// Package storage defines the persistence interface for questpulse data.
package storage

import (
	"context"
	"time"

	"github.com/questpulse/questpulse/internal/events"
	"github.com/questpulse/questpulse/internal/monitor"
	"github.com/questpulse/questpulse/internal/types"
)

// Storage is the persistence boundary for questpulse. The read side
// doubles as the monitor engine's MetricsSource; MarkTriggerFired makes
// it the engine's TriggerStore as well, so trigger cooldowns survive
// process restarts.
type Storage interface {
	// Tasks
	CreateTask(ctx context.Context, task *types.Task) error
	UpdateTask(ctx context.Context, task *types.Task) error
	ListTasks(ctx context.Context) ([]*types.Task, error)

	// Quests
	CreateQuest(ctx context.Context, quest *types.Quest) error
	UpdateQuest(ctx context.Context, quest *types.Quest) error
	ListQuests(ctx context.Context) ([]*types.Quest, error)

	// Chapters & seasons
	CreateChapter(ctx context.Context, chapter *types.Chapter) error
	ListChapters(ctx context.Context) ([]*types.Chapter, error)
	CreateSeason(ctx context.Context, season *types.Season) error
	ListSeasons(ctx context.Context) ([]*types.Season, error)

	// Reflections
	CreateReflection(ctx context.Context, reflection *types.Reflection) error
	RecentReflections(ctx context.Context, limit int) ([]*types.Reflection, error)

	// Productivity events - append-only
	AppendEvent(ctx context.Context, event *events.ProductivityEvent) error
	QueryEvents(ctx context.Context, filter events.Filter) ([]*events.ProductivityEvent, error)

	// Triggers
	SaveTrigger(ctx context.Context, trigger *monitor.Trigger) error
	ListTriggers(ctx context.Context) ([]*monitor.Trigger, error)
	DeleteTrigger(ctx context.Context, triggerID string) error
	MarkTriggerFired(ctx context.Context, triggerID string, at time.Time) error

	Close() error
}
