package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/questpulse/questpulse/internal/events"
	"github.com/questpulse/questpulse/internal/types"
)

// fakeSource is an in-memory MetricsSource for tests
type fakeSource struct {
	tasks       []*types.Task
	quests      []*types.Quest
	chapters    []*types.Chapter
	reflections []*types.Reflection
	events      []*events.ProductivityEvent

	// err, if set, is returned from every method
	err error
}

func (f *fakeSource) ListTasks(ctx context.Context) ([]*types.Task, error) {
	return f.tasks, f.err
}

func (f *fakeSource) ListQuests(ctx context.Context) ([]*types.Quest, error) {
	return f.quests, f.err
}

func (f *fakeSource) ListChapters(ctx context.Context) ([]*types.Chapter, error) {
	return f.chapters, f.err
}

func (f *fakeSource) RecentReflections(ctx context.Context, limit int) ([]*types.Reflection, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.reflections) > limit {
		return f.reflections[:limit], nil
	}
	return f.reflections, nil
}

func (f *fakeSource) QueryEvents(ctx context.Context, filter events.Filter) ([]*events.ProductivityEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*events.ProductivityEvent
	for _, e := range f.events {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	// newest first, as the storage layer returns them
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Timestamp.After(out[i].Timestamp) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// fakeSink records delivered interventions
type fakeSink struct {
	mu        sync.Mutex
	delivered []*InterventionRequest
	err       error
}

func (f *fakeSink) Deliver(ctx context.Context, req *InterventionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.delivered = append(f.delivered, req)
	return nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.delivered)
}

// fakeTriggerStore records cooldown stamps
type fakeTriggerStore struct {
	mu    sync.Mutex
	fired map[string]time.Time
}

func newFakeTriggerStore() *fakeTriggerStore {
	return &fakeTriggerStore{fired: make(map[string]time.Time)}
}

func (f *fakeTriggerStore) MarkTriggerFired(ctx context.Context, triggerID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fired[triggerID] = at
	return nil
}

// fakeClock returns a fixed, manually advanced time
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func timePtrOf(t time.Time) *time.Time { return &t }
