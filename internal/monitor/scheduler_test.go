package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/questpulse/questpulse/internal/types"
)

func newTestScheduler(t *testing.T, source MetricsSource, registry *Registry, sink InterventionSink, clock Clock) *Scheduler {
	t.Helper()
	s, err := NewScheduler(&SchedulerDeps{
		Source:   source,
		Registry: registry,
		Sink:     sink,
		Clock:    clock,
		Config: &Config{
			Enabled:       true,
			CheckInterval: time.Hour,
		},
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	return s
}

func TestNewSchedulerValidation(t *testing.T) {
	source := &fakeSource{}
	registry := NewRegistry()
	sink := &fakeSink{}

	tests := []struct {
		name string
		deps *SchedulerDeps
	}{
		{"missing source", &SchedulerDeps{Registry: registry, Sink: sink}},
		{"missing registry", &SchedulerDeps{Source: source, Sink: sink}},
		{"missing sink", &SchedulerDeps{Source: source, Registry: registry}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewScheduler(tt.deps); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}

func TestManualCheck_PublishesSnapshot(t *testing.T) {
	clock := &fakeClock{now: testNow}
	deadline := testNow.Add(-2 * time.Hour)
	source := &fakeSource{
		tasks: []*types.Task{
			{
				ID:        "t1",
				Title:     "overdue report",
				Type:      types.TaskTypeTax,
				Status:    types.TaskStatusOpen,
				Deadline:  &deadline,
				CreatedAt: testNow.Add(-48 * time.Hour),
			},
		},
	}

	s := newTestScheduler(t, source, NewRegistry(), &fakeSink{}, clock)

	if s.LatestMetrics() != nil {
		t.Fatal("snapshot published before any tick")
	}

	m, err := s.ManualCheck(context.Background())
	if err != nil {
		t.Fatalf("ManualCheck: %v", err)
	}
	if m.OverdueTasksCount != 1 {
		t.Errorf("overdue tasks = %d, want 1", m.OverdueTasksCount)
	}
	if m.OverallStatus == "" {
		t.Errorf("snapshot published without a status")
	}
	if s.LatestMetrics() != m {
		t.Errorf("LatestMetrics does not return the published snapshot")
	}
}

func TestManualCheck_DispatchesSelectedTrigger(t *testing.T) {
	clock := &fakeClock{now: testNow}
	deadline := testNow.Add(-2 * time.Hour)
	var tasks []*types.Task
	for _, id := range []string{"t1", "t2", "t3"} {
		tasks = append(tasks, &types.Task{
			ID:        id,
			Title:     "overdue " + id,
			Type:      types.TaskTypeTax,
			Status:    types.TaskStatusOpen,
			Deadline:  &deadline,
			CreatedAt: testNow.Add(-48 * time.Hour),
		})
	}
	source := &fakeSource{tasks: tasks}

	registry := NewRegistry()
	for _, tr := range DefaultTriggers() {
		if err := registry.Register(tr); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	sink := &fakeSink{}
	s := newTestScheduler(t, source, registry, sink, clock)

	if _, err := s.ManualCheck(context.Background()); err != nil {
		t.Fatalf("ManualCheck: %v", err)
	}

	if sink.count() != 1 {
		t.Fatalf("sink received %d interventions, want 1", sink.count())
	}
	if got := sink.delivered[0].TriggerID; got != "overdue-pileup" {
		t.Errorf("dispatched %s, want overdue-pileup", got)
	}

	// Immediately re-checking must respect the freshly stamped cooldown.
	clock.advance(10 * time.Minute)
	if _, err := s.ManualCheck(context.Background()); err != nil {
		t.Fatalf("second ManualCheck: %v", err)
	}
	if sink.count() != 1 {
		t.Errorf("cooldown not honored: sink received %d interventions", sink.count())
	}

	// After the cooldown elapses the trigger fires again.
	clock.advance(250 * time.Minute)
	if _, err := s.ManualCheck(context.Background()); err != nil {
		t.Fatalf("third ManualCheck: %v", err)
	}
	if sink.count() != 2 {
		t.Errorf("trigger did not re-fire after cooldown: sink received %d interventions", sink.count())
	}
}

func TestManualCheck_ActiveInterventionSuppressesDispatch(t *testing.T) {
	clock := &fakeClock{now: testNow}
	deadline := testNow.Add(-2 * time.Hour)
	var tasks []*types.Task
	for _, id := range []string{"t1", "t2", "t3"} {
		tasks = append(tasks, &types.Task{
			ID:        id,
			Title:     "overdue " + id,
			Type:      types.TaskTypeTax,
			Status:    types.TaskStatusOpen,
			Deadline:  &deadline,
			CreatedAt: testNow.Add(-48 * time.Hour),
		})
	}

	registry := NewRegistry()
	for _, tr := range DefaultTriggers() {
		if err := registry.Register(tr); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	sink := &fakeSink{}
	active := true
	s, err := NewScheduler(&SchedulerDeps{
		Source:             &fakeSource{tasks: tasks},
		Registry:           registry,
		Sink:               sink,
		ActiveIntervention: func() bool { return active },
		Clock:              clock,
		Config:             &Config{Enabled: true, CheckInterval: time.Hour},
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	if _, err := s.ManualCheck(context.Background()); err != nil {
		t.Fatalf("ManualCheck: %v", err)
	}
	if sink.count() != 0 {
		t.Fatal("dispatched despite active intervention")
	}
	if tr := registry.Get("overdue-pileup"); tr.LastTriggered != nil {
		t.Fatal("cooldown stamped while suppressed")
	}

	// Once the intervention clears, the very next tick dispatches.
	active = false
	clock.advance(time.Minute)
	if _, err := s.ManualCheck(context.Background()); err != nil {
		t.Fatalf("ManualCheck after clear: %v", err)
	}
	if sink.count() != 1 {
		t.Fatalf("sink received %d interventions after clear, want 1", sink.count())
	}
}

func TestManualCheck_SourceFailureSurfaces(t *testing.T) {
	source := &fakeSource{err: errors.New("storage down")}
	s := newTestScheduler(t, source, NewRegistry(), &fakeSink{}, &fakeClock{now: testNow})

	if _, err := s.ManualCheck(context.Background()); err == nil {
		t.Fatal("expected error from failing source")
	}
	if s.LatestMetrics() != nil {
		t.Errorf("failed tick must not publish a snapshot")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	source := &fakeSource{}
	s := newTestScheduler(t, source, NewRegistry(), &fakeSink{}, &fakeClock{now: testNow})

	ctx := context.Background()
	s.Start(ctx)
	if !s.Running() {
		t.Fatal("not running after Start")
	}

	// Second Start is a no-op
	s.Start(ctx)

	// The immediate tick publishes a snapshot; wait briefly for it.
	deadline := time.Now().Add(2 * time.Second)
	for s.LatestMetrics() == nil && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.LatestMetrics() == nil {
		t.Fatal("no snapshot after Start")
	}

	s.Stop()
	if s.Running() {
		t.Fatal("still running after Stop")
	}

	// Stop is idempotent
	s.Stop()
}

func TestSchedulerDisabledByConfig(t *testing.T) {
	s, err := NewScheduler(&SchedulerDeps{
		Source:   &fakeSource{},
		Registry: NewRegistry(),
		Sink:     &fakeSink{},
		Clock:    &fakeClock{now: testNow},
		Config: &Config{
			Enabled:       false,
			CheckInterval: time.Hour,
		},
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	s.Start(context.Background())
	if s.Running() {
		t.Fatal("disabled scheduler started anyway")
	}
}

func TestSchedulerLoopSurvivesSourceFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("storage down")}
	s := newTestScheduler(t, source, NewRegistry(), &fakeSink{}, &fakeClock{now: testNow})

	s.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	if !s.Running() {
		t.Fatal("scheduler died on a failing tick")
	}
	s.Stop()
}
