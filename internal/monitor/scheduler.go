package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Clock supplies the current time. Injected so a tick is reproducible in
// tests with a fake clock; the pipeline itself never calls time.Now.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock
type SystemClock struct{}

// Now returns the current wall-clock time
func (SystemClock) Now() time.Time { return time.Now() }

// Scheduler drives the health pipeline on a fixed interval: collect
// metrics, classify status, check triggers, dispatch at most one
// intervention. It runs once immediately on Start, supports Stop and
// manual on-demand invocation, and isolates failures per tick so the
// loop self-heals at the next interval.
type Scheduler struct {
	mu sync.RWMutex

	collector  *Collector
	registry   *Registry
	dispatcher *Dispatcher
	clock      Clock
	config     *Config

	// tickGuard prevents overlapping ticks: collection does real storage
	// I/O, so a slow tick must not race the next scheduled one
	tickGuard *semaphore.Weighted

	// latest is the most recent published snapshot; only this engine
	// writes it, readers must treat it as immutable
	latest *HealthMetrics

	// failureLog throttles repeated tick-failure logging
	failureLog rate.Sometimes

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// SchedulerDeps holds dependencies for creating a Scheduler
type SchedulerDeps struct {
	Source   MetricsSource
	Registry *Registry
	Sink     InterventionSink

	// TriggerStore is optional; without it cooldowns are in-memory only
	TriggerStore TriggerStore
	// ActiveIntervention reports whether an intervention is currently
	// active (optional)
	ActiveIntervention func() bool
	// Clock defaults to SystemClock
	Clock Clock
	// Config defaults to DefaultConfig()
	Config *Config
}

// NewScheduler creates a scheduler with its dependencies injected.
// The session start time (used as the completion-recency fallback) is
// taken from the clock at construction.
func NewScheduler(deps *SchedulerDeps) (*Scheduler, error) {
	if deps.Source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if deps.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	config := deps.Config
	if config == nil {
		config = DefaultConfig()
	}

	collector, err := NewCollector(deps.Source, clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to create collector: %w", err)
	}

	dispatcher, err := NewDispatcher(&DispatcherConfig{
		Sink:               deps.Sink,
		Registry:           deps.Registry,
		Store:              deps.TriggerStore,
		ActiveIntervention: deps.ActiveIntervention,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	return &Scheduler{
		collector:  collector,
		registry:   deps.Registry,
		dispatcher: dispatcher,
		clock:      clock,
		config:     config,
		tickGuard:  semaphore.NewWeighted(1),
		failureLog: rate.Sometimes{Interval: 5 * time.Minute},
	}, nil
}

// Start begins the monitoring loop: one tick immediately, then one per
// CheckInterval. Idempotent; calling Start on a running scheduler is a
// no-op. Tick errors are never surfaced to the caller of Start.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		fmt.Println("Monitor: disabled by configuration, not starting")
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop()

	fmt.Printf("Monitor: started (check_interval=%v)\n", s.config.CheckInterval)
}

// Stop halts future ticks. An in-flight tick runs to completion.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
	fmt.Println("Monitor: stopped")
}

// Running reports whether the scheduler loop is active
func (s *Scheduler) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// ManualCheck runs one tick on demand, usable whether or not the loop is
// running, and returns the resulting snapshot. Unlike scheduled ticks,
// errors are returned to the caller since an operator asked for this run.
func (s *Scheduler) ManualCheck(ctx context.Context) (*HealthMetrics, error) {
	if !s.tickGuard.TryAcquire(1) {
		return nil, fmt.Errorf("a check is already in progress")
	}
	defer s.tickGuard.Release(1)

	return s.tick(ctx, s.clock.Now())
}

// LatestMetrics returns the most recently published snapshot, or nil if
// no tick has completed yet. The snapshot is immutable once published.
func (s *Scheduler) LatestMetrics() *HealthMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	s.safeTick()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.safeTick()
		}
	}
}

// safeTick runs one tick with full failure isolation: errors and panics
// are logged and swallowed so the loop always reaches its next interval.
// If the previous tick is still running this one is skipped.
func (s *Scheduler) safeTick() {
	if !s.tickGuard.TryAcquire(1) {
		fmt.Println("Monitor: previous check still running, skipping tick")
		return
	}
	defer s.tickGuard.Release(1)

	defer func() {
		if r := recover(); r != nil {
			s.failureLog.Do(func() {
				fmt.Printf("Monitor: check panicked: %v\n", r)
			})
		}
	}()

	if _, err := s.tick(s.ctx, s.clock.Now()); err != nil {
		s.failureLog.Do(func() {
			fmt.Printf("Monitor: check failed: %v\n", err)
		})
	}
}

// tick runs the full pipeline for a single instant. now is threaded
// through every stage so the whole tick is reproducible.
func (s *Scheduler) tick(ctx context.Context, now time.Time) (*HealthMetrics, error) {
	m, err := s.collector.Collect(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("metrics collection failed: %w", err)
	}

	m.OverallStatus, m.StatusReasons = EvaluateStatus(m, now)

	s.mu.Lock()
	s.latest = m
	s.mu.Unlock()

	selected := CheckTriggers(s.registry.All(), m, now)
	if selected == nil {
		if s.config.LogEvaluations {
			fmt.Printf("Monitor: status=%s, no trigger eligible\n", m.OverallStatus)
		}
		return m, nil
	}

	dispatched, err := s.dispatcher.Dispatch(ctx, selected, m, now)
	if err != nil {
		return m, fmt.Errorf("dispatch of trigger %s failed: %w", selected.ID, err)
	}
	if dispatched {
		fmt.Printf("Monitor: dispatched intervention %s (%s, level=%s)\n", selected.ID, selected.Type, selected.Response)
	} else if s.config.LogEvaluations {
		fmt.Printf("Monitor: trigger %s matched but an intervention is already active\n", selected.ID)
	}

	return m, nil
}
