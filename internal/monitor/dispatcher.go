package monitor

import (
	"context"
	"fmt"
	"time"
)

// InterventionRequest is what the engine hands to the intervention sink.
// The sink owns everything user-facing from here: rendering, chat
// hand-off, message wording.
type InterventionRequest struct {
	// TriggerID identifies which trigger fired
	TriggerID string
	// TriggerType is the trigger's configured type label
	TriggerType string
	// Response is the escalation level the trigger is configured for
	Response ResponseLevel
	// Metrics is the snapshot that made the trigger fire
	Metrics *HealthMetrics
	// RequestedAt is the tick time
	RequestedAt time.Time
}

// InterventionSink receives dispatched interventions. Implementations are
// responsible for surfacing the experience to the user.
type InterventionSink interface {
	Deliver(ctx context.Context, req *InterventionRequest) error
}

// TriggerStore persists trigger state across restarts. The engine writes
// only the last-fired timestamp.
type TriggerStore interface {
	// MarkTriggerFired records that a trigger dispatched at the given time
	MarkTriggerFired(ctx context.Context, triggerID string, at time.Time) error
}

// Dispatcher hands a selected trigger to the intervention sink and stamps
// its cooldown. At most one intervention may be active at a time; the
// activeFn callback reports whether the external consumer currently has
// one showing.
type Dispatcher struct {
	sink     InterventionSink
	registry *Registry
	store    TriggerStore
	activeFn func() bool
}

// DispatcherConfig holds dependencies for creating a Dispatcher
type DispatcherConfig struct {
	Sink     InterventionSink
	Registry *Registry
	// Store is optional; without it cooldowns survive only in memory
	Store TriggerStore
	// ActiveIntervention reports whether an intervention is currently
	// active. Optional; nil means never blocked.
	ActiveIntervention func() bool
}

// NewDispatcher creates a dispatcher
func NewDispatcher(cfg *DispatcherConfig) (*Dispatcher, error) {
	if cfg.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	return &Dispatcher{
		sink:     cfg.Sink,
		registry: cfg.Registry,
		store:    cfg.Store,
		activeFn: cfg.ActiveIntervention,
	}, nil
}

// Dispatch delivers the trigger to the sink and stamps LastTriggered.
// Returns false without error when suppressed because an intervention is
// already active; in that case the cooldown is NOT started and the trigger
// stays a live candidate on subsequent ticks until dispatched or it stops
// matching. This dispatch-time cooldown semantics is deliberate: a trigger
// blocked by an active intervention can match repeatedly without ever
// starting its cooldown.
func (d *Dispatcher) Dispatch(ctx context.Context, t *Trigger, m *HealthMetrics, now time.Time) (bool, error) {
	if t == nil {
		return false, nil
	}
	if d.activeFn != nil && d.activeFn() {
		return false, nil
	}

	req := &InterventionRequest{
		TriggerID:   t.ID,
		TriggerType: t.Type,
		Response:    t.Response,
		Metrics:     m,
		RequestedAt: now,
	}
	if err := d.sink.Deliver(ctx, req); err != nil {
		return false, fmt.Errorf("intervention sink failed: %w", err)
	}

	// Cooldown starts only now, after the sink accepted the hand-off
	if err := d.registry.MarkFired(t.ID, now); err != nil {
		return true, fmt.Errorf("failed to stamp trigger cooldown: %w", err)
	}
	if d.store != nil {
		if err := d.store.MarkTriggerFired(ctx, t.ID, now); err != nil {
			// The in-memory stamp holds for this process; losing the
			// persisted stamp only risks one early re-fire after restart.
			fmt.Printf("Monitor: warning: failed to persist trigger %s fire time: %v\n", t.ID, err)
		}
	}

	return true, nil
}
