package monitor

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestDispatcher(t *testing.T, sink InterventionSink, registry *Registry, store TriggerStore, activeFn func() bool) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(&DispatcherConfig{
		Sink:               sink,
		Registry:           registry,
		Store:              store,
		ActiveIntervention: activeFn,
	})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return d
}

func TestNewDispatcherValidation(t *testing.T) {
	if _, err := NewDispatcher(&DispatcherConfig{Registry: NewRegistry()}); err == nil {
		t.Errorf("missing sink accepted")
	}
	if _, err := NewDispatcher(&DispatcherConfig{Sink: &fakeSink{}}); err == nil {
		t.Errorf("missing registry accepted")
	}
}

func TestDispatch_DeliversAndStampsCooldown(t *testing.T) {
	sink := &fakeSink{}
	store := newFakeTriggerStore()
	registry := NewRegistry()

	tr := numericTrigger("overdue", ResponseCoach, MetricOverdueTasksCount, OpGreaterEqual, 3)
	if err := registry.Register(tr); err != nil {
		t.Fatalf("Register: %v", err)
	}

	d := newTestDispatcher(t, sink, registry, store, nil)

	m := healthyMetrics()
	m.OverdueTasksCount = 4
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	dispatched, err := d.Dispatch(context.Background(), tr, m, now)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !dispatched {
		t.Fatal("Dispatch returned false")
	}

	if sink.count() != 1 {
		t.Fatalf("sink received %d requests, want 1", sink.count())
	}
	req := sink.delivered[0]
	if req.TriggerID != "overdue" || req.Response != ResponseCoach || !req.RequestedAt.Equal(now) {
		t.Errorf("unexpected request: %+v", req)
	}
	if req.Metrics != m {
		t.Errorf("request should carry the snapshot that fired")
	}

	// Cooldown stamped in memory and persisted
	if tr.LastTriggered == nil || !tr.LastTriggered.Equal(now) {
		t.Errorf("LastTriggered = %v, want %v", tr.LastTriggered, now)
	}
	if at, ok := store.fired["overdue"]; !ok || !at.Equal(now) {
		t.Errorf("store stamp = %v (%v), want %v", at, ok, now)
	}
}

func TestDispatch_SuppressedWhileInterventionActive(t *testing.T) {
	sink := &fakeSink{}
	registry := NewRegistry()

	tr := numericTrigger("overdue", ResponseCoach, MetricOverdueTasksCount, OpGreaterEqual, 3)
	if err := registry.Register(tr); err != nil {
		t.Fatalf("Register: %v", err)
	}

	active := true
	d := newTestDispatcher(t, sink, registry, newFakeTriggerStore(), func() bool { return active })

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	dispatched, err := d.Dispatch(context.Background(), tr, healthyMetrics(), now)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if dispatched {
		t.Fatal("dispatched despite active intervention")
	}

	// Suppression must not consume the cooldown: the trigger stays a live
	// candidate until it actually dispatches.
	if sink.count() != 0 {
		t.Errorf("sink received a request while suppressed")
	}
	if tr.LastTriggered != nil {
		t.Errorf("LastTriggered stamped on suppression: %v", tr.LastTriggered)
	}

	// Once the intervention clears, the same trigger dispatches.
	active = false
	dispatched, err = d.Dispatch(context.Background(), tr, healthyMetrics(), now.Add(10*time.Minute))
	if err != nil || !dispatched {
		t.Fatalf("Dispatch after clear: dispatched=%v err=%v", dispatched, err)
	}
	if tr.LastTriggered == nil {
		t.Errorf("LastTriggered not stamped on real dispatch")
	}
}

func TestDispatch_SinkFailureLeavesCooldownUnstamped(t *testing.T) {
	sink := &fakeSink{err: errors.New("delivery down")}
	registry := NewRegistry()

	tr := numericTrigger("overdue", ResponseCoach, MetricOverdueTasksCount, OpGreaterEqual, 3)
	if err := registry.Register(tr); err != nil {
		t.Fatalf("Register: %v", err)
	}

	d := newTestDispatcher(t, sink, registry, nil, nil)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	dispatched, err := d.Dispatch(context.Background(), tr, healthyMetrics(), now)
	if err == nil {
		t.Fatal("expected error from failing sink")
	}
	if dispatched {
		t.Fatal("reported dispatched despite sink failure")
	}
	if tr.LastTriggered != nil {
		t.Errorf("cooldown stamped even though delivery failed")
	}
}

func TestDispatch_NilTriggerIsNoop(t *testing.T) {
	sink := &fakeSink{}
	d := newTestDispatcher(t, sink, NewRegistry(), nil, nil)

	dispatched, err := d.Dispatch(context.Background(), nil, healthyMetrics(), time.Now())
	if err != nil || dispatched {
		t.Errorf("nil trigger: dispatched=%v err=%v, want false, nil", dispatched, err)
	}
	if sink.count() != 0 {
		t.Errorf("sink called for nil trigger")
	}
}
