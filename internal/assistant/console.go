package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/questpulse/questpulse/internal/monitor"
)

// ConsoleSink prints interventions to the terminal with canned wording.
// It is the default sink when no API key is configured, and it tracks the
// at-most-one-active-intervention invariant: a delivered intervention
// counts as active until Acknowledge is called or its acknowledgment
// window expires. A terminal has no dismissal surface, so the window
// substitutes for an explicit dismissal; zero means immediate
// acknowledgment.
type ConsoleSink struct {
	mu          sync.Mutex
	activeUntil time.Time
	ackWindow   time.Duration
}

// NewConsoleSink creates a console sink whose interventions stay active
// for ackWindow after delivery
func NewConsoleSink(ackWindow time.Duration) *ConsoleSink {
	return &ConsoleSink{ackWindow: ackWindow}
}

// Active reports whether a delivered intervention is still unacknowledged.
// The monitor engine consults this before dispatching.
func (s *ConsoleSink) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Now().Before(s.activeUntil)
}

// Acknowledge clears the active intervention, allowing the next dispatch
func (s *ConsoleSink) Acknowledge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeUntil = time.Time{}
}

// Deliver prints the intervention and marks it active for the ack window
func (s *ConsoleSink) Deliver(_ context.Context, req *monitor.InterventionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "\n=== Intervention (%s) ===\n", req.Response)
	fmt.Fprintf(&b, "Trigger: %s (%s)\n", req.TriggerID, req.TriggerType)
	fmt.Fprintf(&b, "Status:  %s\n", req.Metrics.OverallStatus)
	for _, reason := range req.Metrics.StatusReasons {
		fmt.Fprintf(&b, "  - %s\n", reason)
	}
	fmt.Print(b.String())

	s.activeUntil = time.Now().Add(s.ackWindow)
	return nil
}
