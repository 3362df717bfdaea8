package monitor

import (
	"fmt"
	"sync"
	"time"
)

// ResponseLevel is the escalation tier an intervention is delivered at.
// Levels are ordered: popup < friend < coach.
type ResponseLevel string

const (
	// ResponsePopup is a lightweight in-app nudge
	ResponsePopup ResponseLevel = "popup"
	// ResponseFriend is a conversational check-in
	ResponseFriend ResponseLevel = "friend"
	// ResponseCoach is a full coaching session
	ResponseCoach ResponseLevel = "coach"
)

// Severity returns the ordinal rank used to pick one trigger among several
// simultaneously eligible ones. Unknown levels rank below popup.
func (l ResponseLevel) Severity() int {
	switch l {
	case ResponseCoach:
		return 3
	case ResponseFriend:
		return 2
	case ResponsePopup:
		return 1
	default:
		return 0
	}
}

// Operator compares a metric value against a trigger threshold
type Operator string

const (
	OpGreaterThan  Operator = ">"
	OpLessThan     Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "=="
	// OpHasItems matches when a list-valued metric is non-empty
	// (only meaningful for atRiskQuests)
	OpHasItems Operator = "has_items"
)

// CustomConditionPostponedTwice is the only supported custom condition
// type: true iff any task's postpone count reaches the threshold.
const CustomConditionPostponedTwice = "deadline_postponed_twice"

// TimeWindow restricts a trigger to a daily local-time range, inclusive
// on both ends. Times are "HH:MM".
type TimeWindow struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Contains reports whether now's local clock time falls inside the window.
// Malformed window times fail closed (the trigger never becomes eligible).
func (w TimeWindow) Contains(now time.Time) bool {
	start, err := parseClockMinutes(w.Start)
	if err != nil {
		return false
	}
	end, err := parseClockMinutes(w.End)
	if err != nil {
		return false
	}
	nowMinutes := now.Hour()*60 + now.Minute()
	return nowMinutes >= start && nowMinutes <= end
}

func parseClockMinutes(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return h*60 + m, nil
}

// Condition is the predicate a trigger evaluates against a metrics snapshot
type Condition struct {
	// Metric selects which HealthMetrics field to test
	Metric MetricSelector `yaml:"metric"`
	// Operator compares the metric value against Threshold
	Operator Operator `yaml:"operator"`
	Threshold float64 `yaml:"threshold"`
	// CustomType names the custom condition when Metric is "custom"
	CustomType string `yaml:"custom_type,omitempty"`
	// TimeWindow, if set, restricts when the trigger may evaluate at all
	TimeWindow *TimeWindow `yaml:"time_window,omitempty"`
}

// Trigger is a long-lived configuration entity: a named condition over
// health metrics that, when satisfied and not gated, is eligible to
// initiate an intervention. The engine mutates only LastTriggered, and
// only at dispatch time.
type Trigger struct {
	ID      string `yaml:"id"`
	Type    string `yaml:"type"`
	Enabled bool   `yaml:"enabled"`

	Condition Condition `yaml:"condition"`

	// CooldownMinutes is the minimum gap between dispatches of this trigger
	CooldownMinutes int `yaml:"cooldown"`

	// LastTriggered is when this trigger last actually dispatched.
	// Nil means it has never fired. Updated only on dispatch, never on a
	// mere condition match.
	LastTriggered *time.Time `yaml:"last_triggered,omitempty"`

	// Response is the escalation level used for severity ranking
	Response ResponseLevel `yaml:"response"`
}

// Cooldown returns the cooldown as a duration
func (t *Trigger) Cooldown() time.Duration {
	return time.Duration(t.CooldownMinutes) * time.Minute
}

// OnCooldown reports whether the trigger is still inside its cooldown window
func (t *Trigger) OnCooldown(now time.Time) bool {
	if t.LastTriggered == nil {
		return false
	}
	return now.Sub(*t.LastTriggered) < t.Cooldown()
}

// Registry holds the configured trigger set in registration order.
// Order matters: severity ties are broken by whichever trigger was
// registered first.
type Registry struct {
	mu       sync.RWMutex
	triggers []*Trigger
}

// NewRegistry creates an empty trigger registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a trigger. Duplicate IDs are rejected so that
// cooldown stamping stays unambiguous.
func (r *Registry) Register(t *Trigger) error {
	if t == nil {
		return fmt.Errorf("trigger is required")
	}
	if t.ID == "" {
		return fmt.Errorf("trigger id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.triggers {
		if existing.ID == t.ID {
			return fmt.Errorf("trigger %q already registered", t.ID)
		}
	}
	r.triggers = append(r.triggers, t)
	return nil
}

// All returns the triggers in registration order. The slice is a copy but
// the pointers are shared; callers must not mutate the triggers.
func (r *Registry) All() []*Trigger {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Trigger, len(r.triggers))
	copy(out, r.triggers)
	return out
}

// Get returns the trigger with the given ID, or nil
func (r *Registry) Get(id string) *Trigger {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.triggers {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// MarkFired stamps the trigger's cooldown start. Called by the dispatcher
// only after a successful hand-off to the intervention sink.
func (r *Registry) MarkFired(id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.triggers {
		if t.ID == id {
			fired := at
			t.LastTriggered = &fired
			return nil
		}
	}
	return fmt.Errorf("trigger %q not registered", id)
}

// DefaultTriggers returns the built-in trigger set used when no trigger
// configuration file is present.
func DefaultTriggers() []*Trigger {
	return []*Trigger{
		{
			ID:      "overdue-pileup",
			Type:    "overdue_tasks",
			Enabled: true,
			Condition: Condition{
				Metric:    MetricOverdueTasksCount,
				Operator:  OpGreaterEqual,
				Threshold: 3,
			},
			CooldownMinutes: 240,
			Response:        ResponseCoach,
		},
		{
			ID:      "at-risk-quests",
			Type:    "quest_at_risk",
			Enabled: true,
			Condition: Condition{
				Metric:   MetricAtRiskQuests,
				Operator: OpHasItems,
			},
			CooldownMinutes: 480,
			Response:        ResponseFriend,
		},
		{
			ID:      "repeat-postponer",
			Type:    "deadline_postponed",
			Enabled: true,
			Condition: Condition{
				Metric:     MetricCustom,
				CustomType: CustomConditionPostponedTwice,
				Threshold:  2,
			},
			CooldownMinutes: 720,
			Response:        ResponseFriend,
		},
		{
			ID:      "stalled-afternoon",
			Type:    "stale_completion",
			Enabled: true,
			Condition: Condition{
				Metric:    MetricTimeSinceLastCompletion,
				Operator:  OpGreaterThan,
				Threshold: 180,
				TimeWindow: &TimeWindow{
					Start: "09:00",
					End:   "21:00",
				},
			},
			CooldownMinutes: 180,
			Response:        ResponsePopup,
		},
	}
}
