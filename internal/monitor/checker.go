package monitor

import "time"

// CheckTriggers filters the trigger set down to those eligible to fire
// against the snapshot, then selects the single highest-severity candidate.
// Returns nil when nothing is eligible this tick.
//
// Gates are checked in order for each enabled trigger: cooldown first,
// then time window, then the condition itself. A trigger that matches but
// loses the severity tie-break is not stamped in any way; it remains a
// candidate on the next tick subject to its own cooldown.
func CheckTriggers(triggers []*Trigger, m *HealthMetrics, now time.Time) *Trigger {
	var candidates []*Trigger

	for _, t := range triggers {
		if !t.Enabled {
			continue
		}
		if t.OnCooldown(now) {
			continue
		}
		if t.Condition.TimeWindow != nil && !t.Condition.TimeWindow.Contains(now) {
			continue
		}
		if !conditionMatches(t.Condition, m) {
			continue
		}
		candidates = append(candidates, t)
	}

	return selectBySeverity(candidates)
}

// conditionMatches evaluates a trigger condition against the snapshot.
// A misconfigured condition (unknown metric, unknown operator, non-numeric
// metric with a numeric operator) evaluates to false rather than erroring,
// so one bad trigger can never block the rest of the set.
func conditionMatches(c Condition, m *HealthMetrics) bool {
	switch c.Metric {
	case MetricCustom:
		return customConditionMatches(c, m)
	case MetricAtRiskQuests:
		if c.Operator == OpHasItems {
			return len(m.AtRiskQuests) > 0
		}
		return false
	}

	value, ok := c.Metric.Value(m)
	if !ok {
		return false
	}

	switch c.Operator {
	case OpGreaterThan:
		return value > c.Threshold
	case OpLessThan:
		return value < c.Threshold
	case OpGreaterEqual:
		return value >= c.Threshold
	case OpLessEqual:
		return value <= c.Threshold
	case OpEqual:
		return value == c.Threshold
	default:
		return false
	}
}

func customConditionMatches(c Condition, m *HealthMetrics) bool {
	switch c.CustomType {
	case CustomConditionPostponedTwice:
		for _, count := range m.DeadlinePostponeMap {
			if float64(count) >= c.Threshold {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// selectBySeverity picks the maximum-severity candidate. Ties keep the
// earliest candidate, which preserves registration order because the
// caller built the slice in that order.
func selectBySeverity(candidates []*Trigger) *Trigger {
	var best *Trigger
	for _, t := range candidates {
		if best == nil || t.Response.Severity() > best.Response.Severity() {
			best = t
		}
	}
	return best
}
