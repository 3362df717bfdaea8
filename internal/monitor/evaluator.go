package monitor

import (
	"fmt"
	"time"
)

// Status classification thresholds. Score accumulates across independent
// rules; red means things have compounded, yellow means one or two signals.
const (
	redScoreThreshold    = 3
	yellowScoreThreshold = 1
)

// Scoring rule constants
const (
	staleCompletionMinutes  = 120
	eveningHour             = 18
	eveningLowRateThreshold = 60.0
	repeatPostponeThreshold = 2
	overdueTasksHighCount   = 3
)

// EvaluateStatus classifies a collected snapshot into green/yellow/red and
// returns the human-readable reasons behind the classification. It is a
// pure function of (m, now): identical inputs always produce identical
// output. Status is recomputed from scratch every tick with no hysteresis,
// so a borderline metric can flip the status between adjacent ticks; that
// is an accepted trade-off for keeping this function stateless.
func EvaluateStatus(m *HealthMetrics, now time.Time) (HealthStatus, []string) {
	score := 0
	reasons := []string{}

	if m.TimeSinceLastCompletion > staleCompletionMinutes {
		score++
		reasons = append(reasons, fmt.Sprintf("no completions in %d minutes", m.TimeSinceLastCompletion))
	}

	if now.Hour() >= eveningHour && m.TodayCompletionRate < eveningLowRateThreshold && m.TodayTotalCount > 0 {
		score += 2
		reasons = append(reasons, fmt.Sprintf("evening with only %.0f%% of today's tasks done", m.TodayCompletionRate))
	}

	for _, q := range m.AtRiskQuests {
		if q.RiskLevel == RiskHigh || q.RiskLevel == RiskCritical {
			score += 2
			reasons = append(reasons, fmt.Sprintf("quest %q is at %s risk", q.QuestTitle, q.RiskLevel))
			break
		}
	}

	for _, count := range m.DeadlinePostponeMap {
		if count >= repeatPostponeThreshold {
			score++
			reasons = append(reasons, "a deadline has been postponed repeatedly")
			break
		}
	}

	switch {
	case m.OverdueTasksCount >= overdueTasksHighCount:
		score += 2
		reasons = append(reasons, fmt.Sprintf("%d tasks overdue", m.OverdueTasksCount))
	case m.OverdueTasksCount > 0:
		score++
		reasons = append(reasons, fmt.Sprintf("%d task(s) overdue", m.OverdueTasksCount))
	}

	if m.WeeklyTrend == TrendDeclining {
		score++
		reasons = append(reasons, "weekly completion trend is declining")
	}

	switch {
	case score >= redScoreThreshold:
		return StatusRed, reasons
	case score >= yellowScoreThreshold:
		return StatusYellow, reasons
	default:
		return StatusGreen, reasons
	}
}
