package monitor

import "time"

// HealthStatus is the tri-state classification of the user's current health
type HealthStatus string

const (
	StatusGreen  HealthStatus = "green"
	StatusYellow HealthStatus = "yellow"
	StatusRed    HealthStatus = "red"
)

// WeeklyTrend compares this week's completion volume against last week's
type WeeklyTrend string

const (
	TrendImproving WeeklyTrend = "improving"
	TrendStable    WeeklyTrend = "stable"
	TrendDeclining WeeklyTrend = "declining"
)

// EnergyPattern summarizes recent self-reported energy levels
type EnergyPattern string

const (
	EnergyPatternHigh   EnergyPattern = "high"
	EnergyPatternMedium EnergyPattern = "medium"
	EnergyPatternLow    EnergyPattern = "low"
)

// RiskLevel indicates how endangered an at-risk quest is
type RiskLevel string

const (
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// SuggestedAction is the recommended response to an at-risk quest
type SuggestedAction string

const (
	// ActionAccelerate suggests increasing daily effort to make the deadline
	ActionAccelerate SuggestedAction = "accelerate"
	// ActionExtend suggests pushing the deadline out
	ActionExtend SuggestedAction = "extend"
	// ActionPrune suggests cutting the quest entirely
	ActionPrune SuggestedAction = "prune"
)

// AtRiskQuest describes an active quest whose deadline math implies it
// cannot be completed at the current pace. Built fresh each tick; never
// persisted independently.
type AtRiskQuest struct {
	QuestID    string
	QuestTitle string
	Deadline   time.Time

	// CurrentProgress is the quest's percent complete, 0-100
	CurrentProgress float64
	// RequiredDailyProgress is the percent-per-day pace needed to finish on time
	RequiredDailyProgress float64

	RiskLevel       RiskLevel
	SuggestedAction SuggestedAction
}

// HealthMetrics is a complete snapshot of the user's productivity health,
// recomputed from scratch every tick. Once published it must be treated
// as immutable by readers.
type HealthMetrics struct {
	// TimeSinceLastCompletion is whole minutes since the last completion signal
	TimeSinceLastCompletion int

	// TodayCompletionRate is the unweighted percent of today's tasks completed, 0-100
	TodayCompletionRate float64
	// WeightedCompletionRate weights today's tasks by type, 0-100
	WeightedCompletionRate float64
	// TodayCompletedCount / TodayTotalCount are the raw counts behind the rates
	TodayCompletedCount int
	TodayTotalCount     int

	OverdueTasksCount    int
	OverdueQuestsCount   int
	OverdueChaptersCount int

	// InconsistentDeadlinesCount counts deadline ordering violations in the
	// task -> quest -> chapter hierarchy
	InconsistentDeadlinesCount int

	// DeadlinePostponeMap maps task ID to how many times its deadline moved
	DeadlinePostponeMap map[string]int

	AtRiskQuests []AtRiskQuest

	WeeklyTrend   WeeklyTrend
	EnergyPattern EnergyPattern

	// OverallStatus and StatusReasons are filled in by EvaluateStatus after
	// collection; the collector leaves them green/empty
	OverallStatus HealthStatus
	StatusReasons []string

	LastUpdated time.Time
}

// MetricSelector names a numeric field of HealthMetrics that a trigger
// condition can compare against. The set is closed: adding a metric means
// adding a constant here and a case in Value, which keeps trigger
// configuration compile-time checked instead of a string convention.
type MetricSelector string

const (
	MetricTimeSinceLastCompletion MetricSelector = "timeSinceLastCompletion"
	MetricTodayCompletionRate     MetricSelector = "todayCompletionRate"
	MetricWeightedCompletionRate  MetricSelector = "weightedCompletionRate"
	MetricTodayCompletedCount     MetricSelector = "todayCompletedCount"
	MetricTodayTotalCount         MetricSelector = "todayTotalCount"
	MetricOverdueTasksCount       MetricSelector = "overdueTasksCount"
	MetricOverdueQuestsCount      MetricSelector = "overdueQuestsCount"
	MetricOverdueChaptersCount    MetricSelector = "overdueChaptersCount"
	MetricInconsistentDeadlines   MetricSelector = "inconsistentDeadlinesCount"

	// MetricAtRiskQuests is non-numeric; it only supports the has_items operator
	MetricAtRiskQuests MetricSelector = "atRiskQuests"
	// MetricCustom dispatches on the trigger's custom condition type
	MetricCustom MetricSelector = "custom"
)

// IsValid reports whether the selector names a known metric
func (s MetricSelector) IsValid() bool {
	switch s {
	case MetricTimeSinceLastCompletion, MetricTodayCompletionRate,
		MetricWeightedCompletionRate, MetricTodayCompletedCount,
		MetricTodayTotalCount, MetricOverdueTasksCount,
		MetricOverdueQuestsCount, MetricOverdueChaptersCount,
		MetricInconsistentDeadlines, MetricAtRiskQuests, MetricCustom:
		return true
	default:
		return false
	}
}

// Value returns the numeric value of the selected metric. The second return
// is false for non-numeric selectors (atRiskQuests, custom) and for unknown
// selectors; callers must treat that as "condition does not match", never
// as an error.
func (s MetricSelector) Value(m *HealthMetrics) (float64, bool) {
	switch s {
	case MetricTimeSinceLastCompletion:
		return float64(m.TimeSinceLastCompletion), true
	case MetricTodayCompletionRate:
		return m.TodayCompletionRate, true
	case MetricWeightedCompletionRate:
		return m.WeightedCompletionRate, true
	case MetricTodayCompletedCount:
		return float64(m.TodayCompletedCount), true
	case MetricTodayTotalCount:
		return float64(m.TodayTotalCount), true
	case MetricOverdueTasksCount:
		return float64(m.OverdueTasksCount), true
	case MetricOverdueQuestsCount:
		return float64(m.OverdueQuestsCount), true
	case MetricOverdueChaptersCount:
		return float64(m.OverdueChaptersCount), true
	case MetricInconsistentDeadlines:
		return float64(m.InconsistentDeadlinesCount), true
	default:
		return 0, false
	}
}
