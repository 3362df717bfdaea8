package monitor

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/questpulse/questpulse/internal/events"
	"github.com/questpulse/questpulse/internal/types"
)

// MetricsSource is the read-only view of user data the collector consumes.
// Implementations must not be mutated by the collector.
type MetricsSource interface {
	// ListTasks returns all non-deleted tasks
	ListTasks(ctx context.Context) ([]*types.Task, error)
	// ListQuests returns all quests regardless of status
	ListQuests(ctx context.Context) ([]*types.Quest, error)
	// ListChapters returns all chapters
	ListChapters(ctx context.Context) ([]*types.Chapter, error)
	// RecentReflections returns up to limit reflections, newest first
	RecentReflections(ctx context.Context, limit int) ([]*types.Reflection, error)
	// QueryEvents returns events matching the filter, newest first
	QueryEvents(ctx context.Context, filter events.Filter) ([]*events.ProductivityEvent, error)
}

// Task-type weights for the weighted completion rate. Creative work
// dominates the signal; unknown types get a small default weight.
var taskTypeWeights = map[types.TaskType]float64{
	types.TaskTypeCreative:    0.80,
	types.TaskTypeTax:         0.15,
	types.TaskTypeMaintenance: 0.05,
}

const defaultTaskWeight = 0.10

// At-risk analysis thresholds
const (
	atRiskHorizonDays       = 3
	atRiskMinDailyProgress  = 30.0
	atRiskHighDailyProgress = 50.0
)

// reflectionSampleSize is how many recent reflections feed the energy pattern
const reflectionSampleSize = 10

// Collector derives a HealthMetrics snapshot from the user's task, quest,
// and event data. It holds no mutable state beyond the session start time
// used as a completion-recency fallback.
type Collector struct {
	source       MetricsSource
	sessionStart time.Time
}

// NewCollector creates a collector reading from the given source.
// sessionStart anchors the time-since-last-completion fallback when the
// user has no completion events and no archived tasks at all.
func NewCollector(source MetricsSource, sessionStart time.Time) (*Collector, error) {
	if source == nil {
		return nil, fmt.Errorf("source is required")
	}
	return &Collector{source: source, sessionStart: sessionStart}, nil
}

// Collect builds a complete HealthMetrics snapshot as of now.
// OverallStatus is left green with empty reasons; EvaluateStatus fills
// those in afterwards. Missing upstream data (no deadline, no reflections)
// is treated as not applicable rather than an error.
func (c *Collector) Collect(ctx context.Context, now time.Time) (*HealthMetrics, error) {
	tasks, err := c.source.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	quests, err := c.source.ListQuests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	chapters, err := c.source.ListChapters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}

	m := &HealthMetrics{
		DeadlinePostponeMap: make(map[string]int),
		OverallStatus:       StatusGreen,
		StatusReasons:       []string{},
		LastUpdated:         now,
	}

	c.collectCompletionRates(m, tasks, now)

	sinceLast, err := c.timeSinceLastCompletion(ctx, tasks, now)
	if err != nil {
		return nil, err
	}
	m.TimeSinceLastCompletion = sinceLast

	c.collectOverdue(m, tasks, quests, chapters, now)
	c.collectDeadlineConsistency(m, tasks, quests, chapters)
	c.collectPostponements(m, tasks)
	m.AtRiskQuests = analyzeAtRiskQuests(quests, now)

	trend, err := c.weeklyTrend(ctx, now)
	if err != nil {
		return nil, err
	}
	m.WeeklyTrend = trend

	pattern, err := c.energyPattern(ctx)
	if err != nil {
		return nil, err
	}
	m.EnergyPattern = pattern

	return m, nil
}

// collectCompletionRates computes today's raw and weighted completion rates.
// A day with no scheduled tasks is vacuously healthy (100%).
func (c *Collector) collectCompletionRates(m *HealthMetrics, tasks []*types.Task, now time.Time) {
	var totalWeight, completedWeight float64

	for _, t := range tasks {
		if t.ScheduledFor == nil || !sameDay(*t.ScheduledFor, now) {
			continue
		}
		if t.Status == types.TaskStatusArchived {
			continue
		}

		m.TodayTotalCount++
		w := taskWeight(t.Type)
		totalWeight += w
		if t.Completed() {
			m.TodayCompletedCount++
			completedWeight += w
		}
	}

	if m.TodayTotalCount == 0 {
		m.TodayCompletionRate = 100
	} else {
		m.TodayCompletionRate = float64(m.TodayCompletedCount) / float64(m.TodayTotalCount) * 100
	}
	if totalWeight == 0 {
		m.WeightedCompletionRate = 100
	} else {
		m.WeightedCompletionRate = completedWeight / totalWeight * 100
	}
}

// timeSinceLastCompletion finds the most recent completion signal and
// returns the elapsed whole minutes. Fallback chain: completion-ish event,
// then most recently archived task, then the engine's session start.
func (c *Collector) timeSinceLastCompletion(ctx context.Context, tasks []*types.Task, now time.Time) (int, error) {
	evs, err := c.source.QueryEvents(ctx, events.Filter{
		Types: []events.EventType{events.EventTypeTaskCompleted, events.EventTypeChecklistTick},
		Until: now,
		Limit: 1,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to query completion events: %w", err)
	}

	var last time.Time
	if len(evs) > 0 {
		last = evs[0].Timestamp
	} else {
		for _, t := range tasks {
			if t.ArchivedAt != nil && t.ArchivedAt.After(last) {
				last = *t.ArchivedAt
			}
		}
	}
	if last.IsZero() {
		last = c.sessionStart
	}

	minutes := int(now.Sub(last).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	return minutes, nil
}

func (c *Collector) collectOverdue(m *HealthMetrics, tasks []*types.Task, quests []*types.Quest, chapters []*types.Chapter, now time.Time) {
	for _, t := range tasks {
		if t.Overdue(now) {
			m.OverdueTasksCount++
		}
	}

	activeByChapter := make(map[string]bool)
	for _, q := range quests {
		if q.Overdue(now) {
			m.OverdueQuestsCount++
		}
		if q.Active() && q.ChapterID != "" {
			activeByChapter[q.ChapterID] = true
		}
	}

	// A chapter is overdue when its deadline has passed and it still has
	// active quests; a fully completed chapter past its deadline is fine.
	for _, ch := range chapters {
		if ch.Deadline != nil && ch.Deadline.Before(now) && activeByChapter[ch.ID] {
			m.OverdueChaptersCount++
		}
	}
}

// collectDeadlineConsistency flags tasks due after their quest and quests
// due after their chapter. Entities without deadlines or without links are
// skipped, not flagged.
func (c *Collector) collectDeadlineConsistency(m *HealthMetrics, tasks []*types.Task, quests []*types.Quest, chapters []*types.Chapter) {
	questByID := make(map[string]*types.Quest, len(quests))
	for _, q := range quests {
		questByID[q.ID] = q
	}
	chapterByID := make(map[string]*types.Chapter, len(chapters))
	for _, ch := range chapters {
		chapterByID[ch.ID] = ch
	}

	for _, t := range tasks {
		if t.Deadline == nil || t.QuestID == "" {
			continue
		}
		q := questByID[t.QuestID]
		if q == nil || q.Deadline == nil {
			continue
		}
		if t.Deadline.After(*q.Deadline) {
			m.InconsistentDeadlinesCount++
		}
	}
	for _, q := range quests {
		if q.Deadline == nil || q.ChapterID == "" {
			continue
		}
		ch := chapterByID[q.ChapterID]
		if ch == nil || ch.Deadline == nil {
			continue
		}
		if q.Deadline.After(*ch.Deadline) {
			m.InconsistentDeadlinesCount++
		}
	}
}

func (c *Collector) collectPostponements(m *HealthMetrics, tasks []*types.Task) {
	for _, t := range tasks {
		if t.PostponeCount > 0 {
			m.DeadlinePostponeMap[t.ID] = t.PostponeCount
		}
	}
}

// analyzeAtRiskQuests classifies active quests with deadlines. A quest past
// its deadline is always critical/prune regardless of progress. Within the
// three-day horizon, a quest is emitted only when the required daily pace
// exceeds 30%/day; quests below the thresholds are omitted entirely rather
// than reported as low risk.
func analyzeAtRiskQuests(quests []*types.Quest, now time.Time) []AtRiskQuest {
	var atRisk []AtRiskQuest

	for _, q := range quests {
		if !q.Active() || q.Deadline == nil {
			continue
		}

		daysRemaining := int(math.Ceil(q.Deadline.Sub(now).Hours() / 24))

		if daysRemaining <= 0 {
			atRisk = append(atRisk, AtRiskQuest{
				QuestID:               q.ID,
				QuestTitle:            q.Title,
				Deadline:              *q.Deadline,
				CurrentProgress:       q.Progress,
				RequiredDailyProgress: 100 - q.Progress,
				RiskLevel:             RiskCritical,
				SuggestedAction:       ActionPrune,
			})
			continue
		}

		if daysRemaining > atRiskHorizonDays {
			continue
		}

		required := (100 - q.Progress) / float64(daysRemaining)
		if required <= atRiskMinDailyProgress {
			continue
		}

		risk := RiskMedium
		action := ActionAccelerate
		if required > atRiskHighDailyProgress {
			risk = RiskHigh
			action = ActionExtend
		}

		atRisk = append(atRisk, AtRiskQuest{
			QuestID:               q.ID,
			QuestTitle:            q.Title,
			Deadline:              *q.Deadline,
			CurrentProgress:       q.Progress,
			RequiredDailyProgress: required,
			RiskLevel:             risk,
			SuggestedAction:       action,
		})
	}

	return atRisk
}

// weeklyTrend compares completion counts for (now-7d, now] against
// (now-14d, now-7d]. An empty prior week reads as stable, not improving.
func (c *Collector) weeklyTrend(ctx context.Context, now time.Time) (WeeklyTrend, error) {
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	thisWeek, err := c.source.QueryEvents(ctx, events.Filter{
		Types: []events.EventType{events.EventTypeTaskCompleted},
		Since: weekAgo,
		Until: now,
	})
	if err != nil {
		return "", fmt.Errorf("failed to query this week's completions: %w", err)
	}
	lastWeek, err := c.source.QueryEvents(ctx, events.Filter{
		Types: []events.EventType{events.EventTypeTaskCompleted},
		Since: twoWeeksAgo,
		Until: weekAgo,
	})
	if err != nil {
		return "", fmt.Errorf("failed to query last week's completions: %w", err)
	}

	if len(lastWeek) == 0 {
		return TrendStable, nil
	}

	ratio := float64(len(thisWeek)) / float64(len(lastWeek))
	switch {
	case ratio > 1.1:
		return TrendImproving, nil
	case ratio < 0.9:
		return TrendDeclining, nil
	default:
		return TrendStable, nil
	}
}

// energyPattern averages the last 10 reflections' energy scores.
// No reflections reads as medium.
func (c *Collector) energyPattern(ctx context.Context) (EnergyPattern, error) {
	reflections, err := c.source.RecentReflections(ctx, reflectionSampleSize)
	if err != nil {
		return "", fmt.Errorf("failed to list reflections: %w", err)
	}
	if len(reflections) == 0 {
		return EnergyPatternMedium, nil
	}

	var sum float64
	for _, r := range reflections {
		sum += r.EnergyState.Score()
	}
	avg := sum / float64(len(reflections))

	switch {
	case avg > 2.3:
		return EnergyPatternHigh, nil
	case avg < 1.7:
		return EnergyPatternLow, nil
	default:
		return EnergyPatternMedium, nil
	}
}

func taskWeight(t types.TaskType) float64 {
	if w, ok := taskTypeWeights[t]; ok {
		return w
	}
	return defaultTaskWeight
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
