// Package monitor implements the health-monitoring and intervention
// engine at the heart of questpulse.
//
// # Pipeline
//
// Every tick flows strictly downward through five stages:
//
//	Scheduler -> Collector -> EvaluateStatus -> CheckTriggers -> Dispatcher
//
//  1. Collector derives a HealthMetrics snapshot from tasks, quests, the
//     chapter hierarchy, the productivity event stream, and recent
//     reflections.
//  2. EvaluateStatus classifies the snapshot into green/yellow/red via
//     additive scoring rules, writing status and reasons back into it.
//  3. CheckTriggers filters the configured triggers by cooldown and
//     time-of-day window, evaluates each condition against the snapshot,
//     and selects the single highest-severity eligible trigger
//     (registration order breaks ties).
//  4. Dispatcher hands the selected trigger to the intervention sink -
//     unless an intervention is already active - and stamps the trigger's
//     cooldown only on actual dispatch.
//
// # Determinism
//
// The pipeline never reads ambient time. Each tick receives a single
// `now` from the scheduler's injected Clock and threads it through every
// stage, so a tick is fully reproducible against fake data sources and a
// fake clock.
//
// # Failure model
//
// A misconfigured trigger evaluates to false instead of erroring, so one
// bad trigger cannot block the rest. Anything that does fail inside a
// scheduled tick is caught at the scheduler boundary, logged, and
// swallowed; the loop self-heals at the next interval. Monitoring state
// is eventually consistent with worst-case staleness of one interval.
package monitor
