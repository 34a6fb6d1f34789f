package measure

import "time"

// Measure collects one metric per stage.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric accumulates the timings of one stage over runs.
type Metric interface {
	AddComputation(elapsed time.Duration)
	AddHandoff(parentStage string, elapsed time.Duration)
	AVGComputation() time.Duration
	AVGHandoffs() map[string]Handoff
	Handoffs() map[string]Handoff
	SetRunDuration(d time.Duration)
	RunDuration() time.Duration
	Runs() int64
}
