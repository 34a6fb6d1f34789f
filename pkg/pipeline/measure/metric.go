package measure

import (
	"sync"
	"time"
)

// Handoff is the time spent passing the output of a parent stage on, that is
// the duration of the parent's post-stage hook.
type Handoff struct {
	Elapsed time.Duration
	Runs    int64
}

type DefaultMetric struct {
	mu          sync.Mutex
	runs        int64
	computation time.Duration
	runDuration time.Duration
	handoffs    map[string]*Handoff
}

func newMetric() *DefaultMetric {
	return &DefaultMetric{handoffs: make(map[string]*Handoff)}
}

func (mt *DefaultMetric) AddComputation(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.runs++
	mt.computation += elapsed
}

func (mt *DefaultMetric) Runs() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.runs
}

// SetRunDuration records the duration of a whole run. Only the end marker
// carries one.
func (mt *DefaultMetric) SetRunDuration(d time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.runDuration = d
}

func (mt *DefaultMetric) RunDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.runDuration
}

func (mt *DefaultMetric) AddHandoff(parentStage string, elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	h, ok := mt.handoffs[parentStage]
	if !ok {
		h = &Handoff{}
		mt.handoffs[parentStage] = h
	}
	h.Elapsed += elapsed
	h.Runs++
}

func (mt *DefaultMetric) AVGComputation() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return average(mt.computation, mt.runs)
}

// AVGHandoffs returns the average handoff duration per parent stage.
func (mt *DefaultMetric) AVGHandoffs() map[string]Handoff {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	out := make(map[string]Handoff, len(mt.handoffs))
	for parent, h := range mt.handoffs {
		out[parent] = Handoff{Elapsed: average(h.Elapsed, h.Runs), Runs: h.Runs}
	}

	return out
}

// Handoffs returns the accumulated handoff durations per parent stage.
func (mt *DefaultMetric) Handoffs() map[string]Handoff {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	out := make(map[string]Handoff, len(mt.handoffs))
	for parent, h := range mt.handoffs {
		out[parent] = *h
	}

	return out
}

func average(total time.Duration, n int64) time.Duration {
	if n == 0 {
		return 0
	}

	return round(time.Duration(float64(total) / float64(n)))
}

var precisions = []time.Duration{time.Hour, time.Minute, time.Second, time.Millisecond, time.Microsecond}

// round drops the precision below the largest unit d exceeds.
func round(d time.Duration) time.Duration {
	for _, p := range precisions {
		if d > p {
			return d.Round(p)
		}
	}

	return d
}

var _ Metric = (*DefaultMetric)(nil)
