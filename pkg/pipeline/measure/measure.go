package measure

import (
	"sort"
	"sync"
)

// DefaultMeasure keeps the metrics in memory, keyed by stage name.
type DefaultMeasure struct {
	mu     sync.Mutex
	stages map[string]Metric
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{stages: make(map[string]Metric)}
}

// AddMetric returns the metric called name, creating it if needed.
func (m *DefaultMeasure) AddMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.stages[name]
	if !ok {
		mt = newMetric()
		m.stages[name] = mt
	}

	return mt
}

// GetMetric returns nil for unknown names.
func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stages[name]
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Metric, len(m.stages))
	for k, v := range m.stages {
		out[k] = v
	}

	return out
}

// Names returns the stage names sorted.
func (m *DefaultMeasure) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.stages))
	for k := range m.stages {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}

var _ Measure = (*DefaultMeasure)(nil)
