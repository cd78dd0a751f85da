package simulation

import (
	"sync"
	"time"

	"tankduel/engine/internal/logging"
)

// TickMetricsSnapshot summarises observed frame processing durations.
type TickMetricsSnapshot struct {
	Samples  int
	Average  time.Duration
	Max      time.Duration
	Last     time.Duration
	Overruns int
}

// AverageFPS derives the frames-per-second the processing cost alone would allow.
func (s TickMetricsSnapshot) AverageFPS() float64 {
	if s.Average <= 0 {
		return 0
	}
	return float64(time.Second) / float64(s.Average)
}

// LoggingFields renders the snapshot for structured logs.
func (s TickMetricsSnapshot) LoggingFields() []logging.Field {
	return []logging.Field{
		logging.Int("tick_samples", s.Samples),
		logging.Int64("tick_avg_us", s.Average.Microseconds()),
		logging.Int64("tick_max_us", s.Max.Microseconds()),
		logging.Int("tick_overruns", s.Overruns),
	}
}

// TickMonitor accumulates timing statistics for simulation frames.
type TickMonitor struct {
	mu       sync.Mutex
	budget   time.Duration
	samples  int
	total    time.Duration
	max      time.Duration
	last     time.Duration
	overruns int
}

// NewTickMonitor constructs an empty monitor ready to collect samples.
func NewTickMonitor() *TickMonitor {
	return &TickMonitor{}
}

// NewBudgetedTickMonitor counts frames whose processing exceeded budget as overruns.
func NewBudgetedTickMonitor(budget time.Duration) *TickMonitor {
	return &TickMonitor{budget: budget}
}

// Observe records the duration of a completed frame.
func (m *TickMonitor) Observe(duration time.Duration) {
	if m == nil || duration < 0 {
		return
	}
	m.mu.Lock()
	//1.- Accumulate the sample count and aggregate duration for average calculations.
	m.samples++
	m.total += duration
	//2.- Track the worst-case frame and anything over budget.
	if duration > m.max {
		m.max = duration
	}
	if m.budget > 0 && duration > m.budget {
		m.overruns++
	}
	m.last = duration
	m.mu.Unlock()
}

// Snapshot returns a copy of the aggregated statistics.
func (m *TickMonitor) Snapshot() TickMetricsSnapshot {
	if m == nil {
		return TickMetricsSnapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	average := time.Duration(0)
	if m.samples > 0 {
		average = m.total / time.Duration(m.samples)
	}
	return TickMetricsSnapshot{Samples: m.samples, Average: average, Max: m.max, Last: m.last, Overruns: m.overruns}
}

// Reset clears the accumulated statistics so a fresh match can begin cleanly.
func (m *TickMonitor) Reset() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.samples = 0
	m.total = 0
	m.max = 0
	m.last = 0
	m.overruns = 0
	m.mu.Unlock()
}
