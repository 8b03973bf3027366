package chain

import (
	"sort"
	"sync"
	"time"
)

// Outcome classifies how a dispatch ended.
type Outcome int

const (
	// OutcomeReturned means the body or a hooker produced a result.
	OutcomeReturned Outcome = iota

	// OutcomeThrew means the dispatch ended with an error.
	OutcomeThrew

	// OutcomeSkipped means a before callback bypassed the body.
	OutcomeSkipped
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeReturned:
		return "returned"
	case OutcomeThrew:
		return "threw"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Metrics collects dispatch statistics.
type Metrics struct {
	mu sync.RWMutex

	targetMetrics map[string]*TargetMetrics

	totalDispatches uint64
	totalThrows     uint64
	totalSkips      uint64
	totalPanics     uint64
	totalDuration   time.Duration
}

// TargetMetrics holds statistics for one target.
type TargetMetrics struct {
	Target        string
	DispatchCount uint64
	ThrowCount    uint64
	SkipCount     uint64
	PanicCount    uint64
	TotalDuration time.Duration
	MinDuration   time.Duration
	MaxDuration   time.Duration
	LastOutcome   Outcome
	LastDispatch  time.Time
}

// NewMetrics creates a metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{targetMetrics: make(map[string]*TargetMetrics)}
}

// Record records one dispatch.
func (m *Metrics) Record(target string, duration time.Duration, outcome Outcome, panics uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalDispatches++
	m.totalDuration += duration
	m.totalPanics += panics

	switch outcome {
	case OutcomeThrew:
		m.totalThrows++
	case OutcomeSkipped:
		m.totalSkips++
	}

	tm := m.targetMetrics[target]
	if tm == nil {
		tm = &TargetMetrics{
			Target:      target,
			MinDuration: duration,
			MaxDuration: duration,
		}
		m.targetMetrics[target] = tm
	}

	tm.DispatchCount++
	tm.TotalDuration += duration
	tm.PanicCount += panics
	tm.LastOutcome = outcome
	tm.LastDispatch = time.Now()

	switch outcome {
	case OutcomeThrew:
		tm.ThrowCount++
	case OutcomeSkipped:
		tm.SkipCount++
	}

	if duration < tm.MinDuration {
		tm.MinDuration = duration
	}
	if duration > tm.MaxDuration {
		tm.MaxDuration = duration
	}
}

// TotalDispatches returns the total number of dispatches.
func (m *Metrics) TotalDispatches() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalDispatches
}

// TotalSkips returns the number of dispatches skipped by a hooker.
func (m *Metrics) TotalSkips() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalSkips
}

// TotalThrows returns the number of dispatches that ended in an error.
func (m *Metrics) TotalThrows() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalThrows
}

// TotalPanics returns the number of hooker panics recovered.
func (m *Metrics) TotalPanics() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalPanics
}

// TargetStats returns a copy of the metrics for one target, or nil.
func (m *Metrics) TargetStats(target string) *TargetMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tm := m.targetMetrics[target]
	if tm == nil {
		return nil
	}
	out := *tm
	return &out
}

// TopTargets returns the n most dispatched targets.
func (m *Metrics) TopTargets(n int) []*TargetMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	targets := make([]*TargetMetrics, 0, len(m.targetMetrics))
	for _, tm := range m.targetMetrics {
		out := *tm
		targets = append(targets, &out)
	}

	sort.Slice(targets, func(i, j int) bool {
		return targets[i].DispatchCount > targets[j].DispatchCount
	})

	if n > len(targets) {
		n = len(targets)
	}
	return targets[:n]
}

// Snapshot is a point-in-time summary of all metrics.
type Snapshot struct {
	TotalDispatches uint64
	TotalThrows     uint64
	TotalSkips      uint64
	TotalPanics     uint64
	TotalDuration   time.Duration
	AverageDuration time.Duration
	TargetCount     int
	Timestamp       time.Time
}

// Snapshot returns a summary of current metrics.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		TotalDispatches: m.totalDispatches,
		TotalThrows:     m.totalThrows,
		TotalSkips:      m.totalSkips,
		TotalPanics:     m.totalPanics,
		TotalDuration:   m.totalDuration,
		TargetCount:     len(m.targetMetrics),
		Timestamp:       time.Now(),
	}
	if m.totalDispatches > 0 {
		snap.AverageDuration = m.totalDuration / time.Duration(m.totalDispatches)
	}
	return snap
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.targetMetrics = make(map[string]*TargetMetrics)
	m.totalDispatches = 0
	m.totalThrows = 0
	m.totalSkips = 0
	m.totalPanics = 0
	m.totalDuration = 0
}
