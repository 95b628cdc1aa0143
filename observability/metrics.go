package observability

import (
	"sync"
	"sync/atomic"

	gu "github.com/xraph/go-utils/metrics"
)

// Metrics holds metric instruments for herald, backed by any go-utils
// MetricFactory. Pass fapp.Metrics() from a forge app, or
// metrics.NewMetricsCollector for standalone use.
//
// All methods are safe on a nil *Metrics.
type Metrics struct {
	EventsReceivedTotal  gu.Counter
	DispatchesTotal      gu.Counter
	DispatchLatency      gu.Histogram
	ContinuationsFailed  gu.Counter
	PendingContinuations gu.Gauge

	pendingContinuations atomic.Int64

	// Labelled counters are kept so repeated increments land on one series.
	mu       sync.Mutex
	bySource map[string]gu.Counter
	byState  map[string]gu.Counter
}

// NewMetrics creates herald metric instruments using the supplied factory.
func NewMetrics(factory gu.MetricFactory) *Metrics {
	return &Metrics{
		EventsReceivedTotal:  factory.Counter("herald_events_received_total"),
		DispatchesTotal:      factory.Counter("herald_dispatches_total"),
		DispatchLatency:      factory.Histogram("herald_dispatch_latency_seconds"),
		ContinuationsFailed:  factory.Counter("herald_continuations_failed_total"),
		PendingContinuations: factory.Gauge("herald_pending_continuations"),
	}
}

// RecordReceived counts an extracted inbound event.
func (m *Metrics) RecordReceived(source string) {
	if m == nil {
		return
	}
	m.EventsReceivedTotal.Inc()
	m.labelled(&m.bySource, m.EventsReceivedTotal, "source", source).Inc()
}

// RecordDispatch records a finished dispatch with its final state and latency.
func (m *Metrics) RecordDispatch(state string, latencySeconds float64) {
	if m == nil {
		return
	}
	m.DispatchesTotal.Inc()
	m.labelled(&m.byState, m.DispatchesTotal, "state", state).Inc()
	m.DispatchLatency.Observe(latencySeconds)
}

// ContinuationStarted tracks a newly started continuation.
func (m *Metrics) ContinuationStarted() {
	if m == nil {
		return
	}
	m.PendingContinuations.Set(float64(m.pendingContinuations.Add(1)))
}

// ContinuationFinished untracks a continuation, counting it when it failed.
func (m *Metrics) ContinuationFinished(failed bool) {
	if m == nil {
		return
	}
	m.PendingContinuations.Set(float64(m.pendingContinuations.Add(-1)))
	if failed {
		m.ContinuationsFailed.Inc()
	}
}

func (m *Metrics) labelled(set *map[string]gu.Counter, parent gu.Counter, label, value string) gu.Counter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if *set == nil {
		*set = make(map[string]gu.Counter)
	}
	c, ok := (*set)[value]
	if !ok {
		c = parent.WithLabels(map[string]string{label: value})
		(*set)[value] = c
	}
	return c
}

// Snapshot is a point-in-time view of the instruments.
type Snapshot struct {
	EventsReceived       float64            `json:"events_received"`
	EventsBySource       map[string]float64 `json:"events_by_source"`
	Dispatches           float64            `json:"dispatches"`
	DispatchesByState    map[string]float64 `json:"dispatches_by_state"`
	DispatchLatencyMean  float64            `json:"dispatch_latency_mean_seconds"`
	ContinuationsFailed  float64            `json:"continuations_failed"`
	PendingContinuations float64            `json:"pending_continuations"`
}

// Snapshot reads the current values. A nil *Metrics yields an empty snapshot.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		EventsBySource:    map[string]float64{},
		DispatchesByState: map[string]float64{},
	}
	if m == nil {
		return snap
	}

	snap.EventsReceived = m.EventsReceivedTotal.Value()
	snap.Dispatches = m.DispatchesTotal.Value()
	snap.DispatchLatencyMean = m.DispatchLatency.Mean()
	snap.ContinuationsFailed = m.ContinuationsFailed.Value()
	snap.PendingContinuations = m.PendingContinuations.Value()

	m.mu.Lock()
	defer m.mu.Unlock()
	for k, c := range m.bySource {
		snap.EventsBySource[k] = c.Value()
	}
	for k, c := range m.byState {
		snap.DispatchesByState[k] = c.Value()
	}
	return snap
}
