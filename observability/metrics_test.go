package observability

import (
	"context"
	"errors"
	"testing"

	gu "github.com/xraph/go-utils/metrics"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	m.RecordReceived("workshop")
	m.RecordDispatch("delivered", 0.1)
	m.ContinuationStarted()
	m.ContinuationFinished(true)
}

func TestNilTracerIsSafe(t *testing.T) {
	var tr *Tracer

	ctx, span := tr.StartDispatchSpan(context.Background(), "dsp_1", "workshop", "created", "42")
	if ctx == nil || span == nil {
		t.Fatal("nil tracer should return the incoming context and a no-op span")
	}
	tr.EndSpan(span, "failed", errors.New("boom"))

	_, span = tr.StartContinuationSpan(context.Background(), "dsp_1", "task_1")
	tr.EndSpan(span, "completed", nil)
}

func TestTracerWithGlobalProvider(t *testing.T) {
	tr := NewTracer()

	ctx, span := tr.StartDispatchSpan(context.Background(), "dsp_1", "workshop", "created", "42")
	if ctx == nil || span == nil {
		t.Fatal("expected span")
	}
	tr.EndSpan(span, "delivered", nil)
}

func TestNewMetricsRegisters(t *testing.T) {
	mc := gu.NewMetricsCollector("herald-test")
	m := NewMetrics(mc)

	if m.EventsReceivedTotal == nil || m.DispatchesTotal == nil || m.DispatchLatency == nil {
		t.Fatal("instruments should not be nil")
	}
	if m.ContinuationsFailed == nil || m.PendingContinuations == nil {
		t.Fatal("continuation instruments should not be nil")
	}

	names := mc.ListMetrics()
	for _, name := range []string{
		"herald_events_received_total",
		"herald_dispatches_total",
		"herald_dispatch_latency_seconds",
		"herald_continuations_failed_total",
		"herald_pending_continuations",
	} {
		if _, ok := names[name]; !ok {
			t.Fatalf("%s not registered; have %v", name, names)
		}
	}
}

func TestRecordDispatch(t *testing.T) {
	m := NewMetrics(gu.NewMetricsCollector("herald-test"))

	m.RecordDispatch("delivered", 0.5)
	m.RecordDispatch("delivered", 1.5)
	m.RecordDispatch("failed", 1)

	if got := m.DispatchesTotal.Value(); got != 3 {
		t.Fatalf("dispatches total = %v, want 3", got)
	}
	if got := m.DispatchLatency.Count(); got != 3 {
		t.Fatalf("latency observations = %d, want 3", got)
	}

	snap := m.Snapshot()
	if snap.DispatchesByState["delivered"] != 2 || snap.DispatchesByState["failed"] != 1 {
		t.Fatalf("by state = %v", snap.DispatchesByState)
	}
	if snap.DispatchLatencyMean != 1 {
		t.Fatalf("latency mean = %v, want 1", snap.DispatchLatencyMean)
	}
}

func TestRecordReceived(t *testing.T) {
	m := NewMetrics(gu.NewMetricsCollector("herald-test"))

	m.RecordReceived("workshop")
	m.RecordReceived("workshop")
	m.RecordReceived("github")

	snap := m.Snapshot()
	if snap.EventsReceived != 3 {
		t.Fatalf("events received = %v, want 3", snap.EventsReceived)
	}
	if snap.EventsBySource["workshop"] != 2 || snap.EventsBySource["github"] != 1 {
		t.Fatalf("by source = %v", snap.EventsBySource)
	}
}

func TestContinuationGauge(t *testing.T) {
	m := NewMetrics(gu.NewMetricsCollector("herald-test"))

	m.ContinuationStarted()
	m.ContinuationStarted()
	if got := m.PendingContinuations.Value(); got != 2 {
		t.Fatalf("pending = %v, want 2", got)
	}

	m.ContinuationFinished(false)
	m.ContinuationFinished(true)
	if got := m.PendingContinuations.Value(); got != 0 {
		t.Fatalf("pending = %v, want 0", got)
	}
	if got := m.ContinuationsFailed.Value(); got != 1 {
		t.Fatalf("failed = %v, want 1", got)
	}
}

func TestNilMetricsSnapshot(t *testing.T) {
	var m *Metrics
	snap := m.Snapshot()
	if snap.Dispatches != 0 || snap.DispatchesByState == nil {
		t.Fatalf("snapshot = %+v", snap)
	}
}
