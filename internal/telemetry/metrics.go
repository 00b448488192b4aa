package telemetry

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects agent runtime metrics
type Metrics struct {
	mu sync.RWMutex

	// Counters
	Decisions      int64
	ActionCalls    int64
	ActionFailures int64
	APIRequests    int64
	ContextBuilds  int64

	// Histograms (simplified)
	actionLatencies []time.Duration
	apiLatencies    []time.Duration

	exporter MetricsExporter
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		actionLatencies: make([]time.Duration, 0, 64),
		apiLatencies:    make([]time.Duration, 0, 64),
	}
}

// IncDecisions counts one pass of the decision loop.
func (m *Metrics) IncDecisions() {
	atomic.AddInt64(&m.Decisions, 1)
}

// IncActionCalls increments the action calls counter
func (m *Metrics) IncActionCalls() {
	atomic.AddInt64(&m.ActionCalls, 1)
}

// IncActionFailures increments the failed action counter
func (m *Metrics) IncActionFailures() {
	atomic.AddInt64(&m.ActionFailures, 1)
}

// IncAPIRequests increments the API requests counter
func (m *Metrics) IncAPIRequests() {
	atomic.AddInt64(&m.APIRequests, 1)
}

// IncContextBuilds counts context reconstructions handed to the model.
func (m *Metrics) IncContextBuilds() {
	atomic.AddInt64(&m.ContextBuilds, 1)
}

// RecordActionLatency records how long an action took
func (m *Metrics) RecordActionLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actionLatencies = append(m.actionLatencies, d)
}

// RecordAPILatency records an API call latency
func (m *Metrics) RecordAPILatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiLatencies = append(m.apiLatencies, d)
}

// GetSummary returns a summary of collected metrics
func (m *Metrics) GetSummary() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := map[string]interface{}{
		"decisions":       atomic.LoadInt64(&m.Decisions),
		"action_calls":    atomic.LoadInt64(&m.ActionCalls),
		"action_failures": atomic.LoadInt64(&m.ActionFailures),
		"api_requests":    atomic.LoadInt64(&m.APIRequests),
		"context_builds":  atomic.LoadInt64(&m.ContextBuilds),
	}

	if avg, ok := average(m.actionLatencies); ok {
		summary["avg_action_latency_ms"] = avg
	}
	if avg, ok := average(m.apiLatencies); ok {
		summary["avg_api_latency_ms"] = avg
	}

	return summary
}

func average(ds []time.Duration) (int64, bool) {
	if len(ds) == 0 {
		return 0, false
	}
	var total time.Duration
	for _, d := range ds {
		total += d
	}
	return total.Milliseconds() / int64(len(ds)), true
}

// Reset resets all metrics
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	atomic.StoreInt64(&m.Decisions, 0)
	atomic.StoreInt64(&m.ActionCalls, 0)
	atomic.StoreInt64(&m.ActionFailures, 0)
	atomic.StoreInt64(&m.APIRequests, 0)
	atomic.StoreInt64(&m.ContextBuilds, 0)

	m.actionLatencies = m.actionLatencies[:0]
	m.apiLatencies = m.apiLatencies[:0]
}

// SetExporter attaches a metrics exporter.
func (m *Metrics) SetExporter(e MetricsExporter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exporter = e
}

// Flush exports the current metrics snapshot with the given event label.
func (m *Metrics) Flush(event string, labels map[string]string) error {
	m.mu.RLock()
	exporter := m.exporter
	m.mu.RUnlock()

	if exporter == nil {
		return nil
	}

	return exporter.Export(MetricsSnapshot{
		Timestamp: time.Now(),
		Event:     event,
		Metrics:   m.GetSummary(),
		Labels:    labels,
	})
}
