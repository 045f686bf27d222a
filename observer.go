package dexshare

import (
	"sync"
	"time"
)

// Observer provides hooks for monitoring client operations. Implement this
// interface to track latencies, error rates, or session churn, or to bridge
// into your observability stack.
//
// Observer methods should be fast and non-blocking.
//
// Example implementation:
//
//	type LogObserver struct {
//	    logger *log.Logger
//	}
//
//	func (o *LogObserver) OnRequestEnd(endpoint string, duration time.Duration, err error) {
//	    if err != nil {
//	        o.logger.Printf("[ERROR] %s - %v (took %v)", endpoint, err, duration)
//	    }
//	}
type Observer interface {
	// OnRequestStart is called when a request to a Share endpoint starts.
	OnRequestStart(endpoint string)

	// OnRequestEnd is called when a request completes, with the time taken
	// and the error if the request failed.
	OnRequestEnd(endpoint string, duration time.Duration, err error)

	// OnRetryAttempt is called for each transport-level retry attempt, with
	// the delay applied before the attempt and the error that triggered it.
	OnRetryAttempt(endpoint string, attempt int, delay time.Duration, err error)

	// OnSessionRefresh is called after every session acquisition, both the
	// initial handshake and re-acquisitions triggered by session expiry.
	OnSessionRefresh(duration time.Duration, err error)
}

// NoopObserver is a no-op implementation of Observer. It is the default
// observer when none is configured.
type NoopObserver struct{}

// OnRequestStart does nothing
func (n *NoopObserver) OnRequestStart(endpoint string) {}

// OnRequestEnd does nothing
func (n *NoopObserver) OnRequestEnd(endpoint string, duration time.Duration, err error) {}

// OnRetryAttempt does nothing
func (n *NoopObserver) OnRetryAttempt(endpoint string, attempt int, delay time.Duration, err error) {
}

// OnSessionRefresh does nothing
func (n *NoopObserver) OnSessionRefresh(duration time.Duration, err error) {}

// Metrics is a snapshot of the counters gathered by a MetricsCollector.
type Metrics struct {
	// Requests is the total number of Share API requests issued.
	Requests int64
	// Errors is the number of requests that ended in an error.
	Errors int64
	// Retries is the number of transport-level retry attempts.
	Retries int64
	// SessionRefreshes is the number of session acquisitions performed.
	SessionRefreshes int64
	// TotalLatency is the summed duration of all requests.
	TotalLatency time.Duration
}

// MetricsCollector is a simple in-memory Observer implementation that counts
// requests, errors, retries, and session refreshes. Useful for tests and for
// callers without a metrics backend.
//
// Example:
//
//	collector := dexshare.NewMetricsCollector()
//	config := dexshare.DefaultConfig().WithObserver(collector)
//	// ... use the client ...
//	snapshot := collector.Snapshot()
//	log.Printf("%d requests, %d errors", snapshot.Requests, snapshot.Errors)
type MetricsCollector struct {
	mu      sync.Mutex
	metrics Metrics
}

// NewMetricsCollector creates a new in-memory metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{}
}

// OnRequestStart implements Observer.
func (m *MetricsCollector) OnRequestStart(endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.Requests++
}

// OnRequestEnd implements Observer.
func (m *MetricsCollector) OnRequestEnd(endpoint string, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.TotalLatency += duration
	if err != nil {
		m.metrics.Errors++
	}
}

// OnRetryAttempt implements Observer.
func (m *MetricsCollector) OnRetryAttempt(endpoint string, attempt int, delay time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.Retries++
}

// OnSessionRefresh implements Observer.
func (m *MetricsCollector) OnSessionRefresh(duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.SessionRefreshes++
}

// Snapshot returns a copy of the current counters.
func (m *MetricsCollector) Snapshot() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics
}
