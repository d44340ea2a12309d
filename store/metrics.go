package store

import "sync/atomic"

// MetricsSnapshot is a point-in-time copy of a store's counters.
type MetricsSnapshot struct {
	Dispatches    int64 // Dispatches started, nested ones included.
	Nested        int64 // Dispatches started from inside another dispatch.
	Changes       int64 // Dispatches whose reduction changed the state.
	Notifications int64 // Listener invocations after a change.
	Errors        int64 // Failed dispatches, counted once per failure.
	Listeners     int64 // Listeners currently registered.
}

// Metrics tracks dispatch counters with atomic operations.
type Metrics struct {
	dispatches    atomic.Int64
	nested        atomic.Int64
	changes       atomic.Int64
	notifications atomic.Int64
	errors        atomic.Int64
}

// NewMetrics creates zeroed Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordDispatch(depth int) {
	m.dispatches.Add(1)
	if depth > 1 {
		m.nested.Add(1)
	}
}

func (m *Metrics) RecordChange() {
	m.changes.Add(1)
}

func (m *Metrics) RecordNotifications(delta int) {
	m.notifications.Add(int64(delta))
}

func (m *Metrics) RecordError() {
	m.errors.Add(1)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Dispatches:    m.dispatches.Load(),
		Nested:        m.nested.Load(),
		Changes:       m.changes.Load(),
		Notifications: m.notifications.Load(),
		Errors:        m.errors.Load(),
	}
}
