package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DurationKey is the event Data key PrometheusObserver reads to fill its
// duration histogram. Values may be a time.Duration or a float64 in seconds.
const DurationKey = "duration"

// PrometheusObserver counts events by type and source and records the
// durations that events report under DurationKey.
type PrometheusObserver struct {
	events    *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewPrometheusObserver creates a PrometheusObserver and registers its
// collectors with reg under the given namespace.
func NewPrometheusObserver(reg prometheus.Registerer, namespace string) (*PrometheusObserver, error) {
	o := &PrometheusObserver{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "observer",
			Name:      "events_total",
			Help:      "Number of observability events by type and source",
		}, []string{"type", "source"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "observer",
			Name:      "event_duration_seconds",
			Help:      "Durations reported by observability events",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"type"}),
	}

	for _, c := range []prometheus.Collector{o.events, o.durations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *PrometheusObserver) OnEvent(ctx context.Context, event Event) {
	o.events.WithLabelValues(string(event.Type), event.Source).Inc()

	switch d := event.Data[DurationKey].(type) {
	case time.Duration:
		o.durations.WithLabelValues(string(event.Type)).Observe(d.Seconds())
	case float64:
		o.durations.WithLabelValues(string(event.Type)).Observe(d)
	}
}
