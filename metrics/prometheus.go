package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type PrometheusRecorder struct {
	counters  *prometheus.CounterVec
	histogram *prometheus.HistogramVec
}

// NewPrometheusRecorder registers and returns the checkout metric set.
// Counter labels: event type plus the originating source or token.
func NewPrometheusRecorder() Recorder {
	counters := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "events_total",
			Help:      "checkout engine event counters",
		},
		[]string{"type", "origin"},
	)

	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "checkout",
			Name:      "fetch_latency_seconds",
			Help:      "external fetch latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "origin"},
	)

	prometheus.MustRegister(counters, histogram)

	return &PrometheusRecorder{
		counters:  counters,
		histogram: histogram,
	}
}

func (p *PrometheusRecorder) IncCounter(name string, labels map[string]string) {
	p.counters.With(prometheus.Labels{
		"type":   name,
		"origin": origin(labels),
	}).Inc()
}

func (p *PrometheusRecorder) ObserveLatency(name string, d time.Duration, labels map[string]string) {
	p.histogram.With(prometheus.Labels{
		"operation": name,
		"origin":    origin(labels),
	}).Observe(d.Seconds())
}

func origin(labels map[string]string) string {
	if labels == nil {
		return ""
	}
	if s, ok := labels["source"]; ok {
		return s
	}
	return labels["token"]
}
