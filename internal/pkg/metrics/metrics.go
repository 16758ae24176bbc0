package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "attendance"

// Metrics holds the collectors for the reporting engine on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	computeDuration *prometheus.HistogramVec
	eventsProcessed *prometheus.CounterVec
	computeFailures *prometheus.CounterVec
	liveSubscribers prometheus.Gauge
	livePublished   prometheus.Counter
}

// New creates a registry with process and Go runtime collectors plus the engine collectors.
// Each call is independent so tests can create as many as they like.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		computeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compute_duration_seconds",
			Help:      "Time spent fetching and reconciling events per operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		eventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_processed_total",
			Help:      "Attendance events fed into the engine per operation.",
		}, []string{"operation"}),
		computeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compute_failures_total",
			Help:      "Operations that failed after validation.",
		}, []string{"operation"}),
		liveSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_subscribers",
			Help:      "Open live attendance streams.",
		}),
		livePublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_snapshots_published_total",
			Help:      "Live attendance snapshots pushed to subscribers.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.computeDuration,
		m.eventsProcessed,
		m.computeFailures,
		m.liveSubscribers,
		m.livePublished,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveCompute records one finished operation.
func (m *Metrics) ObserveCompute(operation string, start time.Time, events int, err error) {
	if m == nil {
		return
	}
	m.computeDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	m.eventsProcessed.WithLabelValues(operation).Add(float64(events))
	if err != nil {
		m.computeFailures.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) SetLiveSubscribers(n int) {
	if m == nil {
		return
	}
	m.liveSubscribers.Set(float64(n))
}

func (m *Metrics) IncLivePublished() {
	if m == nil {
		return
	}
	m.livePublished.Inc()
}
