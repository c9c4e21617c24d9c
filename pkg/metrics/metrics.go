package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "clubhouse"

// Metrics owns a private registry per service process. All methods are safe
// on a nil receiver so components can run without instrumentation.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal  *prometheus.CounterVec
	HTTPRequestLatency *prometheus.HistogramVec
	ConflictsDetected  *prometheus.CounterVec
	ModerationActions  *prometheus.CounterVec
	EventsPublished    *prometheus.CounterVec
	EventPublishTime   prometheus.Histogram
}

func New(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		Registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "HTTP requests by method and status code.",
			ConstLabels: constLabels,
		}, []string{"method", "status"}),
		HTTPRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency by method.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method"}),
		ConflictsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "schedule_conflicts_detected_total",
			Help:        "Overlapping schedule entries reported, by operation.",
			ConstLabels: constLabels,
		}, []string{"operation"}),
		ModerationActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "marketplace_moderation_actions_total",
			Help:        "Marketplace moderation actions by action and outcome.",
			ConstLabels: constLabels,
		}, []string{"action", "outcome"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "events_published_total",
			Help:        "Domain events handed to the broker, by topic and outcome.",
			ConstLabels: constLabels,
		}, []string{"topic", "outcome"}),
		EventPublishTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "event_publish_duration_seconds",
			Help:        "Time spent publishing a domain event.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestLatency,
		m.ConflictsDetected,
		m.ModerationActions,
		m.EventsPublished,
		m.EventPublishTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordConflicts(operation string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ConflictsDetected.WithLabelValues(operation).Add(float64(n))
}

func (m *Metrics) RecordModeration(action string, err error) {
	if m == nil {
		return
	}
	m.ModerationActions.WithLabelValues(action, outcome(err)).Inc()
}

func (m *Metrics) RecordPublish(topic string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(topic, outcome(err)).Inc()
	m.EventPublishTime.Observe(d.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			m.HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
			m.HTTPRequestLatency.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
		})
	}
}
