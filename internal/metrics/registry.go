package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var defaultDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40}

type registry struct {
	gatherer *prometheus.Registry

	providerRequests *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	submissions      *prometheus.CounterVec
	photosIngested   prometheus.Counter
	activeSessions   prometheus.Gauge
}

func newRegistry() *registry {
	r := &registry{
		gatherer: prometheus.NewRegistry(),
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jxa_provider_requests_total",
			Help: "Total text-generation provider requests.",
		}, []string{"provider", "operation", "status", "error_category"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jxa_provider_request_duration_seconds",
			Help:    "Text-generation provider request duration in seconds.",
			Buckets: defaultDurationBuckets,
		}, []string{"provider", "operation", "status"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jxa_form_submissions_total",
			Help: "Form submissions by outcome.",
		}, []string{"outcome"}),
		photosIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jxa_photos_ingested_total",
			Help: "Photos decoded and attached to forms.",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jxa_form_sessions",
			Help: "Form sessions currently held in memory.",
		}),
	}

	r.gatherer.MustRegister(
		collectors.NewGoCollector(),
		r.providerRequests,
		r.providerLatency,
		r.submissions,
		r.photosIngested,
		r.activeSessions,
	)
	return r
}

var (
	mu             sync.RWMutex
	globalRegistry = newRegistry()
)

func current() *registry {
	mu.RLock()
	defer mu.RUnlock()
	return globalRegistry
}

func RecordProviderCall(provider string, operation string, status string, errorCategory string, duration time.Duration) {
	r := current()
	r.providerRequests.WithLabelValues(provider, operation, status, errorCategory).Inc()
	r.providerLatency.WithLabelValues(provider, operation, status).Observe(duration.Seconds())
}

// RecordSubmission counts one submit by outcome: invalid, generated or fallback.
func RecordSubmission(outcome string) {
	current().submissions.WithLabelValues(outcome).Inc()
}

func RecordPhotosIngested(count int) {
	current().photosIngested.Add(float64(count))
}

func SetActiveSessions(count int) {
	current().activeSessions.Set(float64(count))
}

func Handler() http.Handler {
	r := current()
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

func ResetForTests() {
	mu.Lock()
	defer mu.Unlock()
	globalRegistry = newRegistry()
}
