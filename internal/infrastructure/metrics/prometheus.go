// Package metrics records caption request outcomes with Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/doeshing/recogaize/internal/ports"
)

// Outcome labels.
const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeSuperseded = "superseded"
)

// Recorder implements ports.MetricsRecorder on a private registry.
type Recorder struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	historyLength prometheus.Gauge
	cacheLookups  *prometheus.CounterVec
}

// NewRecorder registers the recogaize collectors on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recogaize_caption_requests_total",
				Help: "Caption requests by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recogaize_caption_request_duration_seconds",
				Help:    "Duration of caption requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		historyLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recogaize_history_entries",
			Help: "Entries currently held in the bounded caption history",
		}),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recogaize_cache_lookups_total",
				Help: "Caption cache lookups by result",
			},
			[]string{"result"},
		),
	}
	r.registry.MustRegister(r.requests, r.duration, r.historyLength, r.cacheLookups)
	return r
}

// ObserveRequest counts one finished request.
func (r *Recorder) ObserveRequest(outcome string, d time.Duration) {
	r.requests.WithLabelValues(outcome).Inc()
	r.duration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveHistoryLength tracks the bounded history size.
func (r *Recorder) ObserveHistoryLength(n int) {
	r.historyLength.Set(float64(n))
}

// ObserveCacheLookup counts a cache hit or miss.
func (r *Recorder) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

var _ ports.MetricsRecorder = (*Recorder)(nil)
