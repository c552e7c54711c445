// Package metrics records restore-session counters for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the session metrics on its own registry. A nil *Recorder
// is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	SessionsActive     prometheus.Gauge
	SessionsTotal      *prometheus.CounterVec
	VideosTotal        *prometheus.CounterVec
	CorrelationSeconds prometheus.Histogram
	ClicksTotal        *prometheus.CounterVec
}

// New creates a Recorder with a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "vidresume_sessions_active",
				Help: "Number of restore sessions in flight",
			},
		),
		SessionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vidresume_sessions_total",
				Help: "Restore sessions by terminal phase",
			},
			[]string{"result"},
		),
		VideosTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vidresume_videos_total",
				Help: "Videos processed by outcome",
			},
			[]string{"outcome"},
		),
		CorrelationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vidresume_correlation_seconds",
				Help:    "Time from browser launch to its window being found",
				Buckets: []float64{.1, .25, .5, 1, 2, 4, 8, 16},
			},
		),
		ClicksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vidresume_clicks_total",
				Help: "Synthetic clicks by pass",
			},
			[]string{"pass"},
		),
	}
}

// SessionStarted marks a session in flight.
func (r *Recorder) SessionStarted() {
	if r == nil {
		return
	}
	r.SessionsActive.Inc()
}

// SessionFinished records a session's terminal phase.
func (r *Recorder) SessionFinished(result string) {
	if r == nil {
		return
	}
	r.SessionsActive.Dec()
	r.SessionsTotal.WithLabelValues(result).Inc()
}

// Video records one per-video outcome.
func (r *Recorder) Video(outcome string) {
	if r == nil {
		return
	}
	r.VideosTotal.WithLabelValues(outcome).Inc()
}

// Correlated records how long a window took to appear.
func (r *Recorder) Correlated(d time.Duration) {
	if r == nil {
		return
	}
	r.CorrelationSeconds.Observe(d.Seconds())
}

// Click records one synthetic click in the named pass.
func (r *Recorder) Click(pass string) {
	if r == nil {
		return
	}
	r.ClicksTotal.WithLabelValues(pass).Inc()
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// WriteTextfile writes the metrics in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
