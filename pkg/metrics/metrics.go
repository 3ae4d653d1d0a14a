// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// GenerationsTotal tracks suggestion generation calls per provider.
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_generations_total",
			Help: "Total suggestion generation calls",
		},
		[]string{"provider", "status"},
	)

	// GenerationDuration tracks suggestion generation latency.
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_generation_duration_seconds",
			Help:    "Suggestion generation duration",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider"},
	)

	// FallbacksTotal tracks generation calls that fell through to the
	// secondary provider.
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_fallbacks_total",
			Help: "Generation calls retried on the fallback provider",
		},
		[]string{"provider", "status"},
	)

	// ReviewsTotal tracks social review generations.
	ReviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_reviews_total",
			Help: "Total social review generations",
		},
		[]string{"status"},
	)

	// SpeechTotal tracks speech synthesis calls.
	SpeechTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_speech_total",
			Help: "Total speech synthesis calls",
		},
		[]string{"status"},
	)

	// SpeechDropped tracks playback requests dropped while one was in flight.
	SpeechDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_speech_dropped_total",
			Help: "Playback requests dropped because playback was in flight",
		},
	)

	// MigrationsTotal tracks guest-to-cloud history migrations.
	MigrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_migrations_total",
			Help: "Guest history migrations to the remote store",
		},
	)

	// MigratedConversationsTotal tracks conversations uploaded by migrations.
	MigratedConversationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_migrated_conversations_total",
			Help: "Conversations uploaded during guest history migrations",
		},
	)

	// SyncFailuresTotal tracks swallowed sync errors.
	SyncFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_failures_total",
			Help: "Remote store errors swallowed during hydration",
		},
	)

	// SessionTransitionsTotal tracks session state transitions.
	SessionTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_transitions_total",
			Help: "Session state transitions",
		},
		[]string{"kind"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordGeneration records metrics for a suggestion generation call.
func RecordGeneration(provider, status string, duration float64) {
	GenerationsTotal.WithLabelValues(provider, status).Inc()
	GenerationDuration.WithLabelValues(provider).Observe(duration)
}
