package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voxline_active_sessions",
		Help: "Number of live conversation sessions",
	})

	sessionsEnded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxline_sessions_ended_total",
		Help: "Sessions removed from the live set, by reason",
	}, []string{"reason"})

	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxline_turns_total",
		Help: "Turns processed, by outcome",
	}, []string{"outcome"})

	stageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voxline_stage_latency_seconds",
		Help:    "Per-stage turn latency",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
	}, []string{"stage"})

	generationFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxline_generation_fallbacks_total",
		Help: "Generation failures recovered with persona fallback text, by class",
	}, []string{"class"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxline_errors_total",
		Help: "Errors by component",
	}, []string{"component"})
)

// SessionStarted records a session entering the live set.
func SessionStarted() {
	activeSessions.Inc()
}

// SessionEnded records a session leaving the live set with its reason.
func SessionEnded(reason string) {
	activeSessions.Dec()
	sessionsEnded.WithLabelValues(reason).Inc()
}

// TurnProcessed records a finished turn. Outcome is one of
// "ok", "no_speech", "error".
func TurnProcessed(outcome string) {
	turnsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStage records the latency of one pipeline stage
// ("transcribe", "generate", "synthesize", "total").
func ObserveStage(stage string, d time.Duration) {
	stageLatency.WithLabelValues(stage).Observe(d.Seconds())
}

// GenerationFallback records a recovered remote-generation failure.
func GenerationFallback(class string) {
	generationFallbacks.WithLabelValues(class).Inc()
}

// ComponentError records an error attributed to a component.
func ComponentError(component string) {
	errorsTotal.WithLabelValues(component).Inc()
}
