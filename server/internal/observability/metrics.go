package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics. Registered on the default registry and served at
// /metrics.
var (
	// SweepsTotal counts inbox sweep runs by outcome ("ok", "error",
	// "skipped" when a previous sweep still holds the lock).
	SweepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "responder",
		Name:      "sweeps_total",
		Help:      "Inbox sweep runs by outcome.",
	}, []string{"outcome"})

	// EmailsProcessedTotal counts emails examined during sweeps.
	EmailsProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "responder",
		Name:      "emails_processed_total",
		Help:      "Emails examined during inbox sweeps.",
	})

	// DraftsCreatedTotal counts drafted replies by generator
	// ("llm" or "fallback").
	DraftsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "responder",
		Name:      "drafts_created_total",
		Help:      "Reply drafts created by generator.",
	}, []string{"generator"})

	// PipelineFailuresTotal counts per-email failures by error code.
	PipelineFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "responder",
		Name:      "pipeline_failures_total",
		Help:      "Per-email pipeline failures by error code.",
	}, []string{"code"})

	// SweepDurationSeconds observes how long a full sweep takes.
	SweepDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "responder",
		Name:      "sweep_duration_seconds",
		Help:      "Duration of full inbox sweeps.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	// LLMRequestsTotal counts LLM draft calls by outcome ("ok",
	// "error").
	LLMRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "responder",
		Name:      "llm_requests_total",
		Help:      "LLM draft calls by outcome.",
	}, []string{"outcome"})
)
