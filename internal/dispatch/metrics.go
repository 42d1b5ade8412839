package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_backend_attempts_total",
		Help: "Backend attempts by model and outcome (ok, transport_error, quality_rejected).",
	}, []string{"model", "outcome"})

	fallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_fallbacks_total",
		Help: "Generations served by the fallback synthesizer after cascade exhaustion.",
	})

	backendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dispatch_backend_latency_seconds",
		Help:    "Latency of individual backend attempts.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	}, []string{"model"})
)
