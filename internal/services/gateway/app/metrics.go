package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metriche Prometheus esposte su /metrics.
var (
	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_evaluations_total",
		Help: "Evaluations served, by outcome.",
	}, []string{"outcome"})

	evaluationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gateway_evaluation_duration_seconds",
		Help:    "Latency of POST /evaluate.",
		Buckets: prometheus.DefBuckets,
	})
)
