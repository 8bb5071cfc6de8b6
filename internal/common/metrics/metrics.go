// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of chat-completion calls by final outcome",
		},
		[]string{"provider", "outcome"},
	)

	LLMAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_attempts_total",
			Help: "Total number of HTTP attempts made against the LLM endpoint",
		},
		[]string{"provider", "outcome"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Duration of a chat-completion call including retries",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)

	LLMInflight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "llm_inflight_requests",
			Help: "Number of chat-completion calls holding an admission slot",
		},
		[]string{"provider"},
	)

	LLMAdmissionWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_admission_wait_seconds",
			Help:    "Time spent waiting for an admission slot",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"backend"},
	)

	CatalogProductsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_products_loaded",
			Help: "Number of products returned by the most recent catalog load",
		},
	)
)
