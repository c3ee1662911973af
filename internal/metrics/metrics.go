package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds by method and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AgreementCommitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_agreement_commits_total",
			Help: "Rental agreement commits by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	CompensationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_compensation_runs_total",
			Help: "Saga compensation runs by outcome (reverted, partial)",
		},
		[]string{"outcome"},
	)

	InvoicesIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rental_invoices_issued_total",
			Help: "Invoices persisted through the billing endpoint",
		},
	)
)
