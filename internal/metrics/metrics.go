// Package metrics holds the Prometheus collectors for calculations and the
// HTTP API.
package metrics

import (
	"time"

	"github.com/iwvelando/mortgage-ledger/pkg/mortgage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Calculations counts engine runs by source and outcome.
	Calculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mortgage_ledger_calculations_total",
			Help: "Number of mortgage calculations",
		},
		[]string{"source", "status"},
	)

	// CalculationDuration observes how long an engine run takes.
	CalculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mortgage_ledger_calculation_duration_seconds",
			Help:    "Time spent running the mortgage engine",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// Payoffs counts finished calculations by how the loan ended.
	Payoffs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mortgage_ledger_payoffs_total",
			Help: "Calculated loans by payoff type",
		},
		[]string{"payoff_type"},
	)

	// DroppedEvents counts timeline events skipped before calculation.
	DroppedEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mortgage_ledger_dropped_events_total",
			Help: "Timeline events skipped because they could not be converted",
		},
	)

	// HTTPRequests counts API requests by route, method and status code.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mortgage_ledger_http_requests_total",
			Help: "HTTP requests handled by the API",
		},
		[]string{"route", "method", "code"},
	)

	// HTTPDuration observes API request latency by route.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mortgage_ledger_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// ObserveCalculation records one engine run. result is nil when the run
// failed.
func ObserveCalculation(source string, started time.Time, result *mortgage.Result, err error) {
	CalculationDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
	if err != nil || result == nil {
		Calculations.WithLabelValues(source, "error").Inc()
		return
	}
	Calculations.WithLabelValues(source, "ok").Inc()
	Payoffs.WithLabelValues(string(result.PayoffType)).Inc()
}
