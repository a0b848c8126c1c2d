package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure stages for RouteFailures.
const (
	StageClassification = "classification"
	StageGeneration     = "generation"
	StageFallback       = "fallback"
)

var (
	// RouteRequests counts completed routes.
	RouteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartrouter_route_requests_total",
			Help: "Total number of completed routes",
		},
		[]string{"complexity", "model", "classifier"},
	)

	// RouteLatency records end-to-end route latency.
	RouteLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smartrouter_route_latency_seconds",
			Help:    "Route latency in seconds, from classification to generated answer",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	// RouteFallbacks counts generations retried on the advanced model.
	RouteFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "smartrouter_route_fallbacks_total",
			Help: "Total number of fallbacks to the advanced model",
		},
	)

	// RouteFailures counts failed routes by the stage that failed.
	RouteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartrouter_route_failures_total",
			Help: "Total number of failed routes",
		},
		[]string{"stage"},
	)

	// RouteCost accumulates estimated spend.
	RouteCost = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartrouter_route_cost_usd_total",
			Help: "Estimated spend in USD",
		},
		[]string{"model"},
	)
)
