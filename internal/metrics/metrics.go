// Package metrics exposes Prometheus metrics for the scheduling service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for the service.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// SolvesTotal counts solve jobs by encoding and outcome. Outcome is one
// of feasible, infeasible, canceled, error.
var SolvesTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "scheduling",
	Name:      "solves_total",
	Help:      "Solve jobs by model encoding and outcome",
}, []string{"encoding", "outcome"})

// SolveDuration observes end-to-end solve latency including the external
// solver round trip.
var SolveDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "scheduling",
	Name:      "solve_duration_seconds",
	Help:      "End-to-end solve latency",
	Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
}, []string{"encoding"})

// LastViolations records the violation count of the most recent solve.
var LastViolations = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "scheduling",
	Name:      "last_solve_violations",
	Help:      "Violation count reported by the most recent solve",
})

// ModelConstraints records the constraint count of the most recently
// built quadratic model.
var ModelConstraints = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "scheduling",
	Name:      "model_constraints",
	Help:      "Constraint count of the most recently built labeled model",
})
