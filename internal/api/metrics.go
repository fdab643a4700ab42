package api

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/appengine-ltd/wildcast/internal/store"
	"github.com/appengine-ltd/wildcast/internal/wildlife"
)

type Metrics struct {
	queries    *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	ruleWrites *prometheus.CounterVec
	gatherer   prometheus.Gatherer
}

// NewMetrics registers the query metrics on reg. Passing a fresh registry
// keeps tests independent of the global one.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wildcast_queries_total",
				Help: "Prediction and forecast queries by species and outcome",
			},
			[]string{"species", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wildcast_query_duration_seconds",
				Help:    "Time taken to answer a prediction or forecast query",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		ruleWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wildcast_rule_writes_total",
				Help: "Rule mutations through the admin routes",
			},
			[]string{"op", "outcome"},
		),
		gatherer: reg,
	}
	reg.MustRegister(m.queries, m.duration, m.ruleWrites)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, wildlife.ErrNotFound):
		return "not_found"
	case errors.Is(err, wildlife.ErrValidation):
		return "invalid"
	case errors.Is(err, wildlife.ErrPhaseCoverageGap):
		return "coverage_gap"
	case errors.Is(err, store.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
