// Package metrics exposes Prometheus collectors for the planner services and
// a snapshot of process health.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "meal_planner"

// Extraction outcomes.
const (
	OutcomeStructured = "structured"
	OutcomeHeuristic  = "heuristic"
	OutcomeFailed     = "failed"
	OutcomeFetchError = "fetch_error"
)

// Collectors groups the application metrics.
type Collectors struct {
	Extractions   *prometheus.CounterVec
	ShoppingItems prometheus.Histogram
	Plans         *prometheus.CounterVec
	PlanDuration  prometheus.Histogram
}

// NewCollectors creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		Extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Recipe clip attempts by outcome.",
		}, []string{"outcome"}),
		ShoppingItems: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "shopping_items",
			Help:      "Number of items per generated shopping list.",
			Buckets:   prometheus.LinearBuckets(0, 10, 8),
		}),
		Plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_total",
			Help:      "Generated meal plans by search strategy.",
		}, []string{"strategy"}),
		PlanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_duration_seconds",
			Help:      "Time spent generating a meal plan.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}
	if reg != nil {
		reg.MustRegister(c.Extractions, c.ShoppingItems, c.Plans, c.PlanDuration)
	}
	return c
}

// RecordExtraction counts one clip attempt.
func (c *Collectors) RecordExtraction(outcome string) {
	c.Extractions.WithLabelValues(outcome).Inc()
}

// RecordShoppingList observes the size of a shopping list.
func (c *Collectors) RecordShoppingList(items int) {
	c.ShoppingItems.Observe(float64(items))
}

// RecordPlan counts a generated plan and how long it took.
func (c *Collectors) RecordPlan(strategy string, took time.Duration) {
	c.Plans.WithLabelValues(strategy).Inc()
	c.PlanDuration.Observe(took.Seconds())
}
