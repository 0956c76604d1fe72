// Package metrics exposes Prometheus counters for puzzle activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the server.
type Collector struct {
	registry *prometheus.Registry

	Outcomes     *prometheus.CounterVec // by outcome state after each evaluation
	Interactions *prometheus.CounterVec // by action and ok|rejected
	GamesStarted *prometheus.CounterVec // by mode: normal|daily
	Solves       prometheus.Counter
}

// NewCollector creates a collector on its own registry.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		Outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outcomes_total",
				Help:      "Outcome reports by state",
			},
			[]string{"state"},
		),
		Interactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interactions_total",
				Help:      "Player interactions by action and result",
			},
			[]string{"action", "result"},
		),
		GamesStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "games_started_total",
				Help:      "Puzzles started by mode",
			},
			[]string{"mode"},
		),
		Solves: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "solves_total",
				Help:      "Puzzles reaching success for the first time",
			},
		),
	}

	registry.MustRegister(
		c.Outcomes,
		c.Interactions,
		c.GamesStarted,
		c.Solves,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// RecordInteraction counts one action; err == nil counts as ok.
func (c *Collector) RecordInteraction(action string, err error) {
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	c.Interactions.WithLabelValues(action, result).Inc()
}

func (c *Collector) RecordOutcome(state string) {
	c.Outcomes.WithLabelValues(state).Inc()
}

// Registry returns the Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
