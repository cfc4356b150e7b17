package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cocktail_generations_total",
			Help: "Generation pipeline runs by request kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	generationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cocktail_generation_request_duration_seconds",
			Help:    "Latency of calls to the generation service",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)

	mirrorFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cocktail_recipe_mirror_failures_total",
			Help: "Stored recipes that could not be copied to the mirror",
		},
	)
)
