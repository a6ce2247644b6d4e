package nutrition

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	calculationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "larder_nutrition_calculations_total",
			Help: "Total number of recipe nutrition calculations",
		},
	)

	calculationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "larder_nutrition_calculation_duration_seconds",
			Help:    "Duration of recipe nutrition calculations in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	missingIngredients = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "larder_nutrition_missing_ingredients_total",
			Help: "Ingredients reported without a catalog profile",
		},
	)

	partialIngredients = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "larder_nutrition_partial_ingredients_total",
			Help: "Ingredients reported without a usable unit conversion",
		},
	)
)
