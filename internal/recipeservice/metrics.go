package recipeservice

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	nutritionCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "larder_nutrition_cache_lookups_total",
			Help: "Nutrition cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	cascadeRecalculations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "larder_nutrition_cascade_recalculations_total",
			Help: "Recipes recalculated because they or a recipe they reference changed",
		},
	)
)
