package models

// Nutrient names a tracked nutrient field.
type Nutrient string

const (
	Calories     Nutrient = "calories"
	Fat          Nutrient = "fat"
	SaturatedFat Nutrient = "saturated_fat"
	TransFat     Nutrient = "trans_fat"
	Cholesterol  Nutrient = "cholesterol"
	Sodium       Nutrient = "sodium"
	Carbs        Nutrient = "carbs"
	Fiber        Nutrient = "fiber"
	TotalSugars  Nutrient = "total_sugars"
	AddedSugars  Nutrient = "added_sugars"
	Protein      Nutrient = "protein"
)

// AllNutrients lists the nutrients in label order.
var AllNutrients = []Nutrient{
	Calories, Fat, SaturatedFat, TransFat, Cholesterol, Sodium,
	Carbs, Fiber, TotalSugars, AddedSugars, Protein,
}

// Nutrients maps each nutrient to an amount. Missing keys read as zero.
type Nutrients map[Nutrient]float64

// NewNutrients returns a map with every nutrient set to zero.
func NewNutrients() Nutrients {
	n := make(Nutrients, len(AllNutrients))
	for _, k := range AllNutrients {
		n[k] = 0
	}
	return n
}

// Scaled returns a copy with every value multiplied by f.
func (n Nutrients) Scaled(f float64) Nutrients {
	out := NewNutrients()
	for _, k := range AllNutrients {
		out[k] = n[k] * f
	}
	return out
}

// NutritionResult is derived nutrition data for one recipe.
type NutritionResult struct {
	Totals             Nutrients `json:"totals"`
	ServingCount       *int      `json:"serving_count,omitempty"`
	PerServing         Nutrients `json:"per_serving,omitempty"`
	PerUnit            Nutrients `json:"per_unit,omitempty"`
	MakesQuantity      float64   `json:"makes_quantity,omitempty"`
	MakesUnitSingular  string    `json:"makes_unit_singular,omitempty"`
	MakesUnitPlural    string    `json:"makes_unit_plural,omitempty"`
	UnitsPerServing    *float64  `json:"units_per_serving,omitempty"`
	MissingIngredients []string  `json:"missing_ingredients"`
	PartialIngredients []string  `json:"partial_ingredients"`
	Warnings           []string  `json:"warnings,omitempty"`
}

// Complete reports whether every ingredient resolved to a gram weight.
func (r NutritionResult) Complete() bool {
	return len(r.MissingIngredients) == 0 && len(r.PartialIngredients) == 0
}
