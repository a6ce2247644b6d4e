package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/larder/internal/models"
)

func TestParseServing(t *testing.T) {
	tests := []struct {
		input string
		want  Serving
		ok    bool
	}{
		{"30g", Serving{Grams: 30}, true},
		{"1/4 cup (30g)", Serving{Grams: 30, VolumeAmount: 0.25, VolumeUnit: "cup"}, true},
		{"2 Tablespoons (28 grams)", Serving{Grams: 28, VolumeAmount: 2, VolumeUnit: "tbsp"}, true},
		{"about 3 slices (84g)", Serving{Grams: 84, PortionUnit: "slice", PortionGrams: 28}, true},
		{"2 eggs (100g)", Serving{Grams: 100, PortionUnit: UnitlessPortion, PortionGrams: 50}, true},
		{"3 crackers (10g)", Serving{Grams: 10, PortionUnit: "cracker", PortionGrams: 3.33}, true},
		{"1 cup", Serving{}, false},
		{"0g", Serving{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseServing(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseLabel(t *testing.T) {
	label := `Serving size: 1/4 cup (30g)

Calories 110
Total Fat 0.5g
  Saturated Fat 0g
Sodium 5mg
Total Carbohydrate 23g
Dietary Fiber 1g
Total Sugars 0g
Protein 3G

Portions:
  scoop: 15g
  handful: 40
`
	res := ParseLabel(label)
	require.True(t, res.OK(), res.Errors)

	p := res.Profile
	assert.Equal(t, 30.0, p.BasisGrams)
	assert.Equal(t, 110.0, p.Nutrient(models.Calories))
	assert.Equal(t, 0.5, p.Nutrient(models.Fat))
	assert.Equal(t, 5.0, p.Nutrient(models.Sodium))
	assert.Equal(t, 23.0, p.Nutrient(models.Carbs))
	assert.Equal(t, 1.0, p.Nutrient(models.Fiber))
	assert.Equal(t, 3.0, p.Nutrient(models.Protein))
	assert.Equal(t, 0.0, p.Nutrient(models.AddedSugars))
	assert.Equal(t, &Density{Grams: 30, Volume: 0.25, Unit: "cup"}, p.Density)
	assert.Equal(t, map[string]float64{"scoop": 15, "handful": 40}, p.Portions)
}

func TestParseLabel_Errors(t *testing.T) {
	assert.Equal(t, []string{"Serving size is required"}, ParseLabel("Calories 100").Errors)
	assert.Equal(t, []string{"Serving size must include a gram weight (e.g., 30g)"},
		ParseLabel("Serving size: 1 cup\nCalories 100").Errors)
}

func TestFormatLabel_RoundTrip(t *testing.T) {
	p := Profile{
		Name:       "Oats",
		BasisGrams: 40,
		Nutrients:  models.Nutrients{models.Calories: 150, models.Fat: 2.5, models.Sodium: 0, models.Protein: 5},
		Density:    &Density{Grams: 40, Volume: 0.5, Unit: "cup"},
		Portions:   map[string]float64{"packet": 28},
	}
	text := FormatLabel(p)
	assert.Contains(t, text, "Serving size: 0.5 cup (40g)")
	assert.Contains(t, text, "Total Fat           2.5g")
	assert.Contains(t, text, "    Added Sugars    0g")
	assert.Contains(t, text, "Portions:\n  packet: 28g")

	res := ParseLabel(text)
	require.True(t, res.OK())
	assert.Equal(t, p.BasisGrams, res.Profile.BasisGrams)
	assert.Equal(t, 150.0, res.Profile.Nutrient(models.Calories))
	assert.Equal(t, 2.5, res.Profile.Nutrient(models.Fat))
	assert.Equal(t, p.Density, res.Profile.Density)
	assert.Equal(t, 28.0, res.Profile.Portions["packet"])
}

func TestFormatLabel_GramServingWhenBasisDiffers(t *testing.T) {
	p := Profile{BasisGrams: 100, Density: &Density{Grams: 218, Volume: 1, Unit: "cup"}}
	assert.Contains(t, FormatLabel(p), "Serving size: 100g\n")
}

func TestBlankLabel(t *testing.T) {
	blank := BlankLabel()
	assert.Contains(t, blank, "Serving size:\n\nCalories\nTotal Fat")
	assert.Equal(t, []string{"Serving size is required"}, ParseLabel("").Errors)
}
