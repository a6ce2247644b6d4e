// Package nutrition computes nutrition facts for parsed recipes against an
// ingredient catalog, expanding cross-references recursively.
package nutrition

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/starford/larder/internal/aggregate"
	"github.com/starford/larder/internal/catalog"
	"github.com/starford/larder/internal/inflector"
	"github.com/starford/larder/internal/models"
)

// Weight units the calculator converts without any catalog data, in grams.
var weightUnits = map[string]float64{
	"g":  1,
	"oz": 28.3495,
	"lb": 453.592,
	"kg": 1000,
}

// Catalog is the profile source a Calculator reads from.
type Catalog interface {
	Get(name string) (*catalog.Profile, bool)
	OmitNames() []string
}

// Calculator computes NutritionResults. It keeps no state between calls and
// never mutates the catalog or the recipes it is given.
type Calculator struct {
	catalog Catalog
	omit    map[string]struct{}
}

// New returns a Calculator. Ingredients named in omit, and catalog entries in
// the "omit" aisle, are left out of totals and of missing/partial reporting.
func New(cat Catalog, omit []string) *Calculator {
	c := &Calculator{catalog: cat, omit: make(map[string]struct{})}
	for _, name := range omit {
		c.omit[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	if cat != nil {
		for _, name := range cat.OmitNames() {
			c.omit[strings.ToLower(name)] = struct{}{}
		}
	}
	return c
}

// Calculate returns nutrition for r. recipes resolves cross-references and may be nil.
func (c *Calculator) Calculate(r *models.Recipe, recipes aggregate.RecipeLookup) models.NutritionResult {
	start := time.Now()
	defer func() { calculationDuration.Observe(time.Since(start).Seconds()) }()
	calculationsTotal.Inc()

	flat := aggregate.Flatten(r, recipes)
	result := models.NutritionResult{
		Totals:             models.NewNutrients(),
		MissingIngredients: []string{},
		PartialIngredients: []string{},
		Warnings:           flat.Warnings,
	}
	for _, slug := range flat.Unresolved {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Cross-reference %q does not match any recipe", slug))
	}

	for _, line := range flat.Lines {
		if c.omitted(line.Name) {
			continue
		}
		profile, ok := c.profile(line.Name)
		if !ok {
			result.MissingIngredients = appendUnique(result.MissingIngredients, line.Name)
			continue
		}
		if c.omitted(profile.Name) {
			continue
		}

		for _, q := range line.Amounts.Quantities {
			grams, ok := ToGrams(q.Value, q.Unit, profile)
			if !ok {
				result.PartialIngredients = appendUnique(result.PartialIngredients, line.Name)
				continue
			}
			factor := grams / profile.BasisGrams
			for _, n := range models.AllNutrients {
				result.Totals[n] += profile.Nutrient(n) * factor
			}
		}
	}
	for _, n := range models.AllNutrients {
		result.Totals[n] = math.Max(result.Totals[n], 0)
	}

	c.scale(r, &result)

	missingIngredients.Add(float64(len(result.MissingIngredients)))
	partialIngredients.Add(float64(len(result.PartialIngredients)))
	return result
}

// Resolvable reports whether value of unit can be converted to grams for p.
// Editors use it to flag ingredients that would be reported as partial.
func (c *Calculator) Resolvable(value float64, unit string, p *catalog.Profile) bool {
	_, ok := ToGrams(value, unit, p)
	return ok
}

// profile finds a catalog entry that carries nutrient data.
func (c *Calculator) profile(name string) (*catalog.Profile, bool) {
	if c.catalog == nil {
		return nil, false
	}
	p, ok := c.catalog.Get(name)
	if !ok || p.BasisGrams <= 0 {
		return nil, false
	}
	return p, true
}

func (c *Calculator) omitted(name string) bool {
	_, ok := c.omit[strings.ToLower(name)]
	return ok
}

func (c *Calculator) scale(r *models.Recipe, result *models.NutritionResult) {
	fm := r.FrontMatter
	if fm.Serves != nil && *fm.Serves > 0 {
		serves := *fm.Serves
		result.ServingCount = &serves
		result.PerServing = result.Totals.Scaled(1 / float64(serves))
	}
	if fm.Makes != nil && fm.Makes.Quantity > 0 {
		result.MakesQuantity = fm.Makes.Quantity
		result.PerUnit = result.Totals.Scaled(1 / fm.Makes.Quantity)
		if fm.Makes.UnitNoun != "" {
			result.MakesUnitSingular = inflector.Singular(fm.Makes.UnitNoun)
			result.MakesUnitPlural = inflector.Plural(fm.Makes.UnitNoun)
		}
		if result.ServingCount != nil {
			ups := fm.Makes.Quantity / float64(*result.ServingCount)
			result.UnitsPerServing = &ups
		}
	}
}

// ToGrams converts an amount of an ingredient to grams. Units are expected in
// inflector.NormalizeUnit form. The second result is false when p offers no
// conversion for unit.
func ToGrams(value float64, unit string, p *catalog.Profile) (float64, bool) {
	if p == nil {
		return 0, false
	}
	unit = inflector.NormalizeUnit(unit)

	if unit == "" || unit == "each" {
		if grams, ok := portion(p, catalog.UnitlessPortion); ok {
			return value * grams, true
		}
		return 0, false
	}
	if factor, ok := weightUnits[unit]; ok {
		return value * factor, true
	}
	if grams, ok := portion(p, unit); ok {
		return value * grams, true
	}
	if ml, ok := catalog.VolumeUnits[unit]; ok && p.Density != nil {
		d := p.Density
		densityML, ok := catalog.VolumeUnits[d.Unit]
		if !ok || d.Volume <= 0 {
			return 0, false
		}
		return value * ml * d.Grams / (d.Volume * densityML), true
	}
	return 0, false
}

func portion(p *catalog.Profile, name string) (float64, bool) {
	if grams, ok := p.Portions[name]; ok {
		return grams, true
	}
	for key, grams := range p.Portions {
		if strings.EqualFold(key, name) || inflector.NormalizeUnit(key) == name {
			return grams, true
		}
	}
	return 0, false
}

func appendUnique(list []string, name string) []string {
	for _, existing := range list {
		if existing == name {
			return list
		}
	}
	return append(list, name)
}
