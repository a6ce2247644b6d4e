// Package catalog holds ingredient nutrition profiles and the overlay lookup
// that lets a kitchen shadow global entries.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/larder/internal/inflector"
	"github.com/starford/larder/internal/models"
)

// UnitlessPortion is the portion key used for bare counts ("Eggs, 3").
const UnitlessPortion = "~unitless"

// Sodium is recorded in milligrams and legitimately runs far above the other nutrients.
const (
	maxNutrient = 10000.0
	maxSodium   = 50000.0
	maxAisleLen = 50
)

// VolumeUnits lists the density units the calculator can convert, in millilitres.
var VolumeUnits = map[string]float64{
	"cup":  236.588,
	"tbsp": 14.787,
	"tsp":  4.929,
	"ml":   1,
	"l":    1000,
}

// Density converts a volume of the ingredient to grams: Volume Unit weighs Grams.
type Density struct {
	Grams  float64 `yaml:"grams" json:"grams"`
	Volume float64 `yaml:"volume" json:"volume"`
	Unit   string  `yaml:"unit" json:"unit"`
}

// Validate checks that every density field is set and usable.
func (d Density) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Grams, validation.Required.Error("is required when other density fields are set"),
			validation.Min(0.0).Exclusive()),
		validation.Field(&d.Volume, validation.Required.Error("is required when other density fields are set"),
			validation.Min(0.0).Exclusive()),
		validation.Field(&d.Unit, validation.Required.Error("is required when other density fields are set"),
			validation.By(volumeUnit)),
	)
}

// Profile is one catalog entry. Nutrient values are per BasisGrams.
type Profile struct {
	Name       string             `yaml:"name" json:"name"`
	BasisGrams float64            `yaml:"basis_grams,omitempty" json:"basis_grams,omitempty"`
	Nutrients  models.Nutrients   `yaml:"nutrients,omitempty" json:"nutrients,omitempty"`
	Density    *Density           `yaml:"density,omitempty" json:"density,omitempty"`
	Portions   map[string]float64 `yaml:"portions,omitempty" json:"portions,omitempty"`
	Aisle      string             `yaml:"aisle,omitempty" json:"aisle,omitempty"`
	Sources    []string           `yaml:"sources,omitempty" json:"sources,omitempty"`
}

// Normalize trims the name, folds "each" portions into UnitlessPortion and
// canonicalises the density unit. It is applied before validation.
func (p *Profile) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Aisle = strings.TrimSpace(p.Aisle)
	for key, grams := range p.Portions {
		if strings.EqualFold(key, "each") {
			delete(p.Portions, key)
			p.Portions[UnitlessPortion] = grams
		}
	}
	if p.Density != nil {
		if *p.Density == (Density{}) {
			p.Density = nil
		} else {
			p.Density.Unit = inflector.NormalizeUnit(p.Density.Unit)
		}
	}
}

// HasNutrients reports whether any nutrient value was recorded.
func (p *Profile) HasNutrients() bool {
	return len(p.Nutrients) > 0
}

// Nutrient returns the recorded amount of n per BasisGrams, or zero.
func (p *Profile) Nutrient(n models.Nutrient) float64 {
	return p.Nutrients[n]
}

// Validate checks the profile. Call Normalize first.
func (p Profile) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.BasisGrams,
			validation.When(p.HasNutrients(),
				validation.Required.Error("is required when nutrient values are present")),
			validation.Min(0.0).Exclusive()),
		validation.Field(&p.Nutrients, validation.By(nutrientsInRange)),
		validation.Field(&p.Density),
		validation.Field(&p.Portions, validation.By(portionsPositive)),
		validation.Field(&p.Aisle, validation.Length(0, maxAisleLen)),
	)
}

func nutrientsInRange(value any) error {
	nutrients, _ := value.(models.Nutrients)
	known := make(map[models.Nutrient]struct{}, len(models.AllNutrients))
	for _, n := range models.AllNutrients {
		known[n] = struct{}{}
	}
	var errs []error
	for n, v := range nutrients {
		if _, ok := known[n]; !ok {
			errs = append(errs, fmt.Errorf("unknown nutrient %q", n))
			continue
		}
		limit := maxNutrient
		if n == models.Sodium {
			limit = maxSodium
		}
		if v < 0 || v > limit {
			errs = append(errs, fmt.Errorf("%s must be between 0 and %g", n, limit))
		}
	}
	return errors.Join(errs...)
}

func portionsPositive(value any) error {
	portions, _ := value.(map[string]float64)
	var errs []error
	for name, grams := range portions {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, errors.New("portion name cannot be blank"))
			continue
		}
		if grams <= 0 {
			errs = append(errs, fmt.Errorf("value for '%s' must be greater than 0", name))
		}
	}
	return errors.Join(errs...)
}

func volumeUnit(value any) error {
	unit, _ := value.(string)
	if unit == "" {
		return nil
	}
	if _, ok := VolumeUnits[unit]; !ok {
		return fmt.Errorf("must be one of cup, tbsp, tsp, ml, l")
	}
	return nil
}
