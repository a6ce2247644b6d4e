package aggregate

import (
	"strings"

	"github.com/starford/larder/internal/models"
)

// Availability reports which ingredients a recipe or quick bite still needs.
type Availability struct {
	Missing      int      `json:"missing"`
	MissingNames []string `json:"missing_names"`
	Ingredients  []string `json:"ingredients"`
}

// AvailabilityInput lists the menu items to check against checked-off groceries.
type AvailabilityInput struct {
	Recipes    []*models.Recipe
	QuickBites []models.QuickBite
	CheckedOff []string
	Lookup     RecipeLookup
	Catalog    Catalog
}

// ComputeAvailability returns availability keyed by recipe slug or quick bite ID.
// Ingredients in the omit aisle are never needed.
func ComputeAvailability(in AvailabilityInput) map[string]Availability {
	canonical := func(name string) string {
		if in.Catalog != nil {
			if c, ok := in.Catalog.Canonical(name); ok {
				return c
			}
		}
		return name
	}
	omitted := func(name string) bool {
		if in.Catalog == nil {
			return false
		}
		a, ok := in.Catalog.Aisle(name)
		return ok && strings.EqualFold(a, OmitAisle)
	}

	checked := make(map[string]struct{}, len(in.CheckedOff))
	for _, name := range in.CheckedOff {
		checked[canonical(name)] = struct{}{}
	}

	entry := func(names []string) Availability {
		av := Availability{Ingredients: []string{}, MissingNames: []string{}}
		seen := make(map[string]struct{})
		for _, n := range names {
			c := canonical(n)
			if _, dup := seen[c]; dup || omitted(c) {
				continue
			}
			seen[c] = struct{}{}
			av.Ingredients = append(av.Ingredients, c)
			if _, ok := checked[c]; !ok {
				av.MissingNames = append(av.MissingNames, c)
			}
		}
		av.Missing = len(av.MissingNames)
		return av
	}

	out := make(map[string]Availability, len(in.Recipes)+len(in.QuickBites))
	for _, r := range in.Recipes {
		flat := Flatten(r, in.Lookup)
		names := make([]string, 0, len(flat.Lines))
		for _, l := range flat.Lines {
			names = append(names, l.Name)
		}
		out[r.Slug] = entry(names)
	}
	for _, qb := range in.QuickBites {
		out[qb.ID] = entry(qb.Ingredients)
	}
	return out
}
