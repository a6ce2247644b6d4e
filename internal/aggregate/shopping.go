package aggregate

import (
	"sort"
	"strings"

	"github.com/starford/larder/internal/inflector"
	"github.com/starford/larder/internal/models"
	"github.com/starford/larder/internal/numeric"
)

// MiscellaneousAisle collects items without a catalog aisle and custom items.
const MiscellaneousAisle = "Miscellaneous"

// ShoppingInput is everything needed to build a shopping list.
type ShoppingInput struct {
	Recipes    []*models.Recipe
	QuickBites []models.QuickBite
	Custom     []string
	Lookup     RecipeLookup
	Catalog    Catalog
	AisleOrder []string
}

// DisplayAmount is a quantity ready for display, e.g. {1.5, "cups", "1½ cups"}.
type DisplayAmount struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
	Text  string  `json:"text"`
}

// ShoppingItem is one line of a shopping list.
type ShoppingItem struct {
	Name    string          `json:"name"`
	Amounts []DisplayAmount `json:"amounts"`
	Sources []string        `json:"sources"`
}

// Aisle groups shopping items.
type Aisle struct {
	Name  string         `json:"name"`
	Items []ShoppingItem `json:"items"`
}

// BuildShoppingList aggregates recipes (cross-references expanded) and quick bites,
// drops omitted ingredients, groups by aisle and appends custom items.
func BuildShoppingList(in ShoppingInput) []Aisle {
	agg := NewAggregator(in.Catalog)
	for _, r := range in.Recipes {
		agg.Add(RecipeSource(r, in.Lookup))
	}
	for _, qb := range in.QuickBites {
		agg.Add(QuickBiteSource(qb))
	}

	groups := make(map[string][]ShoppingItem)
	for _, name := range agg.Names() {
		aisle := MiscellaneousAisle
		if in.Catalog != nil {
			if a, ok := in.Catalog.Aisle(name); ok && a != "" {
				aisle = a
			}
		}
		if strings.EqualFold(aisle, OmitAisle) {
			continue
		}
		entry := agg.entries[name]
		groups[aisle] = append(groups[aisle], ShoppingItem{
			Name:    name,
			Amounts: displayAmounts(entry.Amounts),
			Sources: entry.Sources,
		})
	}

	for _, item := range in.Custom {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		groups[MiscellaneousAisle] = append(groups[MiscellaneousAisle],
			ShoppingItem{Name: item, Amounts: []DisplayAmount{}, Sources: []string{}})
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	SortAisles(names, in.AisleOrder)

	out := make([]Aisle, 0, len(names))
	for _, name := range names {
		out = append(out, Aisle{Name: name, Items: groups[name]})
	}
	return out
}

// SortAisles orders aisles: configured order first, then the rest alphabetically,
// with Miscellaneous last unless the order names it.
func SortAisles(aisles []string, order []string) {
	pos := make(map[string]int, len(order))
	for i, a := range order {
		pos[a] = i
	}
	rank := func(a string) int {
		if _, ok := pos[a]; ok {
			return 0
		}
		if a == MiscellaneousAisle {
			return 2
		}
		return 1
	}
	sort.SliceStable(aisles, func(i, j int) bool {
		ri, rj := rank(aisles[i]), rank(aisles[j])
		if ri != rj {
			return ri < rj
		}
		if ri == 0 {
			return pos[aisles[i]] < pos[aisles[j]]
		}
		return aisles[i] < aisles[j]
	})
}

func displayAmounts(a Amounts) []DisplayAmount {
	out := make([]DisplayAmount, 0, len(a.Quantities))
	for _, q := range a.Quantities {
		unit := inflector.UnitDisplay(q.Unit, q.Value)
		text := numeric.FormatVulgar(q.Value)
		if unit != "" {
			text += " " + unit
		}
		out = append(out, DisplayAmount{Value: q.Value, Unit: unit, Text: text})
	}
	return out
}
