package aggregate

import (
	"strings"

	"github.com/starford/larder/internal/inflector"
	"github.com/starford/larder/internal/models"
)

// Catalog is the slice of the ingredient catalog the aggregator needs.
type Catalog interface {
	// Canonical returns the catalog name for name, matching exactly,
	// case-insensitively or through a spelling variant.
	Canonical(name string) (string, bool)
	// Aisle returns the grocery aisle recorded for a canonical name.
	Aisle(name string) (string, bool)
}

// OmitAisle marks catalog entries that never appear on a shopping list.
const OmitAisle = "omit"

// Source is one titled contributor to an aggregation: a recipe or a quick bite.
type Source struct {
	Title string
	Lines []Line
}

// RecipeSource flattens r into a Source.
func RecipeSource(r *models.Recipe, lookup RecipeLookup) Source {
	return Source{Title: r.Title, Lines: Flatten(r, lookup).Lines}
}

// QuickBiteSource turns a quick bite into a Source of unquantified lines.
func QuickBiteSource(qb models.QuickBite) Source {
	lines := make([]Line, 0, len(qb.Ingredients))
	for _, name := range qb.Ingredients {
		lines = append(lines, Line{Name: name, Amounts: Amounts{Unquantified: true}})
	}
	return Source{Title: qb.Title, Lines: lines}
}

// Aggregator merges sources under canonical ingredient names. An Aggregator
// remembers the first spelling it saw for names the catalog does not know,
// so it should not be shared between unrelated aggregations.
type Aggregator struct {
	catalog   Catalog
	firstSeen map[string]string
	entries   map[string]Entry
	order     []string
}

// NewAggregator returns an Aggregator. catalog may be nil.
func NewAggregator(catalog Catalog) *Aggregator {
	return &Aggregator{
		catalog:   catalog,
		firstSeen: make(map[string]string),
		entries:   make(map[string]Entry),
	}
}

// Canonical resolves name: catalog first, then a spelling variant already seen,
// then the first-seen capitalisation of name itself.
func (a *Aggregator) Canonical(name string) string {
	name = strings.TrimSpace(name)
	if a.catalog != nil {
		if c, ok := a.catalog.Canonical(name); ok {
			return c
		}
	}
	key := strings.ToLower(name)
	if c, ok := a.firstSeen[key]; ok {
		return c
	}
	for _, v := range inflector.IngredientVariants(name) {
		if c, ok := a.firstSeen[strings.ToLower(v)]; ok {
			a.firstSeen[key] = c
			return c
		}
	}
	a.firstSeen[key] = name
	return name
}

// Add merges one source into the running totals.
func (a *Aggregator) Add(src Source) {
	for _, line := range src.Lines {
		key := a.Canonical(line.Name)
		entry := Entry{Amounts: line.Amounts, Sources: []string{src.Title}}
		if existing, ok := a.entries[key]; ok {
			a.entries[key] = MergeEntries(existing, entry)
			continue
		}
		a.entries[key] = entry
		a.order = append(a.order, key)
	}
}

// Aggregate adds every source and returns the merged entries by canonical name.
func (a *Aggregator) Aggregate(sources ...Source) map[string]Entry {
	for _, src := range sources {
		a.Add(src)
	}
	out := make(map[string]Entry, len(a.entries))
	for k, v := range a.entries {
		out[k] = v
	}
	return out
}

// Names returns the canonical names in first-seen order.
func (a *Aggregator) Names() []string {
	return append([]string(nil), a.order...)
}
