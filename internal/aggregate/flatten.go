package aggregate

import (
	"fmt"
	"strings"

	"github.com/starford/larder/internal/models"
)

// RecipeLookup resolves a cross-reference slug to a parsed recipe.
type RecipeLookup func(slug string) (*models.Recipe, bool)

// Line is one ingredient name with its merged amounts.
type Line struct {
	Name    string  `json:"name"`
	Amounts Amounts `json:"amounts"`
}

// Flattened is a recipe's ingredient list with cross-references expanded.
type Flattened struct {
	Lines []Line
	// Unresolved holds cross-reference slugs with no matching recipe.
	Unresolved []string
	// Warnings describes cross-reference cycles that were cut.
	Warnings []string
}

// Flatten lists the recipe's ingredients by raw name in first-seen order.
// Cross-referenced recipes are expanded recursively and scaled by the multiplier.
// A recipe already on the expansion path contributes nothing and adds a warning.
func Flatten(r *models.Recipe, lookup RecipeLookup) Flattened {
	f := &flattener{lookup: lookup, index: make(map[string]int)}
	f.walk(r, 1, []string{r.Slug}, map[string]bool{r.Slug: true})
	return Flattened{Lines: f.lines, Unresolved: f.unresolved, Warnings: f.warnings}
}

type flattener struct {
	lookup     RecipeLookup
	lines      []Line
	index      map[string]int
	unresolved []string
	warnings   []string
}

func (f *flattener) walk(r *models.Recipe, scale float64, path []string, visiting map[string]bool) {
	for _, step := range r.Steps {
		for _, item := range step.Items {
			switch {
			case item.Ingredient != nil:
				f.add(item.Ingredient.Name, AmountsOf(item.Ingredient.Quantity).Scaled(scale))
			case item.CrossReference != nil:
				f.expand(item.CrossReference, scale, path, visiting)
			}
		}
	}
}

func (f *flattener) expand(xref *models.CrossReference, scale float64, path []string, visiting map[string]bool) {
	if visiting[xref.TargetSlug] {
		cycle := append(append([]string{}, path...), xref.TargetSlug)
		f.warnings = append(f.warnings, fmt.Sprintf("Cross-reference cycle skipped: %s", strings.Join(cycle, " → ")))
		return
	}
	var target *models.Recipe
	if f.lookup != nil {
		target, _ = f.lookup(xref.TargetSlug)
	}
	if target == nil {
		f.unresolved = append(f.unresolved, xref.TargetSlug)
		return
	}

	visiting[xref.TargetSlug] = true
	f.walk(target, scale*xref.Multiplier, append(path, xref.TargetSlug), visiting)
	delete(visiting, xref.TargetSlug)
}

func (f *flattener) add(name string, amounts Amounts) {
	if i, ok := f.index[name]; ok {
		f.lines[i].Amounts = MergeAmounts(f.lines[i].Amounts, amounts)
		return
	}
	f.index[name] = len(f.lines)
	f.lines = append(f.lines, Line{Name: name, Amounts: amounts})
}
