// Package models defines the domain types for Larder.
package models

import "time"

// Quantity is a parsed amount. Unit is empty when the source named none.
type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// Ingredient is a raw ingredient bullet as written by the author.
// Quantity keeps the source text; callers parse it with numeric.ParseQuantity.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
	PrepNote string `json:"prep_note,omitempty"`
	Position int    `json:"position"`
}

// CrossReference points at another recipe by title. TargetSlug is the lookup key;
// the target is resolved by whoever consumes the recipe, never by the parser.
type CrossReference struct {
	TargetTitle string  `json:"target_title"`
	TargetSlug  string  `json:"target_slug"`
	Multiplier  float64 `json:"multiplier"`
	PrepNote    string  `json:"prep_note,omitempty"`
	Position    int     `json:"position"`
}

// StepItem is either an Ingredient or a CrossReference; exactly one is set.
type StepItem struct {
	Ingredient     *Ingredient     `json:"ingredient,omitempty"`
	CrossReference *CrossReference `json:"cross_reference,omitempty"`
}

// Step is one "## heading" section of a recipe.
type Step struct {
	Title        string     `json:"title"`
	Aside        string     `json:"aside,omitempty"`
	Instructions string     `json:"instructions,omitempty"`
	Items        []StepItem `json:"items"`
	Position     int        `json:"position"`
}

// Ingredients returns the plain ingredients of the step in order.
func (s Step) Ingredients() []Ingredient {
	var out []Ingredient
	for _, it := range s.Items {
		if it.Ingredient != nil {
			out = append(out, *it.Ingredient)
		}
	}
	return out
}

// CrossReferences returns the cross-references of the step in order.
func (s Step) CrossReferences() []CrossReference {
	var out []CrossReference
	for _, it := range s.Items {
		if it.CrossReference != nil {
			out = append(out, *it.CrossReference)
		}
	}
	return out
}

// Makes is the declared yield, e.g. "Makes: 24 cookies".
type Makes struct {
	Quantity float64 `json:"quantity"`
	UnitNoun string  `json:"unit_noun,omitempty"`
}

// FrontMatter holds the key:value lines that follow the title.
type FrontMatter struct {
	Category string            `json:"category,omitempty"`
	Makes    *Makes            `json:"makes,omitempty"`
	Serves   *int              `json:"serves,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// Recipe is the structured result of parsing a recipe document.
type Recipe struct {
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description string      `json:"description,omitempty"`
	FrontMatter FrontMatter `json:"front_matter"`
	Steps       []Step      `json:"steps"`
	Footer      string      `json:"footer,omitempty"`
}

// CrossReferences returns every cross-reference in the recipe in document order.
func (r *Recipe) CrossReferences() []CrossReference {
	var out []CrossReference
	for _, s := range r.Steps {
		out = append(out, s.CrossReferences()...)
	}
	return out
}

// Ingredients returns every plain ingredient in the recipe in document order.
func (r *Recipe) Ingredients() []Ingredient {
	var out []Ingredient
	for _, s := range r.Steps {
		out = append(out, s.Ingredients()...)
	}
	return out
}

// QuickBite is a lightweight menu item parsed from the quick-bites block.
type QuickBite struct {
	Title       string   `json:"title"`
	ID          string   `json:"id"`
	Category    string   `json:"category"`
	Ingredients []string `json:"ingredients"`
}

// FileMetadata is a lightweight description of a kitchen file returned by list operations.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
