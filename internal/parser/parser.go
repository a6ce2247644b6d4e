// Package parser compiles recipe Markdown into structured recipes.
//
// A recipe document looks like:
//
//	# Toasted Bread
//
//	Category: Bread
//	Serves: 2
//
//	Crunchy and warm.
//
//	## Toast (until golden)
//
//	- Bread, 2 slices
//	- @[Garlic Butter], 1/2: Spread thin.
//
//	Toast the bread.
//
//	---
//
//	Footer notes.
//
// Parsing is two stages: Classify turns lines into tokens, then a small
// state-machine builder assembles the recipe and checks its shape.
package parser

import (
	"errors"
	"strings"

	"github.com/starford/larder/internal/models"
)

// Parse compiles markdown into a recipe. Structural problems are returned as
// *MalformedError; a partial recipe is never returned.
func Parse(markdown string) (*models.Recipe, error) {
	b := &builder{tokens: Classify(markdown)}
	return b.build()
}

// Validate runs Parse and reports problems as display-ready messages.
// An empty result means the document can be saved.
func Validate(markdown string) []string {
	if strings.TrimSpace(markdown) == "" {
		return []string{"Recipe cannot be blank."}
	}
	r, err := Parse(markdown)
	if err != nil {
		var me *MalformedError
		if errors.As(err, &me) {
			return []string{me.Error()}
		}
		return []string{err.Error()}
	}

	var problems []string
	if r.FrontMatter.Category == "" {
		problems = append(problems, `Category is required in front matter (e.g., "Category: Bread").`)
	}
	return problems
}
