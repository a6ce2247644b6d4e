package parser

import (
	"strings"

	"github.com/starford/larder/internal/models"
	"github.com/starford/larder/internal/slug"
)

// QuickBitesCategory prefixes the category of every quick bite.
const QuickBitesCategory = "Quick Bites"

// ParseQuickBites reads a quick-bites block:
//
//	# Quick Bites
//	## Snacks
//	- Hummus with Pretzels: Hummus, Pretzels
//	- Fresh Fruit
//
// Items take their category from the nearest "##" subsection. An item without a
// colon is its own single ingredient.
func ParseQuickBites(content string) []models.QuickBite {
	var (
		out        []models.QuickBite
		subsection string
	)
	for _, tok := range Classify(content) {
		switch tok.Kind {
		case KindStepHeader:
			subsection = tok.Text
		case KindIngredient, KindCrossReference:
			if qb, ok := parseQuickBite(tok.Text, subsection); ok {
				out = append(out, qb)
			}
		}
	}
	return out
}

// parseQuickBite parses one "Title: a, b" line.
func parseQuickBite(text, subsection string) (models.QuickBite, bool) {
	title, rest, _ := strings.Cut(text, ":")
	title = strings.TrimSpace(title)
	rest = strings.TrimSpace(rest)
	if title == "" {
		return models.QuickBite{}, false
	}

	source := rest
	if source == "" {
		source = title
	}
	var ingredients []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(source, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		ingredients = append(ingredients, part)
	}

	category := QuickBitesCategory
	if subsection != "" {
		category += ": " + subsection
	}
	return models.QuickBite{
		Title:       title,
		ID:          slug.Make(title),
		Category:    category,
		Ingredients: ingredients,
	}, true
}
