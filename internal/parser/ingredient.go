package parser

import (
	"regexp"
	"strings"

	"github.com/starford/larder/internal/models"
	"github.com/starford/larder/internal/numeric"
	"github.com/starford/larder/internal/slug"
)

// crossRefRe accepts "@[Title]", "@[Title], 2", "@[Title] *1/2" and an optional ": prep note".
var crossRefRe = regexp.MustCompile(
	`^@\[(.+?)\](?:\.\s*)?(?:(?:,\s*|\s*\*\s*)(\d+(?:/\d+)?(?:\.\d+)?))?\s*(?::\s*(.+))?$`)

// parseIngredient splits "Walnuts, 75 g: Roughly chop." into name, quantity and prep note.
func parseIngredient(text string, line, position int) (*models.Ingredient, error) {
	left, prep, _ := strings.Cut(text, ":")
	name, qty, _ := strings.Cut(left, ",")

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, malformed(line, "Ingredient is missing a name: %q", text)
	}
	return &models.Ingredient{
		Name:     name,
		Quantity: strings.TrimSpace(qty),
		PrepNote: strings.TrimSpace(prep),
		Position: position,
	}, nil
}

// parseCrossReference reads a cross-reference bullet. The target is kept as a
// title and slug only; nothing is resolved here.
func parseCrossReference(text string, line, position int) (*models.CrossReference, error) {
	if oldCrossRefRe.MatchString(text) {
		return nil, malformed(line,
			"Invalid cross-reference syntax: %q. Use @[Recipe Title], quantity (quantity after reference), not quantity before.", text)
	}
	m := crossRefRe.FindStringSubmatch(text)
	if m == nil {
		return nil, malformed(line, "Invalid cross-reference syntax: %q. Expected @[Recipe Title]", text)
	}

	title := strings.TrimSpace(m[1])
	multiplier := 1.0
	if m[2] != "" {
		v, err := numeric.ParseFraction(m[2])
		if err != nil {
			return nil, malformed(line, "Invalid cross-reference multiplier %q", m[2])
		}
		multiplier = v
	}

	return &models.CrossReference{
		TargetTitle: title,
		TargetSlug:  slug.Make(title),
		Multiplier:  multiplier,
		PrepNote:    strings.TrimSpace(m[3]),
		Position:    position,
	}, nil
}
