// Package slug derives URL-safe keys from recipe and quick-bite titles.
package slug

import (
	"regexp"
	"strings"

	goslug "github.com/goliatone/go-slug"
	"golang.org/x/text/unicode/norm"
)

var (
	spaceRe   = regexp.MustCompile(`\s+`)
	invalidRe = regexp.MustCompile(`[^a-z0-9-]`)
	dashRe    = regexp.MustCompile(`-{2,}`)
)

// Make folds title to ASCII (NFKD, marks dropped), lowercases it, and joins words with "-":
// "Crème Brûlée" → "creme-brulee". Titles that fold to nothing fall back to the
// go-slug normaliser.
func Make(title string) string {
	folded := fold(title)
	if folded != "" && goslug.IsValid(folded) {
		return folded
	}
	if normalized, err := goslug.Normalize(title); err == nil && normalized != "" {
		return normalized
	}
	return folded
}

func fold(s string) string {
	decomposed := norm.NFKD.String(strings.TrimSpace(s))
	lower := strings.ToLower(decomposed)
	dashed := spaceRe.ReplaceAllString(lower, "-")
	cleaned := invalidRe.ReplaceAllString(dashed, "")
	cleaned = dashRe.ReplaceAllString(cleaned, "-")
	return strings.Trim(cleaned, "-")
}
