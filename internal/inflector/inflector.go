// Package inflector canonicalises and inflects measurement units and ingredient names.
//
// Recipe vocabulary ("gougères", "pizzelle", "loaves") needs explicit control, so
// inflection is driven by curated tables first and small suffix rules second.
package inflector

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/starford/larder/internal/numeric"
)

var knownPlurals = map[string]string{
	// units
	"cup": "cups", "clove": "cloves", "slice": "slices",
	"can": "cans", "bunch": "bunches", "spoonful": "spoonfuls",
	"head": "heads", "stalk": "stalks", "sprig": "sprigs",
	"piece": "pieces", "stick": "sticks", "item": "items",
	// yield nouns
	"cookie": "cookies", "loaf": "loaves", "roll": "rolls",
	"pizza": "pizzas", "taco": "tacos", "pancake": "pancakes",
	"bagel": "bagels", "biscuit": "biscuits", "gougère": "gougères",
	"quesadilla": "quesadillas", "pizzelle": "pizzelle",
	"bar": "bars", "sandwich": "sandwiches", "sheet": "sheets",
	// ingredient words
	"egg": "eggs", "onion": "onions", "lime": "limes",
	"pepper": "peppers", "tomato": "tomatoes", "carrot": "carrots",
	"walnut": "walnuts", "olive": "olives", "lentil": "lentils",
	"tortilla": "tortillas", "bean": "beans", "leaf": "leaves",
	"yolk": "yolks", "berry": "berries", "apple": "apples",
	"potato": "potatoes", "lemon": "lemons",
}

var knownSingulars = invert(knownPlurals)

var abbreviations = map[string]string{
	"g": "g", "gram": "g", "grams": "g",
	"gō": "gō",
	"tbsp": "tbsp", "tablespoon": "tbsp", "tablespoons": "tbsp",
	"tsp": "tsp", "teaspoon": "tsp", "teaspoons": "tsp",
	"oz": "oz", "ounce": "oz", "ounces": "oz",
	"lb": "lb", "lbs": "lb", "pound": "lb", "pounds": "lb",
	"l": "l", "liter": "l", "liters": "l",
	"ml": "ml",
}

var unitAliases = map[string]string{
	"small slices": "slice",
}

var abbreviatedForms = func() map[string]struct{} {
	out := make(map[string]struct{}, len(abbreviations))
	for _, v := range abbreviations {
		out[v] = struct{}{}
	}
	return out
}()

var qualifierRe = regexp.MustCompile(`^(.+?)\s*(\([^)]+\))$`)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// IsAbbreviation reports whether unit is a canonical abbreviated form such as "g" or "tbsp".
func IsAbbreviation(unit string) bool {
	_, ok := abbreviatedForms[strings.ToLower(unit)]
	return ok
}

// NormalizeUnit maps raw unit text to its canonical key: "Tbsp." → "tbsp", "cups" → "cup".
func NormalizeUnit(raw string) string {
	cleaned := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(raw)), ".")
	if v, ok := unitAliases[cleaned]; ok {
		return v
	}
	if v, ok := abbreviations[cleaned]; ok {
		return v
	}
	if v, ok := knownSingulars[cleaned]; ok {
		return v
	}
	return singularize(cleaned)
}

// UnitDisplay returns the unit form that agrees with count.
// Abbreviations never inflect.
func UnitDisplay(unit string, count float64) string {
	if unit == "" || IsAbbreviation(unit) {
		return unit
	}
	if numeric.IsSingular(count) {
		return unit
	}
	if known, ok := knownPlurals[strings.ToLower(unit)]; ok {
		return applyCase(unit, known)
	}
	if _, ok := knownSingulars[strings.ToLower(unit)]; ok {
		return unit
	}
	return pluralize(unit)
}

// SafePlural pluralises word only when the curated table knows it.
func SafePlural(word string) string {
	if strings.TrimSpace(word) == "" || IsAbbreviation(word) {
		return word
	}
	if known, ok := knownPlurals[strings.ToLower(word)]; ok {
		return applyCase(word, known)
	}
	return word
}

// SafeSingular singularises word only when the curated table knows it.
func SafeSingular(word string) string {
	if strings.TrimSpace(word) == "" {
		return word
	}
	if known, ok := knownSingulars[strings.ToLower(word)]; ok {
		return applyCase(word, known)
	}
	return word
}

// Singular returns the singular of word: the curated table first, then suffix rules.
func Singular(word string) string {
	if strings.TrimSpace(word) == "" || IsAbbreviation(word) {
		return word
	}
	if known, ok := knownSingulars[strings.ToLower(word)]; ok {
		return applyCase(word, known)
	}
	if _, ok := knownPlurals[strings.ToLower(word)]; ok {
		return word
	}
	return singularize(word)
}

// Plural returns the plural of word: the curated table first, then suffix rules.
func Plural(word string) string {
	return UnitDisplay(Singular(word), 2)
}

// DisplayName inflects the last word of an ingredient name for count,
// keeping any parenthetical qualifier: "Egg" with 2 → "Eggs".
func DisplayName(name string, count float64) string {
	if strings.TrimSpace(name) == "" {
		return name
	}
	out, ok := inflectLastWord(name, func(w string) string {
		if numeric.IsSingular(count) {
			return SafeSingular(w)
		}
		return SafePlural(w)
	})
	if !ok {
		return name
	}
	return out
}

// IngredientVariants returns the alternate singular/plural spelling of name,
// or nil when there is none. The result depends only on name.
func IngredientVariants(name string) []string {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	out, ok := inflectLastWord(name, alternateForm)
	if !ok {
		return nil
	}
	return []string{out}
}

// alternateForm returns the singular when the rules change word, else the plural.
// Words ending in "s" are ambiguous and get no plural.
func alternateForm(word string) string {
	if s := singularize(word); s != word {
		return s
	}
	if strings.HasSuffix(word, "s") {
		return ""
	}
	if IsAbbreviation(word) {
		return ""
	}
	return pluralize(word)
}

func singularize(word string) string {
	lower := strings.ToLower(word)
	switch {
	case word == "":
		return word
	case strings.HasSuffix(lower, "ies"):
		return word[:len(word)-3] + "y"
	case hasAnySuffix(lower, "ses", "xes", "zes", "ches", "shes", "oes"):
		return word[:len(word)-2]
	case strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss"):
		return word[:len(word)-1]
	default:
		return word
	}
}

func pluralize(word string) string {
	lower := strings.ToLower(word)
	last, _ := utf8.DecodeLastRuneInString(lower)
	prev := rune(0)
	if len(lower) > 1 {
		prev, _ = utf8.DecodeLastRuneInString(lower[:len(lower)-utf8.RuneLen(last)])
	}
	switch {
	case last == 'y' && prev != 0 && !isVowel(prev):
		return word[:len(word)-1] + "ies"
	case hasAnySuffix(lower, "s", "x", "z", "ch", "sh"):
		return word + "es"
	case last == 'o' && prev != 0 && isConsonant(prev):
		return word + "es"
	default:
		return word + "s"
	}
}

func isVowel(r rune) bool {
	return strings.ContainsRune("aeiou", r)
}

func isConsonant(r rune) bool {
	return r >= 'a' && r <= 'z' && !isVowel(r)
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func applyCase(original, replacement string) string {
	first, _ := utf8.DecodeRuneInString(original)
	if unicode.IsUpper(first) {
		return cases.Title(language.Und).String(replacement)
	}
	return replacement
}

func splitQualifier(name string) (string, string) {
	if m := qualifierRe.FindStringSubmatch(name); m != nil {
		return strings.TrimSpace(m[1]), m[2]
	}
	return name, ""
}

func inflectLastWord(name string, fn func(string) string) (string, bool) {
	base, qualifier := splitQualifier(name)
	words := strings.Fields(base)
	if len(words) == 0 {
		return "", false
	}
	last := words[len(words)-1]
	adjusted := fn(last)
	if adjusted == "" || adjusted == last {
		return "", false
	}
	words[len(words)-1] = adjusted
	out := strings.Join(words, " ")
	if qualifier != "" {
		out += " " + qualifier
	}
	return out, true
}
