package catalog

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/starford/larder/internal/inflector"
	"github.com/starford/larder/internal/models"
	"github.com/starford/larder/internal/numeric"
)

// labelLine is one row of a printed nutrition label.
type labelLine struct {
	label    string
	nutrient models.Nutrient
	unit     string
}

var labelLines = []labelLine{
	{"Calories", models.Calories, ""},
	{"Total Fat", models.Fat, "g"},
	{"  Saturated Fat", models.SaturatedFat, "g"},
	{"  Trans Fat", models.TransFat, "g"},
	{"Cholesterol", models.Cholesterol, "mg"},
	{"Sodium", models.Sodium, "mg"},
	{"Total Carbs", models.Carbs, "g"},
	{"  Dietary Fiber", models.Fiber, "g"},
	{"  Total Sugars", models.TotalSugars, "g"},
	{"    Added Sugars", models.AddedSugars, "g"},
	{"Protein", models.Protein, "g"},
}

var nutrientPatterns = []struct {
	re       *regexp.Regexp
	nutrient models.Nutrient
}{
	{regexp.MustCompile(`(?i)^calories$`), models.Calories},
	{regexp.MustCompile(`(?i)^total\s+fat$`), models.Fat},
	{regexp.MustCompile(`(?i)^saturated\s+fat$`), models.SaturatedFat},
	{regexp.MustCompile(`(?i)^trans\s+fat$`), models.TransFat},
	{regexp.MustCompile(`(?i)^cholesterol$`), models.Cholesterol},
	{regexp.MustCompile(`(?i)^sodium$`), models.Sodium},
	{regexp.MustCompile(`(?i)^total\s+carb(?:ohydrate)?s?$`), models.Carbs},
	{regexp.MustCompile(`(?i)^(?:dietary\s+)?fiber$`), models.Fiber},
	{regexp.MustCompile(`(?i)^total\s+sugars?$`), models.TotalSugars},
	{regexp.MustCompile(`(?i)^added\s+sugars?$`), models.AddedSugars},
	{regexp.MustCompile(`(?i)^protein$`), models.Protein},
}

var (
	servingLineRe    = regexp.MustCompile(`(?i)^serving\s+size\s*:\s*`)
	portionsHeaderRe = regexp.MustCompile(`(?i)^portions\s*:`)
	portionLikeRe    = regexp.MustCompile(`^\S+\s*:\s*\d`)
	portionRe        = regexp.MustCompile(`(?i)^(\S+)\s*:\s*([\d.]+)\s*g?\s*$`)
	nutrientLineRe   = regexp.MustCompile(`(?i)^(.+?)\s+([\d.]+\s*(?:g|mg|mcg)?)\s*$`)
	unitSuffixRe     = regexp.MustCompile(`(?i)\s*(?:g|mg|mcg)\s*$`)

	gramsRe      = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:grams?|g)\b`)
	gramsPartRe  = regexp.MustCompile(`[/(]?\s*\d+(?:\.\d+)?\s*(?:grams?|g)\b[)\s]*`)
	aboutRe      = regexp.MustCompile(`(?i)^(?:about|approximately|approx\.?)\s+`)
	descriptorRe = regexp.MustCompile(`^(\d+(?:[/.]\d+)?)\s+(.+)$`)
	sizeRe       = regexp.MustCompile(`(?i)\d+\.?\d*\s*(?:inch|in|cm|mm)\s+`)
)

var volumeUnitNames = map[string]string{
	"cup": "cup", "cups": "cup",
	"tbsp": "tbsp", "tablespoon": "tbsp", "tablespoons": "tbsp",
	"tsp": "tsp", "teaspoon": "tsp", "teaspoons": "tsp",
	"ml": "ml", "l": "l", "liter": "l", "liters": "l",
}

var portionOverrides = map[string]string{"eggs": UnitlessPortion}

// Serving is a parsed "Serving size:" value such as "1/4 cup (30g)".
type Serving struct {
	Grams        float64
	VolumeAmount float64
	VolumeUnit   string
	PortionUnit  string
	PortionGrams float64
}

// ParseServing reads a serving-size description. It requires a gram weight; the
// part before it becomes a density (volume units) or an automatic portion.
func ParseServing(input string) (Serving, bool) {
	m := gramsRe.FindStringSubmatch(input)
	if m == nil {
		return Serving{}, false
	}
	grams, err := strconv.ParseFloat(m[1], 64)
	if err != nil || grams <= 0 {
		return Serving{}, false
	}
	s := Serving{Grams: grams}

	descriptor := input
	if loc := gramsPartRe.FindStringIndex(input); loc != nil {
		descriptor = input[:loc[0]] + input[loc[1]:]
	}
	descriptor = strings.TrimSpace(aboutRe.ReplaceAllString(strings.TrimSpace(descriptor), ""))
	if descriptor == "" {
		return s, true
	}

	dm := descriptorRe.FindStringSubmatch(descriptor)
	if dm == nil {
		return s, true
	}
	amount, err := numeric.ParseFraction(dm[1])
	if err != nil || amount <= 0 {
		return s, true
	}

	rawUnit := strings.TrimSpace(sizeRe.ReplaceAllString(strings.TrimSpace(dm[2]), ""))
	unit := strings.TrimSuffix(strings.ToLower(rawUnit), ".")

	if canonical, ok := volumeUnitNames[unit]; ok {
		s.VolumeAmount = amount
		s.VolumeUnit = canonical
		return s, true
	}

	portion, ok := portionOverrides[unit]
	if !ok {
		portion = inflector.NormalizeUnit(unit)
	}
	s.PortionUnit = portion
	s.PortionGrams = math.Round(grams/amount*100) / 100
	return s, true
}

// LabelResult is the outcome of ParseLabel. Profile has no name.
type LabelResult struct {
	Profile Profile
	Errors  []string
}

// OK reports whether the label parsed without errors.
func (r LabelResult) OK() bool { return len(r.Errors) == 0 }

// ParseLabel reads a plain-text nutrition label:
//
//	Serving size: 1/4 cup (30g)
//	Calories 110
//	Total Fat 0.5g
//	Sodium 0mg
//
//	Portions:
//	  slice: 28g
//
// Nutrients not listed are zero. The serving's gram weight becomes BasisGrams.
func ParseLabel(text string) LabelResult {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	var servingRaw string
	found := false
	for _, l := range lines {
		if servingLineRe.MatchString(l) {
			servingRaw = strings.TrimSpace(servingLineRe.ReplaceAllString(l, ""))
			found = true
			break
		}
	}
	if !found {
		return LabelResult{Errors: []string{"Serving size is required"}}
	}
	serving, ok := ParseServing(servingRaw)
	if !ok {
		return LabelResult{Errors: []string{"Serving size must include a gram weight (e.g., 30g)"}}
	}

	p := Profile{
		BasisGrams: serving.Grams,
		Nutrients:  parseNutrients(lines),
		Portions:   parsePortions(lines),
	}
	if serving.VolumeUnit != "" {
		p.Density = &Density{Grams: serving.Grams, Volume: serving.VolumeAmount, Unit: serving.VolumeUnit}
	}
	if serving.PortionUnit != "" {
		if p.Portions == nil {
			p.Portions = make(map[string]float64)
		}
		p.Portions[serving.PortionUnit] = serving.PortionGrams
	}
	return LabelResult{Profile: p}
}

func parseNutrients(lines []string) models.Nutrients {
	hasPortions := false
	for _, l := range lines {
		if portionsHeaderRe.MatchString(l) {
			hasPortions = true
			break
		}
	}

	out := models.NewNutrients()
	for _, l := range lines {
		if l == "" || servingLineRe.MatchString(l) || portionsHeaderRe.MatchString(l) ||
			(hasPortions && portionLikeRe.MatchString(l)) {
			continue
		}
		name, value := l, ""
		if m := nutrientLineRe.FindStringSubmatch(l); m != nil {
			name, value = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		}
		for _, np := range nutrientPatterns {
			if np.re.MatchString(name) {
				out[np.nutrient] = labelValue(value)
				break
			}
		}
	}
	return out
}

func labelValue(raw string) float64 {
	raw = strings.TrimSpace(unitSuffixRe.ReplaceAllString(raw, ""))
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func parsePortions(lines []string) map[string]float64 {
	start := -1
	for i, l := range lines {
		if portionsHeaderRe.MatchString(l) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	out := make(map[string]float64)
	for _, l := range lines[start+1:] {
		if l == "" && len(out) > 0 {
			break
		}
		m := portionRe.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			out[m[1]] = v
		}
	}
	return out
}

// FormatLabel renders p in the format ParseLabel reads.
func FormatLabel(p Profile) string {
	lines := []string{servingLine(p), ""}
	for _, ll := range labelLines {
		lines = append(lines, ll.label+pad(ll.label)+formatNumber(p.Nutrient(ll.nutrient))+ll.unit)
	}
	if len(p.Portions) > 0 {
		lines = append(lines, "", "Portions:")
		for _, name := range sortedKeys(p.Portions) {
			lines = append(lines, "  "+name+": "+formatNumber(p.Portions[name])+"g")
		}
	}
	return strings.Join(lines, "\n")
}

// BlankLabel is an empty label for editors to fill in.
func BlankLabel() string {
	lines := []string{"Serving size:", ""}
	for _, ll := range labelLines {
		lines = append(lines, ll.label)
	}
	return strings.Join(lines, "\n")
}

// servingLine shows the volume only when the serving is the density volume
// itself, i.e. nutrients are per the same grams the density describes.
func servingLine(p Profile) string {
	d := p.Density
	if d == nil || d.Grams == 0 || d.Volume == 0 || p.BasisGrams != d.Grams {
		return "Serving size: " + formatNumber(p.BasisGrams) + "g"
	}
	return "Serving size: " + formatNumber(d.Volume) + " " + d.Unit + " (" + formatNumber(d.Grams) + "g)"
}

func pad(label string) string {
	width := 20 - len(label)
	if width < 1 {
		width = 1
	}
	return strings.Repeat(" ", width)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
