package numeric

import (
	"math"
	"strconv"
	"strings"
)

// Epsilon is the tolerance used when matching values against the glyph table.
const Epsilon = 0.001

type glyph struct {
	value float64
	text  string
}

// glyphs is shared by FormatVulgar and IsSingular so their answers always agree.
var glyphs = []glyph{
	{1.0 / 2, "½"},
	{1.0 / 3, "⅓"},
	{2.0 / 3, "⅔"},
	{1.0 / 4, "¼"},
	{3.0 / 4, "¾"},
	{1.0 / 8, "⅛"},
	{3.0 / 8, "⅜"},
	{5.0 / 8, "⅝"},
	{7.0 / 8, "⅞"},
}

func findGlyph(frac float64) (string, bool) {
	for _, g := range glyphs {
		if math.Abs(frac-g.value) < Epsilon {
			return g.text, true
		}
	}
	return "", false
}

// parseGlyph reads text such as "½" or "1½".
func parseGlyph(s string) (float64, bool) {
	for _, g := range glyphs {
		prefix, ok := strings.CutSuffix(s, g.text)
		if !ok {
			continue
		}
		if prefix == "" {
			return g.value, true
		}
		whole, err := strconv.Atoi(prefix)
		if err != nil {
			return 0, false
		}
		return float64(whole) + g.value, true
	}
	return 0, false
}

// FormatVulgar renders v with a Unicode fraction glyph where one fits:
// 0.5 → "½", 1.5 → "1½", 2 → "2", 0.4 → "0.4".
func FormatVulgar(v float64) string {
	whole := math.Trunc(v)
	frac := v - whole
	if whole == 0 {
		whole = 0 // drop the sign of -0
	}
	if math.Abs(frac) < Epsilon {
		return strconv.FormatFloat(whole, 'f', 0, 64)
	}
	if g, ok := findGlyph(frac); ok {
		if whole == 0 {
			return g
		}
		return strconv.FormatFloat(whole, 'f', 0, 64) + g
	}
	rounded := math.Round(v*100) / 100
	s := strconv.FormatFloat(rounded, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// IsSingular reports whether a unit following v reads as singular: "1 cup", "½ cup".
func IsSingular(v float64) bool {
	if math.Abs(v-1) < Epsilon {
		return true
	}
	if v <= 0 || v >= 1 {
		return false
	}
	_, ok := findGlyph(v)
	return ok
}
