package render

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/larder/internal/numeric"
)

var wordValues = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

const (
	wordPattern    = `zero|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve`
	numeralPattern = `\d+(?:\.\d+)?(?:/\d+(?:\.\d+)?)?`
)

var (
	// "two*" or "1/2*": the asterisk marks the number as scalable and is consumed.
	instructionNumberRe = regexp.MustCompile(`(?i)(?:(` + wordPattern + `)\*|(` + numeralPattern + `)\*)`)
	yieldNumberRe       = regexp.MustCompile(`(?i)(?:\b(` + wordPattern + `)\b|\b(` + numeralPattern + `)\b)`)
)

// ScalableInstructions wraps every "number*" in instruction text in a scalable span.
func ScalableInstructions(text string) string {
	var b strings.Builder
	last := 0
	for _, m := range instructionNumberRe.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(text[last:m[0]])
		b.WriteString(spanFor(text, m))
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// ScalableYield wraps the first number of a yield line ("Makes 24 cookies").
// No asterisk is needed.
func ScalableYield(text string) string {
	m := yieldNumberRe.FindStringSubmatchIndex(text)
	if m == nil {
		return text
	}
	return text[:m[0]] + spanFor(text, m) + text[m[1]:]
}

func spanFor(text string, m []int) string {
	if m[2] >= 0 {
		word := text[m[2]:m[3]]
		return span(wordValues[strings.ToLower(word)], word)
	}
	numeral := text[m[4]:m[5]]
	v, err := numeric.ParseFraction(numeral)
	if err != nil {
		return numeral
	}
	return span(v, numeral)
}

func span(value float64, original string) string {
	orig := html.EscapeString(original)
	return fmt.Sprintf(`<span class="scalable" data-base-value="%s" data-original-text="%s">%s</span>`,
		strconv.FormatFloat(value, 'f', -1, 64), orig, orig)
}
