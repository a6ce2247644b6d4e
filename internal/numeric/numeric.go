// Package numeric parses free-text quantities and formats numbers as vulgar fractions.
package numeric

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/larder/internal/models"
)

// ErrInvalidNumber is returned for numeric text that cannot be parsed.
var ErrInvalidNumber = errors.New("invalid number")

var literalFractions = map[string]float64{
	"1/2": 0.5,
	"1/4": 0.25,
}

// ParseFraction parses an integer, decimal, or "a/b" fraction.
func ParseFraction(text string) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, fmt.Errorf("numeric: %w: empty string", ErrInvalidNumber)
	}
	if v, ok := literalFractions[s]; ok {
		return v, nil
	}
	if v, ok := parseGlyph(s); ok {
		return v, nil
	}
	num, den, isFrac := strings.Cut(s, "/")
	if !isFrac {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("numeric: %w: %q", ErrInvalidNumber, s)
		}
		return v, nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, fmt.Errorf("numeric: %w: %q", ErrInvalidNumber, s)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil {
		return 0, fmt.Errorf("numeric: %w: %q", ErrInvalidNumber, s)
	}
	if d == 0 {
		return 0, fmt.Errorf("numeric: %w: division by zero in %q", ErrInvalidNumber, s)
	}
	return n / d, nil
}

// ParseQuantity splits quantity text such as "2-5 cups" into a value and unit.
// A range resolves to its high end. Blank input yields (nil, nil).
func ParseQuantity(text string) (*models.Quantity, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, nil
	}
	valueText, unit, _ := strings.Cut(s, " ")
	unit = strings.TrimSpace(unit)

	if i := strings.LastIndexAny(valueText, "-–"); i >= 0 {
		high := strings.TrimSpace(valueText[i:])
		high = strings.TrimLeft(high, "-–")
		valueText = high
	}

	v, err := ParseFraction(valueText)
	if err != nil {
		return nil, err
	}
	return &models.Quantity{Value: v, Unit: unit}, nil
}
