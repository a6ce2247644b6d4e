package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name  string
		input string
		value float64
		unit  string
	}{
		{name: "range takes high end", input: "2-5 cups", value: 5, unit: "cups"},
		{name: "en dash range", input: "2–3 cloves", value: 3, unit: "cloves"},
		{name: "literal half", input: "1/2 cup", value: 0.5, unit: "cup"},
		{name: "literal quarter", input: "1/4 tsp", value: 0.25, unit: "tsp"},
		{name: "general fraction", input: "3/4 cup", value: 0.75, unit: "cup"},
		{name: "decimal", input: "1.5 lb", value: 1.5, unit: "lb"},
		{name: "bare count", input: "3", value: 3, unit: ""},
		{name: "glyph", input: "1½ cups", value: 1.5, unit: "cups"},
		{name: "multi word unit", input: "2 small slices", value: 2, unit: "small slices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseQuantity(tt.input)
			require.NoError(t, err)
			require.NotNil(t, q)
			assert.InDelta(t, tt.value, q.Value, 1e-9)
			assert.Equal(t, tt.unit, q.Unit)
		})
	}
}

func TestParseQuantity_Blank(t *testing.T) {
	for _, in := range []string{"", "   "} {
		q, err := ParseQuantity(in)
		assert.NoError(t, err)
		assert.Nil(t, q)
	}
}

func TestParseQuantity_Invalid(t *testing.T) {
	_, err := ParseQuantity("a pinch")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestParseFraction(t *testing.T) {
	v, err := ParseFraction("3/8")
	require.NoError(t, err)
	assert.InDelta(t, 0.375, v, 1e-9)

	_, err = ParseFraction("1/0")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, err = ParseFraction("")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, err = ParseFraction("x/2")
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestFormatVulgar(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.5, "½"},
		{1.5, "1½"},
		{2, "2"},
		{1.0 / 3, "⅓"},
		{2 + 2.0/3, "2⅔"},
		{0.25, "¼"},
		{0.75, "¾"},
		{0.125, "⅛"},
		{3.875, "3⅞"},
		{0.4, "0.4"},
		{1.234, "1.23"},
		{0.3335, "⅓"},
		{10, "10"},
		{2.9999, "3"},
		{1e20, "100000000000000000000"},
		{1e19 + 0.5, "10000000000000000000"},
		{-0.0001, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatVulgar(tt.in), "FormatVulgar(%v)", tt.in)
	}
}

func TestIsSingular(t *testing.T) {
	assert.True(t, IsSingular(1))
	assert.True(t, IsSingular(0.5))
	assert.True(t, IsSingular(1.0/3))
	assert.False(t, IsSingular(1.5))
	assert.False(t, IsSingular(0))
	assert.False(t, IsSingular(2))
	assert.False(t, IsSingular(0.4))
}

func TestFormatAndSingularAgree(t *testing.T) {
	for _, g := range glyphs {
		assert.Equal(t, g.text, FormatVulgar(g.value))
		assert.True(t, IsSingular(g.value), "glyph %s should read singular", g.text)
	}
}
