package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuickBites(t *testing.T) {
	content := `# Quick Bites

- Toast

## Snacks

- Hummus with Pretzels: Hummus, Pretzels
- Apples and Peanut Butter: Apples, Peanut butter, Apples

## Breakfast

- Yogurt: 
`
	bites := ParseQuickBites(content)
	require.Len(t, bites, 4)

	assert.Equal(t, "Toast", bites[0].Title)
	assert.Equal(t, "Quick Bites", bites[0].Category)
	assert.Equal(t, []string{"Toast"}, bites[0].Ingredients)

	assert.Equal(t, "hummus-with-pretzels", bites[1].ID)
	assert.Equal(t, "Quick Bites: Snacks", bites[1].Category)
	assert.Equal(t, []string{"Hummus", "Pretzels"}, bites[1].Ingredients)

	assert.Equal(t, []string{"Apples", "Peanut butter"}, bites[2].Ingredients)

	assert.Equal(t, "Quick Bites: Breakfast", bites[3].Category)
	assert.Equal(t, []string{"Yogurt"}, bites[3].Ingredients)
}

func TestParseQuickBites_Empty(t *testing.T) {
	assert.Empty(t, ParseQuickBites(""))
}
