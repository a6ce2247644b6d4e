package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const breadDoc = `# Bread

Category: Bread
Serves: 2

## Mix

- Flour, 60 g
`

func TestParse_Bread(t *testing.T) {
	r, err := Parse(breadDoc)
	require.NoError(t, err)

	assert.Equal(t, "Bread", r.Title)
	assert.Equal(t, "bread", r.Slug)
	assert.Equal(t, "Bread", r.FrontMatter.Category)
	require.NotNil(t, r.FrontMatter.Serves)
	assert.Equal(t, 2, *r.FrontMatter.Serves)
	require.Len(t, r.Steps, 1)
	assert.Equal(t, "Mix", r.Steps[0].Title)

	ings := r.Steps[0].Ingredients()
	require.Len(t, ings, 1)
	assert.Equal(t, "Flour", ings[0].Name)
	assert.Equal(t, "60 g", ings[0].Quantity)
}

func TestParse_FullDocument(t *testing.T) {
	doc := `# Focaccia

A salty flatbread.

Category: Bread
Makes: 1 loaf
Serves: 8
Source: grandma

## Make dough (combine everything)

- Flour (all-purpose), 500 g
- Water, 400 g: Lukewarm.
- Salt
- @[Olive Oil Brine], 1/2: Whisk first.

Mix until shaggy.
Rest 30 minutes.

## Bake

Bake at 230C for 20 minutes.

---

Keeps two days.

Freezes well.
`
	r, err := Parse(doc)
	require.NoError(t, err)

	assert.Equal(t, "A salty flatbread.", r.Description)
	assert.Equal(t, "Bread", r.FrontMatter.Category)
	require.NotNil(t, r.FrontMatter.Makes)
	assert.Equal(t, 1.0, r.FrontMatter.Makes.Quantity)
	assert.Equal(t, "loaf", r.FrontMatter.Makes.UnitNoun)
	assert.Equal(t, 8, *r.FrontMatter.Serves)
	assert.Equal(t, map[string]string{"Source": "grandma"}, r.FrontMatter.Extra)

	require.Len(t, r.Steps, 2)
	mix := r.Steps[0]
	assert.Equal(t, "Make dough", mix.Title)
	assert.Equal(t, "combine everything", mix.Aside)
	assert.Equal(t, "Mix until shaggy.\n\nRest 30 minutes.", mix.Instructions)
	require.Len(t, mix.Items, 4)

	water := mix.Items[1].Ingredient
	require.NotNil(t, water)
	assert.Equal(t, "Water", water.Name)
	assert.Equal(t, "400 g", water.Quantity)
	assert.Equal(t, "Lukewarm.", water.PrepNote)

	salt := mix.Items[2].Ingredient
	require.NotNil(t, salt)
	assert.Equal(t, "Salt", salt.Name)
	assert.Empty(t, salt.Quantity)

	xref := mix.Items[3].CrossReference
	require.NotNil(t, xref)
	assert.Equal(t, "Olive Oil Brine", xref.TargetTitle)
	assert.Equal(t, "olive-oil-brine", xref.TargetSlug)
	assert.InDelta(t, 0.5, xref.Multiplier, 1e-9)
	assert.Equal(t, "Whisk first.", xref.PrepNote)
	assert.Equal(t, 3, xref.Position)

	bake := r.Steps[1]
	assert.Equal(t, 1, bake.Position)
	assert.Empty(t, bake.Items)
	assert.Equal(t, "Bake at 230C for 20 minutes.", bake.Instructions)

	assert.Equal(t, "Keeps two days.\n\nFreezes well.", r.Footer)
}

func TestParse_PreservesOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString("# Ordered\n\n")
	steps := []string{"One", "Two", "Three"}
	items := []string{"Apple", "Banana", "Cherry", "Date"}
	for _, s := range steps {
		b.WriteString("## " + s + "\n\n")
		for _, it := range items {
			b.WriteString("- " + s + " " + it + ", 1 cup\n")
		}
		b.WriteString("\n")
	}

	r, err := Parse(b.String())
	require.NoError(t, err)
	require.Len(t, r.Steps, len(steps))
	for i, s := range r.Steps {
		assert.Equal(t, steps[i], s.Title)
		assert.Equal(t, i, s.Position)
		require.Len(t, s.Items, len(items))
		for j, it := range s.Items {
			require.NotNil(t, it.Ingredient)
			assert.Equal(t, steps[i]+" "+items[j], it.Ingredient.Name)
			assert.Equal(t, j, it.Ingredient.Position)
		}
	}
}

func TestParse_FrontMatterAfterDescription(t *testing.T) {
	doc := "# Soup\n\nWarming.\n\nCategory: Soups\nServes: 4\n\n## Simmer\n\n- Stock, 1 l\n"
	r, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, "Warming.", r.Description)
	assert.Equal(t, "Soups", r.FrontMatter.Category)
	assert.Equal(t, 4, *r.FrontMatter.Serves)
}

func TestParse_DescriptionWithColon(t *testing.T) {
	doc := "# Bread\n\nCategory: Bread\n\nTip: serve warm with butter.\n\n## Mix\n\n- Flour, 60 g\n"
	r, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, "Tip: serve warm with butter.", r.Description)
	assert.Equal(t, "Bread", r.FrontMatter.Category)
	assert.Empty(t, r.FrontMatter.Extra)
}

func TestParse_DescriptionIsFirstProseLine(t *testing.T) {
	doc := "# Bread\n\nCrusty.\n\nBest on day one.\n\nCategory: Bread\n\n## Mix\n\n- Flour, 60 g\n"
	r, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, "Crusty.", r.Description)
	assert.Equal(t, "Bread", r.FrontMatter.Category)
}

func TestParse_CrossReferenceMultipliers(t *testing.T) {
	tests := []struct {
		line string
		want float64
		prep string
	}{
		{"- @[Pizza Dough]", 1, ""},
		{"- @[Pizza Dough], 2", 2, ""},
		{"- @[Pizza Dough] *3", 3, ""},
		{"- @[Pizza Dough]*1/2", 0.5, ""},
		{"- @[Pizza Dough], 0.25: Thin.", 0.25, "Thin."},
		{"- @[Pizza Dough]: Room temperature.", 1, "Room temperature."},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			r, err := Parse("# Pizza\n\n## Top\n\n" + tt.line + "\n")
			require.NoError(t, err)
			refs := r.Steps[0].CrossReferences()
			require.Len(t, refs, 1)
			assert.Equal(t, "Pizza Dough", refs[0].TargetTitle)
			assert.Equal(t, "pizza-dough", refs[0].TargetSlug)
			assert.InDelta(t, tt.want, refs[0].Multiplier, 1e-9)
			assert.Equal(t, tt.prep, refs[0].PrepNote)
		})
	}
}

func TestParse_UnresolvedCrossReferenceIsData(t *testing.T) {
	r, err := Parse("# Pizza\n\n## Top\n\n- @[Does Not Exist Yet]\n")
	require.NoError(t, err)
	assert.Len(t, r.CrossReferences(), 1)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"no title", "Category: Bread\n\n## Mix\n\n- Flour\n", "first line must be a level-one heading"},
		{"level two first", "## Mix\n\n- Flour\n", "first line must be a level-one heading"},
		{"empty", "", "first line must be a level-one heading"},
		{"no steps", "# Bread\n\nCategory: Bread\n\nJust prose.\n", "must have at least one step"},
		{"blank step title", "# Bread\n\n## (aside only)\n\n- Flour\n", "Step must have a title"},
		{"empty step heading", "# Bread\n\nCategory: Bread\n\n## Mix\n\n- Flour, 60 g\n\n## \n\nStir well.\n", "Step must have a title"},
		{"bare step heading", "# Bread\n\nCategory: Bread\n\n## Mix\n\n- Flour, 60 g\n\n##\n\nStir well.\n", "Step must have a title"},
		{"vacuous step", "# Bread\n\n## Mix\n\n## Bake\n\nBake it.\n", "must have either ingredients or instructions"},
		{"old cross reference", "# Pizza\n\n## Top\n\n- 2 @[Pizza Dough]\n", "quantity"},
		{"bad serves", "# Bread\n\nServes: lots\n\n## Mix\n\n- Flour\n", "Serves must be"},
		{"bad makes", "# Bread\n\nMakes: some loaves\n\n## Mix\n\n- Flour\n", "Makes must"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse(tt.doc)
			require.Error(t, err)
			assert.Nil(t, r)
			assert.True(t, errors.Is(err, ErrMalformedDocument))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMalformedError_LineNumber(t *testing.T) {
	_, err := Parse("\n\nnot a title\n")
	var me *MalformedError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, 3, me.Line)
	assert.True(t, strings.HasPrefix(me.Error(), "Invalid recipe format at line 3:"))
}

func TestValidate(t *testing.T) {
	assert.Empty(t, Validate(breadDoc))
	assert.Equal(t, []string{"Recipe cannot be blank."}, Validate("   \n"))
	assert.Equal(t,
		[]string{`Category is required in front matter (e.g., "Category: Bread").`},
		Validate("# Bread\n\n## Mix\n\n- Flour\n"))

	msgs := Validate("# Bread\n")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "must have at least one step")
}
