package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	doc := "# Bread\r\n\nCategory: Bread\nSome prose.\n## Mix (quickly)\n- Flour, 1 cup\n- @[Starter]\n- 2 @[Starter]\n---\n"
	toks := Classify(doc)

	want := []struct {
		kind TokenKind
		text string
		line int
	}{
		{KindTitle, "Bread", 1},
		{KindFrontMatter, "Category: Bread", 3},
		{KindProse, "Some prose.", 4},
		{KindStepHeader, "Mix (quickly)", 5},
		{KindIngredient, "Flour, 1 cup", 6},
		{KindCrossReference, "@[Starter]", 7},
		{KindCrossReference, "2 @[Starter]", 8},
		{KindDivider, "---", 9},
	}
	require.Len(t, toks, len(want))
	for i, w := range want {
		assert.Equal(t, w.kind, toks[i].Kind, "token %d", i)
		assert.Equal(t, w.text, toks[i].Text, "token %d", i)
		assert.Equal(t, w.line, toks[i].Line, "token %d", i)
	}
	assert.Equal(t, "Category", toks[1].Key)
	assert.Equal(t, "Bread", toks[1].Value)
}

func TestClassify_EmptyStepHeading(t *testing.T) {
	for _, line := range []string{"## ", "##", "##\t"} {
		toks := Classify(line)
		require.Len(t, toks, 1, "%q", line)
		assert.Equal(t, KindStepHeader, toks[0].Kind, "%q", line)
		assert.Equal(t, "", toks[0].Text, "%q", line)
	}
	toks := Classify("### Notes")
	require.Len(t, toks, 1)
	assert.Equal(t, KindProse, toks[0].Kind)
}

func TestClassify_ProseWithColon(t *testing.T) {
	toks := Classify("Note that: this is prose because the key has spaces")
	require.Len(t, toks, 1)
	assert.Equal(t, KindProse, toks[0].Kind)
}

func TestTokenKind_String(t *testing.T) {
	assert.Equal(t, "cross_reference", KindCrossReference.String())
	assert.Equal(t, "prose", KindProse.String())
}
