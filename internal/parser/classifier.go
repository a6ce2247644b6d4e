package parser

import (
	"regexp"
	"strings"
)

// TokenKind is the classification of one non-blank line.
type TokenKind int

const (
	KindProse TokenKind = iota
	KindTitle
	KindStepHeader
	KindFrontMatter
	KindIngredient
	KindCrossReference
	KindDivider
)

func (k TokenKind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindStepHeader:
		return "step_header"
	case KindFrontMatter:
		return "front_matter"
	case KindIngredient:
		return "ingredient"
	case KindCrossReference:
		return "cross_reference"
	case KindDivider:
		return "divider"
	default:
		return "prose"
	}
}

// Token is one classified line. Text is the captured content (heading text,
// bullet content); Raw is the whole line. Key and Value are set for front matter.
type Token struct {
	Kind  TokenKind
	Text  string
	Raw   string
	Key   string
	Value string
	Line  int
}

var (
	titleRe       = regexp.MustCompile(`^# (.+)$`)
	stepHeaderRe  = regexp.MustCompile(`^##(?:\s+(.*))?$`)
	bulletRe      = regexp.MustCompile(`^- (.+)$`)
	dividerRe     = regexp.MustCompile(`^---\s*$`)
	frontMatterRe = regexp.MustCompile(`^([A-Za-z][A-Za-z_-]*):\s*(\S.*)$`)
	oldCrossRefRe = regexp.MustCompile(`^\d+(?:/\d+)?(?:\.\d+)?x?\s*@\[`)
)

// Classify splits text into lines and classifies each non-blank line.
// It never fails; document shape is checked by the builder.
func Classify(text string) []Token {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	tokens := make([]Token, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		tok := classifyLine(line)
		tok.Line = i + 1
		tokens = append(tokens, tok)
	}
	return tokens
}

func classifyLine(line string) Token {
	tok := Token{Kind: KindProse, Text: strings.TrimSpace(line), Raw: line}

	switch {
	case dividerRe.MatchString(line):
		tok.Kind = KindDivider
	case titleRe.MatchString(line):
		tok.Kind = KindTitle
		tok.Text = strings.TrimSpace(titleRe.FindStringSubmatch(line)[1])
	case stepHeaderRe.MatchString(line):
		tok.Kind = KindStepHeader
		tok.Text = strings.TrimSpace(stepHeaderRe.FindStringSubmatch(line)[1])
	case bulletRe.MatchString(line):
		content := strings.TrimSpace(bulletRe.FindStringSubmatch(line)[1])
		tok.Text = content
		tok.Kind = KindIngredient
		if strings.HasPrefix(content, "@[") || oldCrossRefRe.MatchString(content) {
			tok.Kind = KindCrossReference
		}
	case frontMatterRe.MatchString(line):
		m := frontMatterRe.FindStringSubmatch(line)
		tok.Kind = KindFrontMatter
		tok.Key = m[1]
		tok.Value = strings.TrimSpace(m[2])
	}
	return tok
}
