package parser

import (
	"math"
	"regexp"
	"strings"

	"github.com/starford/larder/internal/models"
	"github.com/starford/larder/internal/numeric"
	"github.com/starford/larder/internal/slug"
)

var asideRe = regexp.MustCompile(`^(.*?)\s*\(([^)]*)\)$`)

// builder walks the token stream through the named states
// Title → FrontMatter/Description → Steps → Footer.
type builder struct {
	tokens []Token
	pos    int
}

func (b *builder) peek() (Token, bool) {
	if b.pos >= len(b.tokens) {
		return Token{}, false
	}
	return b.tokens[b.pos], true
}

func (b *builder) next() Token {
	t := b.tokens[b.pos]
	b.pos++
	return t
}

func (b *builder) build() (*models.Recipe, error) {
	r := &models.Recipe{}

	if err := b.title(r); err != nil {
		return nil, err
	}
	if err := b.preamble(r); err != nil {
		return nil, err
	}
	if err := b.steps(r); err != nil {
		return nil, err
	}
	b.footer(r)
	return r, nil
}

func (b *builder) title(r *models.Recipe) error {
	tok, ok := b.peek()
	if !ok {
		return malformed(0, "The first line must be a level-one heading (# Toasted Bread).")
	}
	if tok.Kind != KindTitle {
		return malformed(tok.Line, "The first line must be a level-one heading (# Toasted Bread).")
	}
	b.next()
	r.Title = tok.Text
	r.Slug = slug.Make(tok.Text)
	return nil
}

// preamble consumes front matter and the description up to the first step
// heading or divider. Front matter is the run of key:value lines right after
// the title; after that only Category, Makes and Serves are still read as
// front matter, and any other key:value line is plain prose. The description
// is the first prose line.
func (b *builder) preamble(r *models.Recipe) error {
	var (
		described bool
		lastFM    int
		started   bool
	)
	for {
		tok, ok := b.peek()
		if !ok || tok.Kind == KindStepHeader || tok.Kind == KindDivider {
			break
		}
		b.next()

		if tok.Kind == KindFrontMatter && !isFrontMatter(tok, started, lastFM) {
			tok.Kind = KindProse
		}
		started = true

		switch tok.Kind {
		case KindFrontMatter:
			if err := applyFrontMatter(&r.FrontMatter, tok); err != nil {
				return err
			}
			lastFM = tok.Line
		case KindProse:
			if !described {
				r.Description = strings.TrimSpace(tok.Raw)
				described = true
			}
		default:
			// bullets or a second title before any step carry no meaning here
		}
	}
	return nil
}

func isFrontMatter(tok Token, started bool, lastFM int) bool {
	if !started || (lastFM > 0 && tok.Line == lastFM+1) {
		return true
	}
	switch strings.ToLower(tok.Key) {
	case "category", "makes", "serves":
		return true
	}
	return false
}

func applyFrontMatter(fm *models.FrontMatter, tok Token) error {
	value := strings.TrimSuffix(tok.Value, ".")
	switch strings.ToLower(tok.Key) {
	case "category":
		fm.Category = value
	case "makes":
		q, err := numeric.ParseQuantity(value)
		if err != nil || q == nil || q.Value <= 0 {
			return malformed(tok.Line, "Makes must start with a positive number (e.g., \"Makes: 24 cookies\").")
		}
		fm.Makes = &models.Makes{Quantity: q.Value, UnitNoun: q.Unit}
	case "serves":
		q, err := numeric.ParseQuantity(value)
		if err != nil || q == nil || q.Value < 1 {
			return malformed(tok.Line, "Serves must be a positive whole number (e.g., \"Serves: 4\").")
		}
		n := int(math.Round(q.Value))
		fm.Serves = &n
	default:
		if fm.Extra == nil {
			fm.Extra = make(map[string]string)
		}
		fm.Extra[tok.Key] = tok.Value
	}
	return nil
}

func (b *builder) steps(r *models.Recipe) error {
	for {
		tok, ok := b.peek()
		if !ok || tok.Kind == KindDivider {
			break
		}
		if tok.Kind != KindStepHeader {
			b.next()
			continue
		}
		step, err := b.step(len(r.Steps))
		if err != nil {
			return err
		}
		r.Steps = append(r.Steps, *step)
	}
	if len(r.Steps) == 0 {
		return malformed(0, "Recipe must have at least one step (## Step Name).")
	}
	return nil
}

func (b *builder) step(position int) (*models.Step, error) {
	header := b.next()
	title, aside := splitAside(header.Text)
	if title == "" {
		return nil, malformed(header.Line, "Step must have a title.")
	}

	step := &models.Step{Title: title, Aside: aside, Position: position, Items: []models.StepItem{}}
	var instructions []string

	for {
		tok, ok := b.peek()
		if !ok || tok.Kind == KindStepHeader || tok.Kind == KindDivider {
			break
		}
		b.next()

		switch tok.Kind {
		case KindIngredient:
			ing, err := parseIngredient(tok.Text, tok.Line, len(step.Items))
			if err != nil {
				return nil, err
			}
			step.Items = append(step.Items, models.StepItem{Ingredient: ing})
		case KindCrossReference:
			xref, err := parseCrossReference(tok.Text, tok.Line, len(step.Items))
			if err != nil {
				return nil, err
			}
			step.Items = append(step.Items, models.StepItem{CrossReference: xref})
		default:
			instructions = append(instructions, strings.TrimSpace(tok.Raw))
		}
	}

	step.Instructions = strings.Join(instructions, "\n\n")
	if len(step.Items) == 0 && step.Instructions == "" {
		return nil, malformed(header.Line, "Step %q must have either ingredients or instructions.", title)
	}
	return step, nil
}

func (b *builder) footer(r *models.Recipe) {
	tok, ok := b.peek()
	if !ok || tok.Kind != KindDivider {
		return
	}
	b.next()

	var lines []string
	for {
		tok, ok := b.peek()
		if !ok {
			break
		}
		b.next()
		lines = append(lines, strings.TrimSpace(tok.Raw))
	}
	r.Footer = strings.TrimSpace(strings.Join(lines, "\n\n"))
}

// splitAside separates "Mix (combine)" into "Mix" and "combine".
func splitAside(text string) (string, string) {
	text = strings.TrimSpace(text)
	if m := asideRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return text, ""
}
