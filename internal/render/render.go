// Package render turns parsed recipes into HTML. Numbers marked for scaling are
// wrapped in spans before the Markdown is converted.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/starford/larder/internal/inflector"
	"github.com/starford/larder/internal/models"
	"github.com/starford/larder/internal/numeric"
)

// Renderer converts Markdown with goldmark. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a Renderer with GitHub-flavoured Markdown enabled. Raw HTML is
// passed through so scalable spans survive conversion.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

// Markdown renders text to HTML.
func (r *Renderer) Markdown(text string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render: markdown: %w", err)
	}
	return buf.String(), nil
}

// Instructions renders step instructions or a footer, marking scalable numbers.
func (r *Renderer) Instructions(text string) (string, error) {
	return r.Markdown(ScalableInstructions(text))
}

// Recipe renders a whole recipe as an HTML fragment.
func (r *Renderer) Recipe(rec *models.Recipe) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "<article class=\"recipe\" id=\"%s\">\n", html.EscapeString(rec.Slug))
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(rec.Title))

	if rec.Description != "" {
		out, err := r.Markdown(rec.Description)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	if line := YieldLine(rec.FrontMatter); line != "" {
		fmt.Fprintf(&b, "<p class=\"yield\">%s</p>\n", ScalableYield(html.EscapeString(line)))
	}

	for _, step := range rec.Steps {
		b.WriteString("<section class=\"step\">\n")
		fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(step.Title))
		if step.Aside != "" {
			fmt.Fprintf(&b, "<p class=\"aside\">%s</p>\n", html.EscapeString(step.Aside))
		}
		if len(step.Items) > 0 {
			b.WriteString("<ul class=\"ingredients\">\n")
			for _, item := range step.Items {
				fmt.Fprintf(&b, "<li>%s</li>\n", itemHTML(item))
			}
			b.WriteString("</ul>\n")
		}
		if step.Instructions != "" {
			out, err := r.Instructions(step.Instructions)
			if err != nil {
				return "", err
			}
			b.WriteString(out)
		}
		b.WriteString("</section>\n")
	}

	if rec.Footer != "" {
		out, err := r.Instructions(rec.Footer)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "<footer>\n%s</footer>\n", out)
	}
	b.WriteString("</article>\n")
	return b.String(), nil
}

// YieldLine describes the front-matter yield, e.g. "Makes 24 cookies · Serves 12".
func YieldLine(fm models.FrontMatter) string {
	var parts []string
	if fm.Makes != nil {
		part := "Makes " + numeric.FormatVulgar(fm.Makes.Quantity)
		if fm.Makes.UnitNoun != "" {
			part += " " + inflector.UnitDisplay(inflector.Singular(fm.Makes.UnitNoun), fm.Makes.Quantity)
		}
		parts = append(parts, part)
	}
	if fm.Serves != nil {
		parts = append(parts, fmt.Sprintf("Serves %d", *fm.Serves))
	}
	return strings.Join(parts, " · ")
}

func itemHTML(item models.StepItem) string {
	if x := item.CrossReference; x != nil {
		s := fmt.Sprintf("<a class=\"xref\" href=\"#%s\">%s</a>", html.EscapeString(x.TargetSlug), html.EscapeString(x.TargetTitle))
		if x.Multiplier != 1 {
			s += " × " + html.EscapeString(numeric.FormatVulgar(x.Multiplier))
		}
		if x.PrepNote != "" {
			s += ": <span class=\"prep\">" + html.EscapeString(x.PrepNote) + "</span>"
		}
		return s
	}
	ing := item.Ingredient
	s := "<b>" + html.EscapeString(ing.Name) + "</b>"
	if ing.Quantity != "" {
		s += ", <span class=\"quantity\">" + ScalableYield(html.EscapeString(ing.Quantity)) + "</span>"
	}
	if ing.PrepNote != "" {
		s += ": <span class=\"prep\">" + html.EscapeString(ing.PrepNote) + "</span>"
	}
	return s
}
