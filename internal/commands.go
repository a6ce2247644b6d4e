package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/larder/internal/catalog"
	"github.com/starford/larder/internal/parser"
)

// ErrValidationFailed is returned by ValidateFiles when any file has problems.
var ErrValidationFailed = errors.New("validation failed")

// ValidateFiles checks each recipe file and prints one line per file, plus one
// indented line per problem.
func ValidateFiles(w io.Writer, paths ...string) error {
	failed := 0
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("validate: %w", err)
		}
		problems := parser.Validate(string(data))
		if len(problems) == 0 {
			fmt.Fprintf(w, "%s: ok\n", p)
			continue
		}
		failed++
		fmt.Fprintf(w, "%s:\n", p)
		for _, msg := range problems {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrValidationFailed, failed, len(paths))
	}
	return nil
}

// NutritionFile computes nutrition for one recipe file against the configured
// catalog, resolving cross-references from the kitchen, and prints it as JSON.
func NutritionFile(ctx context.Context, w io.Writer, path string, opts ...Option) error {
	app := newApplication(opts...)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("nutrition: %w", err)
	}

	k, err := openKitchen(ctx, app.config, newLogger(app.config, os.Stderr))
	if err != nil {
		return err
	}
	defer k.Close()

	res, err := k.svc.CalculateDocument(ctx, string(data))
	if err != nil {
		return fmt.Errorf("nutrition: %s: %w", path, err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// LabelFile parses a nutrition-label text file and prints it as a catalog
// YAML entry. The ingredient name defaults to the file name.
func LabelFile(w io.Writer, path, name string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("label: %w", err)
	}
	res := catalog.ParseLabel(string(data))
	if !res.OK() {
		return fmt.Errorf("label: %s: %s", path, strings.Join(res.Errors, "; "))
	}
	p := res.Profile
	p.Name = name
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return fmt.Errorf("label: %s: %w", path, err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(catalog.File{Ingredients: []catalog.Profile{p}}); err != nil {
		return fmt.Errorf("label: encode: %w", err)
	}
	return enc.Close()
}
