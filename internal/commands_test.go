package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/larder/internal/models"
	"github.com/starford/larder/internal/testutil"
)

const cmdBread = `# Bread

Category: Bread

## Mix

- Flour, 100 g

Mix.
`

func TestValidateFiles(t *testing.T) {
	dir := t.TempDir()
	good := testutil.WriteFile(t, dir, "bread.md", cmdBread)
	bad := testutil.WriteFile(t, dir, "bad.md", "no heading\n")

	var out bytes.Buffer
	if err := ValidateFiles(&out, good); err != nil {
		t.Fatalf("good file: %v", err)
	}
	if !strings.Contains(out.String(), "bread.md: ok") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	err := ValidateFiles(&out, good, bad)
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("err = %v, want ErrValidationFailed", err)
	}
	if !strings.Contains(out.String(), "level-one heading") {
		t.Errorf("output = %q", out.String())
	}
}

func TestLabelFile(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "Rolled Oats.txt", "Serving size: 1/2 cup (40g)\nCalories 150\nProtein 5g\n")

	var out bytes.Buffer
	if err := LabelFile(&out, path, ""); err != nil {
		t.Fatalf("LabelFile: %v", err)
	}
	text := out.String()
	for _, want := range []string{"name: Rolled Oats", "basis_grams: 40", "calories: 150", "unit: cup"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestLabelFile_MissingServing(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "x.txt", "Calories 150\n")
	if err := LabelFile(&bytes.Buffer{}, path, "X"); err == nil {
		t.Error("label without serving size should fail")
	}
}

func TestNutritionFile(t *testing.T) {
	root := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Kitchen.Path = filepath.Join(root, "kitchen")
	cfg.SQLite.Path = filepath.Join(root, "larder.db")
	cfg.Catalog.Global = testutil.WriteFile(t, root, "global.yaml", `ingredients:
  - name: Flour
    basis_grams: 100
    nutrients: {calories: 364}
`)
	cfg.Catalog.Kitchen = filepath.Join(root, "kitchen", "ingredients.yaml")
	path := testutil.WriteFile(t, root, "bread.md", cmdBread)

	var out bytes.Buffer
	if err := NutritionFile(context.Background(), &out, path, WithConfig(cfg)); err != nil {
		t.Fatalf("NutritionFile: %v", err)
	}
	var res models.NutritionResult
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Totals[models.Calories] != 364 {
		t.Errorf("calories = %v", res.Totals[models.Calories])
	}
}
