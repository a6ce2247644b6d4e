package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/larder/internal/apperr"
	"github.com/starford/larder/internal/models"
)

// RecipeRow represents a row in the recipes table.
type RecipeRow struct {
	Slug          string
	Path          string
	Title         string
	Category      string
	Description   string
	Serves        *int
	MakesQuantity *float64
	MakesUnit     string
	Footer        string
	Body          string // only filled by GetRecipe
	Checksum      string
	UpdatedAt     time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Slug    string
	Title   string
	Snippet string
}

// GraphNode is a recipe in the cross-reference graph.
type GraphNode struct {
	Slug     string
	Title    string
	Category string
}

// GraphEdge points from a recipe to a recipe it cross-references.
// The target may not exist in the index.
type GraphEdge struct {
	Source     string
	Target     string
	Multiplier float64
}

// IngredientUsage counts how many recipes name an ingredient.
type IngredientUsage struct {
	Name    string
	Recipes int
}

// RowFromRecipe fills the structured columns of a row from a parsed recipe.
func RowFromRecipe(path, cs string, r *models.Recipe) RecipeRow {
	row := RecipeRow{
		Slug:        r.Slug,
		Path:        path,
		Title:       r.Title,
		Category:    r.FrontMatter.Category,
		Description: r.Description,
		Serves:      r.FrontMatter.Serves,
		Footer:      r.Footer,
		Checksum:    cs,
		UpdatedAt:   time.Now().UTC(),
	}
	if m := r.FrontMatter.Makes; m != nil {
		q := m.Quantity
		row.MakesQuantity = &q
		row.MakesUnit = m.UnitNoun
	}
	return row
}

// UpsertRecipe replaces a recipe, its steps, ingredients, cross-references and
// FTS entry within one transaction. A slug already owned by another path is
// rejected with apperr.ErrAlreadyExists.
func (db *DB) UpsertRecipe(row RecipeRow, r *models.Recipe, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var owner string
	err = tx.QueryRow(`SELECT path FROM recipes WHERE slug = ?`, row.Slug).Scan(&owner)
	switch {
	case err == nil && owner != row.Path:
		return fmt.Errorf("index: slug %q used by %s: %w", row.Slug, owner, apperr.ErrAlreadyExists)
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("index: lookup slug: %w", err)
	}

	// The title, and so the slug, may have changed since the last index of this path.
	var oldSlug string
	if err := tx.QueryRow(`SELECT slug FROM recipes WHERE path = ?`, row.Path).Scan(&oldSlug); err == nil {
		ftsDelete(tx, oldSlug)
		if _, err := tx.Exec(`DELETE FROM recipes WHERE path = ?`, row.Path); err != nil {
			return fmt.Errorf("index: replace recipe: %w", err)
		}
	}

	var makesQty sql.NullFloat64
	if row.MakesQuantity != nil {
		makesQty = sql.NullFloat64{Float64: *row.MakesQuantity, Valid: true}
	}
	var serves sql.NullInt64
	if row.Serves != nil {
		serves = sql.NullInt64{Int64: int64(*row.Serves), Valid: true}
	}
	_, err = tx.Exec(`
		INSERT INTO recipes (slug, path, title, category, description, serves,
		                     makes_quantity, makes_unit, footer, body, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, row.Slug, row.Path, row.Title, row.Category, row.Description, serves,
		makesQty, row.MakesUnit, row.Footer, body, row.Checksum, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: insert recipe: %w", err)
	}

	if err := ftsUpsert(tx, row.Slug, row.Title, body, row.Category); err != nil {
		return err
	}
	if err := insertSteps(tx, row.Slug, r.Steps); err != nil {
		return err
	}
	return tx.Commit()
}

func insertSteps(tx *sql.Tx, recipeSlug string, steps []models.Step) error {
	stepStmt, err := tx.Prepare(`INSERT INTO steps (recipe_slug, position, title, aside, instructions) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare step insert: %w", err)
	}
	defer stepStmt.Close()
	ingStmt, err := tx.Prepare(`INSERT INTO ingredients (recipe_slug, step_position, position, name, quantity, prep_note) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare ingredient insert: %w", err)
	}
	defer ingStmt.Close()
	xrefStmt, err := tx.Prepare(`INSERT INTO cross_references (recipe_slug, step_position, position, target_slug, target_title, multiplier, prep_note) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare cross-reference insert: %w", err)
	}
	defer xrefStmt.Close()

	for _, s := range steps {
		if _, err := stepStmt.Exec(recipeSlug, s.Position, s.Title, s.Aside, s.Instructions); err != nil {
			return fmt.Errorf("index: insert step: %w", err)
		}
		for _, it := range s.Items {
			switch {
			case it.Ingredient != nil:
				ing := it.Ingredient
				if _, err := ingStmt.Exec(recipeSlug, s.Position, ing.Position, ing.Name, ing.Quantity, ing.PrepNote); err != nil {
					return fmt.Errorf("index: insert ingredient: %w", err)
				}
			case it.CrossReference != nil:
				x := it.CrossReference
				if _, err := xrefStmt.Exec(recipeSlug, s.Position, x.Position, x.TargetSlug, x.TargetTitle, x.Multiplier, x.PrepNote); err != nil {
					return fmt.Errorf("index: insert cross-reference: %w", err)
				}
			}
		}
	}
	return nil
}

// DeleteByPath removes the recipe stored at path along with its children and
// cached nutrition. It returns the removed slug, or "" when nothing was indexed.
func (db *DB) DeleteByPath(path string) (string, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var slug string
	err = tx.QueryRow(`SELECT slug FROM recipes WHERE path = ?`, path).Scan(&slug)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: lookup path: %w", err)
	}
	ftsDelete(tx, slug)
	if _, err := tx.Exec(`DELETE FROM recipes WHERE path = ?`, path); err != nil {
		return "", fmt.Errorf("index: delete recipe: %w", err)
	}
	return slug, tx.Commit()
}

// GetChecksum returns the stored checksum for a path, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM recipes WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums maps every indexed path to its checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM recipes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// AllPaths returns every indexed recipe path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	checksums, err := db.AllChecksums()
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(checksums))
	for p := range checksums {
		out[p] = struct{}{}
	}
	return out, nil
}

const recipeColumns = `slug, path, title, category, description, serves, makes_quantity, makes_unit, footer, checksum, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(s scanner, extra ...any) (*RecipeRow, error) {
	var (
		r        RecipeRow
		serves   sql.NullInt64
		makesQty sql.NullFloat64
	)
	dest := []any{&r.Slug, &r.Path, &r.Title, &r.Category, &r.Description, &serves,
		&makesQty, &r.MakesUnit, &r.Footer, &r.Checksum, &r.UpdatedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if serves.Valid {
		n := int(serves.Int64)
		r.Serves = &n
	}
	if makesQty.Valid {
		q := makesQty.Float64
		r.MakesQuantity = &q
	}
	return &r, nil
}

// GetRecipe returns the row for slug including its markdown body.
func (db *DB) GetRecipe(slug string) (*RecipeRow, error) {
	row := db.conn.QueryRow(`SELECT `+recipeColumns+`, body FROM recipes WHERE slug = ?`, slug)
	var body string
	r, err := scanRecipe(row, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: recipe %q: %w", slug, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get recipe: %w", err)
	}
	r.Body = body
	return r, nil
}

// ListRecipes returns a page of recipes and the total count. category filters
// exactly; sort is one of "title" (default), "updated" or "category".
func (db *DB) ListRecipes(limit, offset int, category, sort string) ([]RecipeRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	where := ""
	var args []any
	if category != "" {
		where = ` WHERE category = ?`
		args = append(args, category)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM recipes`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count recipes: %w", err)
	}

	order := ` ORDER BY title COLLATE NOCASE`
	switch sort {
	case "updated":
		order = ` ORDER BY updated_at DESC, title COLLATE NOCASE`
	case "category":
		order = ` ORDER BY category COLLATE NOCASE, title COLLATE NOCASE`
	}

	rows, err := db.conn.Query(`SELECT `+recipeColumns+` FROM recipes`+where+order+` LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list recipes: %w", err)
	}
	defer rows.Close()

	var out []RecipeRow
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *r)
	}
	return out, total, rows.Err()
}

// Categories returns the distinct non-empty categories in alphabetical order.
func (db *DB) Categories() ([]string, error) {
	return db.strings(`SELECT DISTINCT category FROM recipes WHERE category <> '' ORDER BY category COLLATE NOCASE`)
}

// Dependents returns the slugs of recipes that directly cross-reference slug.
func (db *DB) Dependents(slug string) ([]string, error) {
	return db.strings(`SELECT DISTINCT recipe_slug FROM cross_references WHERE target_slug = ? ORDER BY recipe_slug`, slug)
}

// TransitiveDependents returns every recipe that reaches slug through one or
// more cross-references, nearest first. slug itself is excluded even when a
// cycle leads back to it.
func (db *DB) TransitiveDependents(slug string) ([]string, error) {
	return db.strings(`
		WITH RECURSIVE deps(slug, depth) AS (
			SELECT recipe_slug, 1 FROM cross_references WHERE target_slug = ?
			UNION
			SELECT x.recipe_slug, d.depth + 1
			FROM cross_references x JOIN deps d ON x.target_slug = d.slug
			WHERE d.depth < 32
		)
		SELECT slug FROM deps WHERE slug <> ? GROUP BY slug ORDER BY min(depth), slug
	`, slug, slug)
}

// CrossReferences returns the outgoing cross-references of slug in document order.
func (db *DB) CrossReferences(slug string) ([]models.CrossReference, error) {
	rows, err := db.conn.Query(`
		SELECT target_title, target_slug, multiplier, prep_note, position
		FROM cross_references WHERE recipe_slug = ?
		ORDER BY step_position, position
	`, slug)
	if err != nil {
		return nil, fmt.Errorf("index: cross-references: %w", err)
	}
	defer rows.Close()
	var out []models.CrossReference
	for rows.Next() {
		var x models.CrossReference
		if err := rows.Scan(&x.TargetTitle, &x.TargetSlug, &x.Multiplier, &x.PrepNote, &x.Position); err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, rows.Err()
}

// Graph returns every recipe and every cross-reference edge.
func (db *DB) Graph() ([]GraphNode, []GraphEdge, error) {
	rows, err := db.conn.Query(`SELECT slug, title, category FROM recipes ORDER BY slug`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph nodes: %w", err)
	}
	defer rows.Close()
	var nodes []GraphNode
	for rows.Next() {
		var n GraphNode
		if err := rows.Scan(&n.Slug, &n.Title, &n.Category); err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	erows, err := db.conn.Query(`SELECT recipe_slug, target_slug, multiplier FROM cross_references ORDER BY recipe_slug, step_position, position`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph edges: %w", err)
	}
	defer erows.Close()
	var edges []GraphEdge
	for erows.Next() {
		var e GraphEdge
		if err := erows.Scan(&e.Source, &e.Target, &e.Multiplier); err != nil {
			return nil, nil, err
		}
		edges = append(edges, e)
	}
	return nodes, edges, erows.Err()
}

// Ingredients lists every ingredient name used by at least one recipe with the
// number of recipes using it. Names differing only by case are merged.
func (db *DB) Ingredients() ([]IngredientUsage, error) {
	rows, err := db.conn.Query(`
		SELECT min(name), count(DISTINCT recipe_slug)
		FROM ingredients
		GROUP BY name COLLATE NOCASE
		ORDER BY min(name) COLLATE NOCASE
	`)
	if err != nil {
		return nil, fmt.Errorf("index: ingredients: %w", err)
	}
	defer rows.Close()
	var out []IngredientUsage
	for rows.Next() {
		var u IngredientUsage
		if err := rows.Scan(&u.Name, &u.Recipes); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (db *DB) strings(query string, args ...any) ([]string, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: query: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
