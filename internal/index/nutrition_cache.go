package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/larder/internal/models"
)

// CachedNutrition is a stored calculation and the inputs it was computed from.
type CachedNutrition struct {
	RecipeChecksum  string
	CatalogChecksum string
	Result          models.NutritionResult
	ComputedAt      time.Time
}

// Fresh reports whether the entry was computed from the given inputs.
func (c *CachedNutrition) Fresh(recipeChecksum, catalogChecksum string) bool {
	return c != nil && c.RecipeChecksum == recipeChecksum && c.CatalogChecksum == catalogChecksum
}

// GetNutrition returns the cached result for slug, or nil when none is stored.
func (db *DB) GetNutrition(slug string) (*CachedNutrition, error) {
	var (
		c   CachedNutrition
		raw string
	)
	err := db.conn.QueryRow(`
		SELECT recipe_checksum, catalog_checksum, result, computed_at
		FROM nutrition_cache WHERE recipe_slug = ?
	`, slug).Scan(&c.RecipeChecksum, &c.CatalogChecksum, &raw, &c.ComputedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get nutrition: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &c.Result); err != nil {
		return nil, fmt.Errorf("index: decode nutrition: %w", err)
	}
	return &c, nil
}

// PutNutrition stores a calculation for slug, replacing any previous one.
func (db *DB) PutNutrition(slug, recipeChecksum, catalogChecksum string, res models.NutritionResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("index: encode nutrition: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO nutrition_cache (recipe_slug, recipe_checksum, catalog_checksum, result, computed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(recipe_slug) DO UPDATE SET
			recipe_checksum  = excluded.recipe_checksum,
			catalog_checksum = excluded.catalog_checksum,
			result           = excluded.result,
			computed_at      = excluded.computed_at
	`, slug, recipeChecksum, catalogChecksum, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("index: put nutrition: %w", err)
	}
	return nil
}

// InvalidateNutrition drops the cached results for the given slugs.
func (db *DB) InvalidateNutrition(slugs ...string) error {
	if len(slugs) == 0 {
		return nil
	}
	args := make([]any, len(slugs))
	for i, s := range slugs {
		args[i] = s
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(slugs)), ",")
	if _, err := db.conn.Exec(`DELETE FROM nutrition_cache WHERE recipe_slug IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("index: invalidate nutrition: %w", err)
	}
	return nil
}

// InvalidateAllNutrition empties the nutrition cache.
func (db *DB) InvalidateAllNutrition() error {
	if _, err := db.conn.Exec(`DELETE FROM nutrition_cache`); err != nil {
		return fmt.Errorf("index: invalidate all nutrition: %w", err)
	}
	return nil
}
