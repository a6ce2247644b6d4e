package recipeservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/starford/larder/internal/aggregate"
	"github.com/starford/larder/internal/apperr"
	"github.com/starford/larder/internal/models"
	"github.com/starford/larder/internal/parser"
)

// Selection names what goes on a shopping list.
type Selection struct {
	Recipes    []string `json:"recipes"`
	QuickBites []string `json:"quick_bites"`
	Custom     []string `json:"custom"`
}

// QuickBites parses the kitchen's quick-bites file. A missing file is an empty list.
func (s *Service) QuickBites(_ context.Context) ([]models.QuickBite, error) {
	content, err := s.QuickBitesContent()
	if err != nil {
		return nil, err
	}
	return nonNilSlice(parser.ParseQuickBites(content)), nil
}

// QuickBitesContent returns the raw quick-bites document.
func (s *Service) QuickBitesContent() (string, error) {
	if s.cfg.QuickBitesPath == "" {
		return "", nil
	}
	data, err := s.store.Read(s.cfg.QuickBitesPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// UpdateQuickBites replaces the quick-bites document.
func (s *Service) UpdateQuickBites(ctx context.Context, content string) ([]models.QuickBite, error) {
	if s.cfg.QuickBitesPath == "" {
		return nil, fmt.Errorf("%w: no quick-bites file configured", apperr.ErrInvalid)
	}
	if err := s.store.Write(s.cfg.QuickBitesPath, []byte(content)); err != nil {
		return nil, err
	}
	s.notify("updated", s.cfg.QuickBitesPath, "")
	return s.QuickBites(ctx)
}

// ShoppingList builds an aisle-grouped list for the selected recipes, quick
// bites and custom items.
func (s *Service) ShoppingList(ctx context.Context, sel Selection) ([]aggregate.Aisle, error) {
	lookup := s.recipeLookup()
	recipes, err := s.recipes(sel.Recipes, lookup)
	if err != nil {
		return nil, err
	}
	bites, err := s.selectQuickBites(ctx, sel.QuickBites)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(aggregate.BuildShoppingList(aggregate.ShoppingInput{
		Recipes:    recipes,
		QuickBites: bites,
		Custom:     sel.Custom,
		Lookup:     lookup,
		Catalog:    s.snapshot().lookup,
		AisleOrder: s.cfg.AisleOrder,
	})), nil
}

// Availability reports, for every recipe and quick bite, which needed
// ingredients are not in checkedOff.
func (s *Service) Availability(ctx context.Context, checkedOff []string) (map[string]aggregate.Availability, error) {
	slugs, err := s.allSlugs()
	if err != nil {
		return nil, err
	}
	lookup := s.recipeLookup()
	var recipes []*models.Recipe
	for _, slug := range slugs {
		// Files that no longer parse are skipped rather than failing the report.
		if r, ok := lookup(slug); ok {
			recipes = append(recipes, r)
		}
	}
	bites, err := s.QuickBites(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.ComputeAvailability(aggregate.AvailabilityInput{
		Recipes:    recipes,
		QuickBites: bites,
		CheckedOff: checkedOff,
		Lookup:     lookup,
		Catalog:    s.snapshot().lookup,
	}), nil
}

func (s *Service) selectQuickBites(ctx context.Context, ids []string) ([]models.QuickBite, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	all, err := s.QuickBites(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.QuickBite, len(all))
	for _, qb := range all {
		byID[qb.ID] = qb
	}
	out := make([]models.QuickBite, 0, len(ids))
	for _, id := range ids {
		qb, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("quick bite %q: %w", id, apperr.ErrNotFound)
		}
		out = append(out, qb)
	}
	return out, nil
}
