package recipeservice

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/larder/internal/apperr"
	"github.com/starford/larder/internal/catalog"
	"github.com/starford/larder/internal/checksum"
	"github.com/starford/larder/internal/nutrition"
	"github.com/starford/larder/internal/sse"
)

// catalogSnapshot is an immutable view of the merged catalog. Readers take it
// under catMu and may keep using it after the lock is released.
type catalogSnapshot struct {
	global   *catalog.File
	kitchen  *catalog.File
	lookup   *catalog.Lookup
	calc     *nutrition.Calculator
	checksum string
}

// IngredientStatus summarises one ingredient used by the kitchen's recipes.
type IngredientStatus struct {
	Name         string `json:"name"`
	Recipes      int    `json:"recipes"`
	InCatalog    bool   `json:"in_catalog"`
	HasNutrition bool   `json:"has_nutrition"`
	HasDensity   bool   `json:"has_density"`
	Aisle        string `json:"aisle,omitempty"`
}

// ReloadCatalog re-reads both catalog files. When the merged content changed,
// cached nutrition is dropped and a catalog.updated event is published.
func (s *Service) ReloadCatalog(_ context.Context) error {
	global, err := catalog.Load(s.cfg.GlobalCatalog, false)
	if err != nil {
		return err
	}
	kitchen, err := catalog.Load(s.cfg.KitchenCatalog, true)
	if err != nil {
		return err
	}
	return s.installCatalog(global, kitchen)
}

func (s *Service) installCatalog(global, kitchen *catalog.File) error {
	snap, err := newSnapshot(global, kitchen, s.cfg.Omit)
	if err != nil {
		return err
	}

	s.catMu.Lock()
	prev := s.cat
	s.cat = snap
	s.catMu.Unlock()

	if prev == nil || prev.checksum == snap.checksum {
		return nil
	}
	if err := s.db.InvalidateAllNutrition(); err != nil {
		return err
	}
	s.logger.Info("catalog reloaded",
		slog.Int("ingredients", snap.lookup.Len()),
		slog.String("checksum", snap.checksum[:12]))
	if s.events != nil {
		s.events.Publish(sse.Event{Type: sse.TypeCatalogUpdated, Data: map[string]any{"ingredients": snap.lookup.Len()}})
	}
	return nil
}

func newSnapshot(global, kitchen *catalog.File, omit []string) (*catalogSnapshot, error) {
	g, err := yaml.Marshal(global)
	if err != nil {
		return nil, fmt.Errorf("recipeservice: snapshot global catalog: %w", err)
	}
	k, err := yaml.Marshal(kitchen)
	if err != nil {
		return nil, fmt.Errorf("recipeservice: snapshot kitchen catalog: %w", err)
	}
	lookup := catalog.Merge(global.Ingredients, kitchen.Ingredients)
	return &catalogSnapshot{
		global:   global,
		kitchen:  kitchen,
		lookup:   lookup,
		calc:     nutrition.New(lookup, omit),
		checksum: checksum.SumParts(g, k, []byte(strings.Join(omit, "\n"))),
	}, nil
}

func (s *Service) snapshot() *catalogSnapshot {
	s.catMu.RLock()
	defer s.catMu.RUnlock()
	return s.cat
}

// CatalogEntries returns every profile visible through the merged catalog.
func (s *Service) CatalogEntries(_ context.Context) []catalog.Profile {
	return nonNilSlice(s.snapshot().lookup.Profiles())
}

// CatalogEntry returns the merged profile for name.
func (s *Service) CatalogEntry(_ context.Context, name string) (*catalog.Profile, error) {
	p, ok := s.snapshot().lookup.Get(name)
	if !ok {
		return nil, fmt.Errorf("ingredient %q: %w", name, apperr.ErrNotFound)
	}
	return p, nil
}

// UpsertIngredient validates p and saves it to the kitchen catalog file.
func (s *Service) UpsertIngredient(_ context.Context, p catalog.Profile) (*catalog.Profile, error) {
	if s.cfg.KitchenCatalog == "" {
		return nil, fmt.Errorf("%w: no kitchen catalog configured", apperr.ErrInvalid)
	}
	cur := s.snapshot()
	next := &catalog.File{Ingredients: append([]catalog.Profile(nil), cur.kitchen.Ingredients...)}
	if err := next.Upsert(p); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
	}
	if err := catalog.Save(s.cfg.KitchenCatalog, next); err != nil {
		return nil, err
	}
	if err := s.installCatalog(cur.global, next); err != nil {
		return nil, err
	}
	return s.CatalogEntry(context.Background(), p.Name)
}

// DeleteIngredient removes name from the kitchen catalog file. Entries that
// exist only in the global catalog cannot be deleted.
func (s *Service) DeleteIngredient(_ context.Context, name string) error {
	if s.cfg.KitchenCatalog == "" {
		return fmt.Errorf("%w: no kitchen catalog configured", apperr.ErrInvalid)
	}
	cur := s.snapshot()
	next := &catalog.File{Ingredients: append([]catalog.Profile(nil), cur.kitchen.Ingredients...)}
	if !next.Remove(name) {
		return fmt.Errorf("kitchen ingredient %q: %w", name, apperr.ErrNotFound)
	}
	if err := catalog.Save(s.cfg.KitchenCatalog, next); err != nil {
		return err
	}
	return s.installCatalog(cur.global, next)
}

// ParseLabel turns nutrition-label text into a catalog profile for name.
func (s *Service) ParseLabel(name, text string) (*catalog.Profile, error) {
	res := catalog.ParseLabel(text)
	if !res.OK() {
		return nil, fmt.Errorf("%w: %s", apperr.ErrInvalid, strings.Join(res.Errors, "; "))
	}
	p := res.Profile
	p.Name = strings.TrimSpace(name)
	if existing, ok := s.snapshot().lookup.Get(p.Name); ok {
		p.Aisle = existing.Aisle
	}
	return &p, nil
}

// IngredientLabel renders the catalog entry for name as label text, or a
// blank label when the ingredient has no entry yet.
func (s *Service) IngredientLabel(_ context.Context, name string) string {
	if p, ok := s.snapshot().lookup.Get(name); ok {
		return catalog.FormatLabel(*p)
	}
	return catalog.BlankLabel()
}

// Ingredients lists every ingredient used in a recipe with its catalog status.
func (s *Service) Ingredients(_ context.Context) ([]IngredientStatus, error) {
	usage, err := s.db.Ingredients()
	if err != nil {
		return nil, err
	}
	lookup := s.snapshot().lookup
	out := make([]IngredientStatus, 0, len(usage))
	for _, u := range usage {
		st := IngredientStatus{Name: u.Name, Recipes: u.Recipes}
		if p, ok := lookup.Get(u.Name); ok {
			st.InCatalog = true
			st.HasNutrition = p.HasNutrients()
			st.HasDensity = p.Density != nil
			st.Aisle = p.Aisle
		}
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}
