// Package recipeservice coordinates kitchen storage, the SQLite index, the
// ingredient catalog and the nutrition calculator.
package recipeservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/starford/larder/internal/aggregate"
	"github.com/starford/larder/internal/apperr"
	"github.com/starford/larder/internal/checksum"
	"github.com/starford/larder/internal/index"
	"github.com/starford/larder/internal/models"
	"github.com/starford/larder/internal/parser"
	"github.com/starford/larder/internal/render"
	"github.com/starford/larder/internal/sse"
	"github.com/starford/larder/internal/storage"
)

// Events receives change notifications. *sse.Broker satisfies it.
type Events interface {
	Publish(e sse.Event)
	PublishRecipeEvent(kind, path, slug string)
	PublishNutrition(u sse.NutritionUpdate)
}

// Config holds the kitchen settings the service needs.
type Config struct {
	QuickBitesPath string   // relative to the kitchen root
	AisleOrder     []string // preferred aisle order for shopping lists
	Omit           []string // ingredient names left out of nutrition totals and reporting
	GlobalCatalog  string   // path of the shared catalog YAML
	KitchenCatalog string   // path of the kitchen's catalog overrides; may not exist
}

// RecipeDetail is the full representation of a recipe.
type RecipeDetail struct {
	Slug            string                  `json:"slug"`
	Path            string                  `json:"path"`
	Content         string                  `json:"content"`
	Checksum        string                  `json:"checksum"`
	Recipe          *models.Recipe          `json:"recipe"`
	Dependents      []string                `json:"dependents"`
	UnresolvedLinks []models.CrossReference `json:"unresolved_cross_references"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// RecipeListItem is a lightweight item in a list response.
type RecipeListItem struct {
	Slug          string    `json:"slug"`
	Path          string    `json:"path"`
	Title         string    `json:"title"`
	Category      string    `json:"category"`
	Description   string    `json:"description,omitempty"`
	Serves        *int      `json:"serves,omitempty"`
	MakesQuantity *float64  `json:"makes_quantity,omitempty"`
	MakesUnit     string    `json:"makes_unit,omitempty"`
	Checksum      string    `json:"checksum"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Service coordinates storage, index, catalog and calculator.
type Service struct {
	store    storage.Provider
	db       index.RecipeIndex
	cfg      Config
	logger   *slog.Logger
	events   Events
	renderer *render.Renderer

	catMu sync.RWMutex
	cat   *catalogSnapshot
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for cascade and reload reporting.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithEvents sets the change-notification sink.
func WithEvents(e Events) Option {
	return func(s *Service) { s.events = e }
}

// New creates a recipe service and loads the catalog.
func New(store storage.Provider, db index.RecipeIndex, cfg Config, opts ...Option) (*Service, error) {
	s := &Service{
		store:    store,
		db:       db,
		cfg:      cfg,
		logger:   slog.Default(),
		renderer: render.New(),
	}
	for _, o := range opts {
		o(s)
	}
	if err := s.ReloadCatalog(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// QuickBitesPath returns the kitchen-relative path of the quick-bites file.
func (s *Service) QuickBitesPath() string {
	return s.cfg.QuickBitesPath
}

// GetRecipe reads a recipe by slug with its dependents and unresolved references.
func (s *Service) GetRecipe(_ context.Context, slug string) (*RecipeDetail, error) {
	row, err := s.db.GetRecipe(slug)
	if err != nil {
		return nil, err
	}
	return s.buildRecipeDetail(row.Path, []byte(row.Body), row.UpdatedAt)
}

// Validate reports display-ready problems with a recipe document.
func (s *Service) Validate(content string) []string {
	return parser.Validate(content)
}

// CreateRecipe validates content, writes it as <slug>.md and indexes it.
func (s *Service) CreateRecipe(ctx context.Context, content []byte) (*RecipeDetail, error) {
	r, err := parseValid(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.GetRecipe(r.Slug); err == nil {
		return nil, fmt.Errorf("recipe %q: %w", r.Slug, apperr.ErrAlreadyExists)
	}
	path := storage.RecipePath(r.Slug)
	if ok, err := s.store.Exists(path); err != nil {
		return nil, err
	} else if ok {
		return nil, fmt.Errorf("file %s: %w", path, apperr.ErrAlreadyExists)
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if _, err := index.IndexFile(s.db, path, content); err != nil {
		return nil, err
	}
	s.notify("created", path, r.Slug)
	s.Cascade(ctx, r.Slug)
	return s.buildRecipeDetail(path, content, time.Now().UTC())
}

// UpdateRecipe replaces a recipe with optimistic concurrency on ifMatch.
// A changed title moves the file to the new slug's path.
func (s *Service) UpdateRecipe(ctx context.Context, slug string, content []byte, ifMatch string) (*RecipeDetail, error) {
	row, err := s.db.GetRecipe(slug)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.Read(row.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	r, err := parseValid(content)
	if err != nil {
		return nil, err
	}

	path := row.Path
	if r.Slug != slug {
		if _, err := s.db.GetRecipe(r.Slug); err == nil {
			return nil, fmt.Errorf("recipe %q: %w", r.Slug, apperr.ErrAlreadyExists)
		}
		path = storage.RecipePath(r.Slug)
		if ok, err := s.store.Exists(path); err != nil {
			return nil, err
		} else if ok {
			return nil, fmt.Errorf("file %s: %w", path, apperr.ErrAlreadyExists)
		}
	}

	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if path != row.Path {
		if err := s.store.Delete(row.Path); err != nil {
			return nil, err
		}
		if _, err := s.db.DeleteByPath(row.Path); err != nil {
			return nil, err
		}
		s.notify("deleted", row.Path, slug)
	}
	if _, err := index.IndexFile(s.db, path, content); err != nil {
		return nil, err
	}
	s.notify("updated", path, r.Slug)

	if r.Slug != slug {
		s.Cascade(ctx, slug)
	}
	s.Cascade(ctx, r.Slug)
	return s.buildRecipeDetail(path, content, time.Now().UTC())
}

// DeleteRecipe removes a recipe from storage and index, then recalculates
// every recipe that referenced it.
func (s *Service) DeleteRecipe(ctx context.Context, slug string) error {
	row, err := s.db.GetRecipe(slug)
	if err != nil {
		return err
	}
	if err := s.store.Delete(row.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if _, err := s.db.DeleteByPath(row.Path); err != nil {
		return err
	}
	s.notify("deleted", row.Path, slug)
	s.Cascade(ctx, slug)
	return nil
}

// ListRecipes returns paginated recipes with an optional category filter.
func (s *Service) ListRecipes(_ context.Context, limit, offset int, category, sort string) ([]RecipeListItem, int, error) {
	rows, total, err := s.db.ListRecipes(limit, offset, category, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]RecipeListItem, len(rows))
	for i, r := range rows {
		items[i] = RecipeListItem{
			Slug:          r.Slug,
			Path:          r.Path,
			Title:         r.Title,
			Category:      r.Category,
			Description:   r.Description,
			Serves:        r.Serves,
			MakesQuantity: r.MakesQuantity,
			MakesUnit:     r.MakesUnit,
			Checksum:      r.Checksum,
			UpdatedAt:     r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Categories returns the distinct recipe categories.
func (s *Service) Categories(_ context.Context) ([]string, error) {
	cats, err := s.db.Categories()
	return nonNilSlice(cats), err
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Graph returns all recipes and cross-reference edges.
func (s *Service) Graph(_ context.Context) ([]index.GraphNode, []index.GraphEdge, error) {
	return s.db.Graph()
}

// RenderRecipe returns the recipe as an HTML fragment with scalable numbers marked.
func (s *Service) RenderRecipe(_ context.Context, slug string) (string, error) {
	row, err := s.db.GetRecipe(slug)
	if err != nil {
		return "", err
	}
	r, err := parser.Parse(row.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
	}
	return s.renderer.Recipe(r)
}

// HandleFileEvent is the watcher callback: it announces the change and
// recalculates affected nutrition. An empty slug marks the quick-bites file.
func (s *Service) HandleFileEvent(ctx context.Context, kind, path, slug string) {
	s.notify(kind, path, slug)
	if slug != "" {
		s.Cascade(ctx, slug)
	}
}

// buildRecipeDetail constructs a RecipeDetail from raw data without re-reading the file.
func (s *Service) buildRecipeDetail(path string, data []byte, updated time.Time) (*RecipeDetail, error) {
	r, err := parser.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
	}
	deps, err := s.db.Dependents(r.Slug)
	if err != nil {
		return nil, err
	}
	var unresolved []models.CrossReference
	for _, x := range r.CrossReferences() {
		if _, err := s.db.GetRecipe(x.TargetSlug); errors.Is(err, apperr.ErrNotFound) {
			unresolved = append(unresolved, x)
		}
	}
	return &RecipeDetail{
		Slug:            r.Slug,
		Path:            path,
		Content:         string(data),
		Checksum:        checksum.Sum(data),
		Recipe:          r,
		Dependents:      nonNilSlice(deps),
		UnresolvedLinks: nonNilSlice(unresolved),
		UpdatedAt:       updated,
	}, nil
}

// recipeLookup resolves cross-reference slugs through the index. Parsed
// recipes are memoised for the lifetime of one lookup only.
func (s *Service) recipeLookup() aggregate.RecipeLookup {
	memo := make(map[string]*models.Recipe)
	return func(slug string) (*models.Recipe, bool) {
		if r, ok := memo[slug]; ok {
			return r, r != nil
		}
		row, err := s.db.GetRecipe(slug)
		if err != nil {
			memo[slug] = nil
			return nil, false
		}
		r, err := parser.Parse(row.Body)
		if err != nil {
			memo[slug] = nil
			return nil, false
		}
		memo[slug] = r
		return r, true
	}
}

// recipes loads the given slugs, failing on the first unknown one.
func (s *Service) recipes(slugs []string, lookup aggregate.RecipeLookup) ([]*models.Recipe, error) {
	out := make([]*models.Recipe, 0, len(slugs))
	for _, slug := range slugs {
		r, ok := lookup(slug)
		if !ok {
			return nil, fmt.Errorf("recipe %q: %w", slug, apperr.ErrNotFound)
		}
		out = append(out, r)
	}
	return out, nil
}

// allSlugs pages through the whole index.
func (s *Service) allSlugs() ([]string, error) {
	const page = 500
	var out []string
	for offset := 0; ; offset += page {
		rows, total, err := s.db.ListRecipes(page, offset, "", "")
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			out = append(out, r.Slug)
		}
		if offset+page >= total || len(rows) == 0 {
			return out, nil
		}
	}
}

func (s *Service) notify(kind, path, slug string) {
	if s.events != nil {
		s.events.PublishRecipeEvent(kind, path, slug)
	}
}

func parseValid(content []byte) (*models.Recipe, error) {
	if problems := parser.Validate(string(content)); len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", apperr.ErrInvalid, strings.Join(problems, " "))
	}
	r, err := parser.Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
	}
	return r, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
