package recipeservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/larder/internal/apperr"
	"github.com/starford/larder/internal/models"
	"github.com/starford/larder/internal/parser"
	"github.com/starford/larder/internal/sse"
)

// Nutrition returns the nutrition facts for slug, from cache when the recipe
// and the catalog are unchanged since the last calculation.
func (s *Service) Nutrition(_ context.Context, slug string) (models.NutritionResult, error) {
	snap := s.snapshot()
	row, err := s.db.GetRecipe(slug)
	if err != nil {
		return models.NutritionResult{}, err
	}

	cached, err := s.db.GetNutrition(slug)
	if err != nil {
		return models.NutritionResult{}, err
	}
	if cached.Fresh(row.Checksum, snap.checksum) {
		nutritionCacheLookups.WithLabelValues("hit").Inc()
		return cached.Result, nil
	}
	nutritionCacheLookups.WithLabelValues("miss").Inc()

	res, err := s.calculate(snap, row.Body)
	if err != nil {
		return models.NutritionResult{}, err
	}
	if err := s.db.PutNutrition(slug, row.Checksum, snap.checksum, res); err != nil {
		return models.NutritionResult{}, err
	}
	return res, nil
}

// CalculateDocument computes nutrition for an unsaved document against the
// current catalog. Cross-references resolve through the index.
func (s *Service) CalculateDocument(_ context.Context, content string) (models.NutritionResult, error) {
	return s.calculate(s.snapshot(), content)
}

func (s *Service) calculate(snap *catalogSnapshot, body string) (models.NutritionResult, error) {
	r, err := parser.Parse(body)
	if err != nil {
		return models.NutritionResult{}, fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
	}
	return snap.calc.Calculate(r, s.recipeLookup()), nil
}

// Cascade drops cached nutrition for slug and every recipe that reaches it
// through cross-references, then recomputes the ones still indexed and
// publishes nutrition.updated for each. Failures are logged, not returned.
func (s *Service) Cascade(ctx context.Context, slug string) {
	deps, err := s.db.TransitiveDependents(slug)
	if err != nil {
		s.logger.Warn("cascade: dependents failed", slog.String("slug", slug), slog.String("error", err.Error()))
		return
	}
	affected := append([]string{slug}, deps...)
	if err := s.db.InvalidateNutrition(affected...); err != nil {
		s.logger.Warn("cascade: invalidate failed", slog.String("slug", slug), slog.String("error", err.Error()))
		return
	}

	for _, a := range affected {
		if ctx.Err() != nil {
			return
		}
		res, err := s.Nutrition(ctx, a)
		if err != nil {
			// The changed recipe itself may be gone; its dependents still recompute.
			s.logger.Debug("cascade: skip", slog.String("slug", a), slog.String("error", err.Error()))
			continue
		}
		cascadeRecalculations.Inc()
		if s.events != nil {
			s.events.PublishNutrition(sse.NutritionUpdate{
				Slug:     a,
				Calories: res.Totals[models.Calories],
				Complete: res.Complete(),
			})
		}
	}
	s.logger.Debug("cascade: done", slog.String("slug", slug), slog.Int("recipes", len(affected)))
}

// Refresh cascades each slug, e.g. the ones touched by a startup sync.
func (s *Service) Refresh(ctx context.Context, slugs ...string) {
	for _, slug := range slugs {
		s.Cascade(ctx, slug)
	}
}
