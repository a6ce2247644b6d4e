package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/starford/larder/internal/recipeservice"
)

// RouterConfig controls auth and rate limiting on the API.
type RouterConfig struct {
	AuthEnabled bool
	Token       string
	// RateLimit is requests per second across all clients; 0 disables limiting.
	RateLimit float64
	RateBurst int
}

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group
// and outside the rate limiter.
func NewRouter(svc *recipeservice.Service, cfg RouterConfig, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = int(cfg.RateLimit)
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.Token))

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(limiter))

		// Recipes CRUD.
		r.Get("/recipes", h.ListRecipes)
		r.Post("/recipes", h.CreateRecipe)
		r.Get("/recipes/{slug}", h.GetRecipe)
		r.Put("/recipes/{slug}", h.UpdateRecipe)
		r.Delete("/recipes/{slug}", h.DeleteRecipe)
		r.Get("/recipes/{slug}/nutrition", h.Nutrition)
		r.Get("/recipes/{slug}/html", h.RenderRecipe)

		r.Post("/validate", h.Validate)
		r.Post("/nutrition/preview", h.NutritionPreview)
		r.Get("/categories", h.Categories)
		r.Get("/search", h.Search)
		r.Get("/graph", h.Graph)

		// Menu and groceries.
		r.Get("/quick-bites", h.GetQuickBites)
		r.Put("/quick-bites", h.UpdateQuickBites)
		r.Post("/shopping-list", h.ShoppingList)
		r.Post("/availability", h.Availability)

		// Ingredient catalog.
		r.Get("/ingredients", h.Ingredients)
		r.Get("/catalog", h.ListCatalog)
		r.Post("/catalog/reload", h.ReloadCatalog)
		r.Post("/catalog/label", h.ParseLabel)
		r.Get("/catalog/{name}", h.GetCatalogEntry)
		r.Put("/catalog/{name}", h.UpsertCatalogEntry)
		r.Delete("/catalog/{name}", h.DeleteCatalogEntry)
		r.Get("/catalog/{name}/label", h.CatalogLabel)
	})

	return r
}
