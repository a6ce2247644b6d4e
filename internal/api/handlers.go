package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/larder/internal/recipeservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *recipeservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *recipeservice.Service) *Handler {
	return &Handler{svc: svc}
}

// urlParam extracts and unescapes a named path parameter.
// Supports encoded characters from OpenAPI clients (e.g. Flour%20%28bread%29).
func urlParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return strings.TrimSpace(decoded)
}

// ListRecipes handles GET /api/recipes.
//
//	@Summary		List recipes with optional pagination and filtering
//	@Tags			recipes
//	@Produce		json
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Param			category	query		string	false	"Filter by category"
//	@Param			sort		query		string	false	"Sort field"	Enums(title, updated, category)
//	@Success		200			{object}	RecipeListResponse
//	@Security		BearerAuth
//	@Router			/recipes [get]
func (h *Handler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListRecipes(r.Context(), limit, offset, q.Get("category"), q.Get("sort"))
	if err != nil {
		writeServiceError(w, "list recipes", err)
		return
	}
	if items == nil {
		items = []RecipeListItem{}
	}
	writeJSON(w, http.StatusOK, RecipeListResponse{Recipes: items, Total: total})
}

// GetRecipe handles GET /api/recipes/{slug}.
//
//	@Summary		Get a single recipe by slug
//	@Tags			recipes
//	@Produce		json
//	@Param			slug	path		string	true	"Recipe slug"
//	@Success		200		{object}	RecipeDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/recipes/{slug} [get]
func (h *Handler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	slug := urlParam(r, "slug")
	d, err := h.svc.GetRecipe(r.Context(), slug)
	if err != nil {
		writeServiceError(w, "get recipe", err, slog.String("slug", slug))
		return
	}
	w.Header().Set("ETag", `"`+d.Checksum+`"`)
	writeJSON(w, http.StatusOK, d)
}

// CreateRecipe handles POST /api/recipes.
//
//	@Summary		Create a recipe; the file name is derived from the title
//	@Tags			recipes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RecipeContentRequest	true	"Recipe document"
//	@Success		201		{object}	RecipeDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/recipes [post]
func (h *Handler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req RecipeContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}
	d, err := h.svc.CreateRecipe(r.Context(), []byte(req.Content))
	if err != nil {
		writeServiceError(w, "create recipe", err)
		return
	}
	w.Header().Set("ETag", `"`+d.Checksum+`"`)
	writeJSON(w, http.StatusCreated, d)
}

// UpdateRecipe handles PUT /api/recipes/{slug}.
//
//	@Summary		Update a recipe with optimistic concurrency
//	@Tags			recipes
//	@Accept			json
//	@Produce		json
//	@Param			slug		path		string					true	"Recipe slug"
//	@Param			If-Match	header		string					false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body		RecipeContentRequest	true	"Updated document"
//	@Success		200			{object}	RecipeDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Failure		422			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/recipes/{slug} [put]
func (h *Handler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	slug := urlParam(r, "slug")
	var req RecipeContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	d, err := h.svc.UpdateRecipe(r.Context(), slug, []byte(req.Content), ifMatch)
	if err != nil {
		writeServiceError(w, "update recipe", err, slog.String("slug", slug))
		return
	}
	w.Header().Set("ETag", `"`+d.Checksum+`"`)
	writeJSON(w, http.StatusOK, d)
}

// DeleteRecipe handles DELETE /api/recipes/{slug}.
//
//	@Summary		Delete a recipe
//	@Tags			recipes
//	@Param			slug	path	string	true	"Recipe slug"
//	@Success		204		"Recipe deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/recipes/{slug} [delete]
func (h *Handler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	slug := urlParam(r, "slug")
	if err := h.svc.DeleteRecipe(r.Context(), slug); err != nil {
		writeServiceError(w, "delete recipe", err, slog.String("slug", slug))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Nutrition handles GET /api/recipes/{slug}/nutrition.
//
//	@Summary		Nutrition facts for a recipe, cross-references expanded
//	@Tags			nutrition
//	@Produce		json
//	@Param			slug	path		string	true	"Recipe slug"
//	@Success		200		{object}	NutritionResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/recipes/{slug}/nutrition [get]
func (h *Handler) Nutrition(w http.ResponseWriter, r *http.Request) {
	slug := urlParam(r, "slug")
	res, err := h.svc.Nutrition(r.Context(), slug)
	if err != nil {
		writeServiceError(w, "nutrition", err, slog.String("slug", slug))
		return
	}
	writeJSON(w, http.StatusOK, NutritionResponse{Slug: slug, Complete: res.Complete(), Nutrition: res})
}

// NutritionPreview handles POST /api/nutrition/preview.
//
//	@Summary		Nutrition facts for an unsaved document
//	@Tags			nutrition
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RecipeContentRequest	true	"Recipe document"
//	@Success		200		{object}	NutritionResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/nutrition/preview [post]
func (h *Handler) NutritionPreview(w http.ResponseWriter, r *http.Request) {
	var req RecipeContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.CalculateDocument(r.Context(), req.Content)
	if err != nil {
		writeServiceError(w, "nutrition preview", err)
		return
	}
	writeJSON(w, http.StatusOK, NutritionResponse{Complete: res.Complete(), Nutrition: res})
}

// RenderRecipe handles GET /api/recipes/{slug}/html.
//
//	@Summary		Render a recipe as an HTML fragment
//	@Tags			recipes
//	@Produce		html
//	@Param			slug	path	string	true	"Recipe slug"
//	@Success		200		{string}	string
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/recipes/{slug}/html [get]
func (h *Handler) RenderRecipe(w http.ResponseWriter, r *http.Request) {
	slug := urlParam(r, "slug")
	out, err := h.svc.RenderRecipe(r.Context(), slug)
	if err != nil {
		writeServiceError(w, "render recipe", err, slog.String("slug", slug))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// Validate handles POST /api/validate.
//
//	@Summary		Check a recipe document without saving it
//	@Tags			recipes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RecipeContentRequest	true	"Recipe document"
//	@Success		200		{object}	ValidateResponse
//	@Security		BearerAuth
//	@Router			/validate [post]
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req RecipeContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	problems := h.svc.Validate(req.Content)
	if problems == nil {
		problems = []string{}
	}
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: len(problems) == 0, Problems: problems})
}

// Categories handles GET /api/categories.
//
//	@Summary		List recipe categories
//	@Tags			recipes
//	@Produce		json
//	@Success		200	{object}	map[string][]string
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		writeServiceError(w, "categories", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across recipes
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search", err, slog.String("query", q))
		return
	}
	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{Slug: hit.Slug, Title: hit.Title, Snippet: hit.Snippet}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Graph handles GET /api/graph.
//
//	@Summary		Get the recipe cross-reference graph
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	GraphResponse
//	@Security		BearerAuth
//	@Router			/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	nodes, edges, err := h.svc.Graph(r.Context())
	if err != nil {
		writeServiceError(w, "graph", err)
		return
	}
	resp := GraphResponse{Nodes: make([]GraphNode, len(nodes)), Links: make([]GraphLink, len(edges))}
	known := make(map[string]struct{}, len(nodes))
	for i, n := range nodes {
		resp.Nodes[i] = GraphNode{ID: n.Slug, Title: n.Title, Category: n.Category}
		known[n.Slug] = struct{}{}
	}
	for i, e := range edges {
		_, ok := known[e.Target]
		resp.Links[i] = GraphLink{Source: e.Source, Target: e.Target, Multiplier: e.Multiplier, Resolved: ok}
	}
	writeJSON(w, http.StatusOK, resp)
}
