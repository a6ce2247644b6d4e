package api

import (
	"log/slog"
	"net/http"

	"github.com/starford/larder/internal/catalog"
)

// Ingredients handles GET /api/ingredients.
//
//	@Summary		Ingredients used by recipes, with catalog coverage
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{object}	IngredientsResponse
//	@Security		BearerAuth
//	@Router			/ingredients [get]
func (h *Handler) Ingredients(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Ingredients(r.Context())
	if err != nil {
		writeServiceError(w, "ingredients", err)
		return
	}
	writeJSON(w, http.StatusOK, IngredientsResponse{Ingredients: list})
}

// ListCatalog handles GET /api/catalog.
//
//	@Summary		Merged ingredient catalog
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{object}	CatalogResponse
//	@Security		BearerAuth
//	@Router			/catalog [get]
func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CatalogResponse{Ingredients: h.svc.CatalogEntries(r.Context())})
}

// GetCatalogEntry handles GET /api/catalog/{name}.
func (h *Handler) GetCatalogEntry(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")
	p, err := h.svc.CatalogEntry(r.Context(), name)
	if err != nil {
		writeServiceError(w, "catalog entry", err, slog.String("name", name))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpsertCatalogEntry handles PUT /api/catalog/{name}.
//
//	@Summary		Create or replace a kitchen catalog entry
//	@Tags			catalog
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string			true	"Ingredient name"
//	@Param			body	body		catalog.Profile	true	"Profile; the path name wins over body.name"
//	@Success		200		{object}	catalog.Profile
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/catalog/{name} [put]
func (h *Handler) UpsertCatalogEntry(w http.ResponseWriter, r *http.Request) {
	var p catalog.Profile
	if !decodeJSON(w, r, &p) {
		return
	}
	p.Name = urlParam(r, "name")
	saved, err := h.svc.UpsertIngredient(r.Context(), p)
	if err != nil {
		writeServiceError(w, "upsert catalog entry", err, slog.String("name", p.Name))
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteCatalogEntry handles DELETE /api/catalog/{name}.
func (h *Handler) DeleteCatalogEntry(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")
	if err := h.svc.DeleteIngredient(r.Context(), name); err != nil {
		writeServiceError(w, "delete catalog entry", err, slog.String("name", name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReloadCatalog handles POST /api/catalog/reload.
func (h *Handler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ReloadCatalog(r.Context()); err != nil {
		slog.Error("catalog reload failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"ingredients": len(h.svc.CatalogEntries(r.Context()))})
}

// ParseLabel handles POST /api/catalog/label.
//
//	@Summary		Parse nutrition-label text into a catalog profile
//	@Tags			catalog
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LabelRequest	true	"Label text"
//	@Success		200		{object}	catalog.Profile
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/catalog/label [post]
func (h *Handler) ParseLabel(w http.ResponseWriter, r *http.Request) {
	var req LabelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.ParseLabel(req.Name, req.Text)
	if err != nil {
		writeServiceError(w, "parse label", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CatalogLabel handles GET /api/catalog/{name}/label.
func (h *Handler) CatalogLabel(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")
	writeJSON(w, http.StatusOK, LabelResponse{Name: name, Text: h.svc.IngredientLabel(r.Context(), name)})
}
