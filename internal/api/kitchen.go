package api

import (
	"net/http"

	"github.com/starford/larder/internal/recipeservice"
)

// GetQuickBites handles GET /api/quick-bites.
//
//	@Summary		The quick-bites document and its parsed items
//	@Tags			menu
//	@Produce		json
//	@Success		200	{object}	QuickBitesResponse
//	@Security		BearerAuth
//	@Router			/quick-bites [get]
func (h *Handler) GetQuickBites(w http.ResponseWriter, r *http.Request) {
	content, err := h.svc.QuickBitesContent()
	if err != nil {
		writeServiceError(w, "read quick bites", err)
		return
	}
	bites, err := h.svc.QuickBites(r.Context())
	if err != nil {
		writeServiceError(w, "quick bites", err)
		return
	}
	writeJSON(w, http.StatusOK, QuickBitesResponse{Content: content, QuickBites: bites})
}

// UpdateQuickBites handles PUT /api/quick-bites.
//
//	@Summary		Replace the quick-bites document
//	@Tags			menu
//	@Accept			json
//	@Produce		json
//	@Param			body	body		QuickBitesRequest	true	"Quick-bites document"
//	@Success		200		{object}	QuickBitesResponse
//	@Security		BearerAuth
//	@Router			/quick-bites [put]
func (h *Handler) UpdateQuickBites(w http.ResponseWriter, r *http.Request) {
	var req QuickBitesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	bites, err := h.svc.UpdateQuickBites(r.Context(), req.Content)
	if err != nil {
		writeServiceError(w, "update quick bites", err)
		return
	}
	writeJSON(w, http.StatusOK, QuickBitesResponse{Content: req.Content, QuickBites: bites})
}

// ShoppingList handles POST /api/shopping-list.
//
//	@Summary		Build an aisle-grouped shopping list
//	@Tags			menu
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ShoppingListRequest	true	"Selected recipes, quick bites and custom items"
//	@Success		200		{object}	ShoppingListResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/shopping-list [post]
func (h *Handler) ShoppingList(w http.ResponseWriter, r *http.Request) {
	var req recipeservice.Selection
	if !decodeJSON(w, r, &req) {
		return
	}
	aisles, err := h.svc.ShoppingList(r.Context(), req)
	if err != nil {
		writeServiceError(w, "shopping list", err)
		return
	}
	writeJSON(w, http.StatusOK, ShoppingListResponse{Aisles: aisles})
}

// Availability handles POST /api/availability.
//
//	@Summary		Which menu items can be made from checked-off groceries
//	@Tags			menu
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AvailabilityRequest	true	"Groceries on hand"
//	@Success		200		{object}	AvailabilityResponse
//	@Security		BearerAuth
//	@Router			/availability [post]
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	var req AvailabilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	avail, err := h.svc.Availability(r.Context(), req.CheckedOff)
	if err != nil {
		writeServiceError(w, "availability", err)
		return
	}
	writeJSON(w, http.StatusOK, AvailabilityResponse{Availability: avail})
}
