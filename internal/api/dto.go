package api

import (
	"github.com/starford/larder/internal/aggregate"
	"github.com/starford/larder/internal/catalog"
	"github.com/starford/larder/internal/models"
	"github.com/starford/larder/internal/recipeservice"
)

// RecipeContentRequest carries a recipe document for create, update and validate.
type RecipeContentRequest struct {
	Content string `json:"content" example:"# Bread\n\nCategory: Bread\n\n## Mix\n\n- Flour, 100 g" validate:"required"`
}

// RecipeDetail is the full recipe response type (aliased from the domain layer).
type RecipeDetail = recipeservice.RecipeDetail

// RecipeListItem is a lightweight item in a list response (aliased from the domain layer).
type RecipeListItem = recipeservice.RecipeListItem

// RecipeListResponse wraps paginated recipe listings.
type RecipeListResponse struct {
	Recipes []RecipeListItem `json:"recipes" validate:"required"`
	Total   int              `json:"total" example:"42" validate:"required"`
}

// ValidateResponse lists problems found in a document; empty means valid.
type ValidateResponse struct {
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems" validate:"required"`
}

// NutritionResponse is the nutrition result for one recipe.
type NutritionResponse struct {
	Slug      string                 `json:"slug,omitempty" example:"bread"`
	Complete  bool                   `json:"complete"`
	Nutrition models.NutritionResult `json:"nutrition"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Slug    string `json:"slug" example:"focaccia" validate:"required"`
	Title   string `json:"title" example:"Focaccia" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// GraphNode is a recipe in the cross-reference graph.
type GraphNode struct {
	ID       string `json:"id" example:"focaccia" validate:"required"`
	Title    string `json:"title,omitempty" example:"Focaccia"`
	Category string `json:"category,omitempty" example:"Bread"`
}

// GraphLink is a cross-reference edge.
type GraphLink struct {
	Source     string  `json:"source" example:"sandwich" validate:"required"`
	Target     string  `json:"target" example:"focaccia" validate:"required"`
	Multiplier float64 `json:"multiplier" example:"0.5"`
	Resolved   bool    `json:"resolved"`
}

// GraphResponse wraps the recipe graph.
type GraphResponse struct {
	Nodes []GraphNode `json:"nodes" validate:"required"`
	Links []GraphLink `json:"links" validate:"required"`
}

// QuickBitesRequest replaces the quick-bites document.
type QuickBitesRequest struct {
	Content string `json:"content" example:"## Snacks\n- Apple" validate:"required"`
}

// QuickBitesResponse returns the quick-bites document and its parsed items.
type QuickBitesResponse struct {
	Content    string             `json:"content"`
	QuickBites []models.QuickBite `json:"quick_bites" validate:"required"`
}

// ShoppingListRequest selects what goes on a shopping list (aliased from the domain layer).
type ShoppingListRequest = recipeservice.Selection

// ShoppingListResponse is an aisle-grouped shopping list.
type ShoppingListResponse struct {
	Aisles []aggregate.Aisle `json:"aisles" validate:"required"`
}

// AvailabilityRequest lists groceries already on hand.
type AvailabilityRequest struct {
	CheckedOff []string `json:"checked_off"`
}

// AvailabilityResponse is keyed by recipe slug or quick bite ID.
type AvailabilityResponse struct {
	Availability map[string]aggregate.Availability `json:"availability" validate:"required"`
}

// CatalogResponse lists merged catalog entries.
type CatalogResponse struct {
	Ingredients []catalog.Profile `json:"ingredients" validate:"required"`
}

// LabelRequest carries nutrition-label text to parse.
type LabelRequest struct {
	Name string `json:"name" example:"Rolled Oats"`
	Text string `json:"text" example:"Serving size: 1/2 cup (40g)\nCalories 150" validate:"required"`
}

// LabelResponse is the label form of a catalog entry.
type LabelResponse struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// IngredientsResponse lists ingredients used by recipes with catalog coverage.
type IngredientsResponse struct {
	Ingredients []recipeservice.IngredientStatus `json:"ingredients" validate:"required"`
}
