package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/larder/internal/catalog"
	"github.com/starford/larder/internal/models"
	"github.com/starford/larder/internal/recipeservice"
	"github.com/starford/larder/internal/testutil"
)

const testCatalog = `ingredients:
  - name: Flour
    basis_grams: 100
    nutrients: {calories: 364, protein: 10}
    aisle: Baking
  - name: Butter
    basis_grams: 14
    nutrients: {calories: 100, fat: 11}
    aisle: Dairy
`

const breadDoc = `# Bread

Category: Bread
Serves: 2

## Mix

- Flour, 100 g

Mix well.
`

const toastDoc = `# Toast

Category: Breakfast

## Toast

- @[Bread]
- Butter, 14 g

Toast and butter.
`

// testEnv sets up a temp kitchen, SQLite DB, service, and router for testing.
// A non-empty authToken turns on token mode.
func testEnv(t *testing.T, authToken string) (*recipeservice.Service, http.Handler) {
	t.Helper()
	return testEnvFull(t, RouterConfig{AuthEnabled: authToken != "", Token: authToken}, nil)
}

func testEnvFull(t *testing.T, cfg RouterConfig, sseHandler http.Handler) (*recipeservice.Service, http.Handler) {
	t.Helper()
	_, store := testutil.TestKitchen(t)
	db := testutil.TestDB(t)
	catDir := t.TempDir()
	global := testutil.WriteFile(t, catDir, "global.yaml", testCatalog)

	svc, err := recipeservice.New(store, db, recipeservice.Config{
		QuickBitesPath: "quick-bites.md",
		GlobalCatalog:  global,
		KitchenCatalog: filepath.Join(catDir, "kitchen.yaml"),
	})
	if err != nil {
		t.Fatalf("recipeservice.New: %v", err)
	}
	return svc, NewRouter(svc, cfg, sseHandler)
}

func do(t *testing.T, router http.Handler, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createRecipe(t *testing.T, router http.Handler, content string) RecipeDetail {
	t.Helper()
	w := do(t, router, http.MethodPost, "/recipes", RecipeContentRequest{Content: content})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var d RecipeDetail
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestCreateAndGetRecipe(t *testing.T) {
	_, router := testEnv(t, "")

	created := createRecipe(t, router, breadDoc)
	if created.Slug != "bread" || created.Path != "bread.md" {
		t.Errorf("created = %q at %q", created.Slug, created.Path)
	}

	w := do(t, router, http.MethodGet, "/recipes/bread", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if etag := w.Header().Get("ETag"); etag != `"`+created.Checksum+`"` {
		t.Errorf("ETag = %q", etag)
	}
	var d RecipeDetail
	_ = json.Unmarshal(w.Body.Bytes(), &d)
	if d.Recipe == nil || d.Recipe.Title != "Bread" {
		t.Fatalf("recipe = %+v", d.Recipe)
	}
	if d.Recipe.FrontMatter.Category != "Bread" {
		t.Errorf("category = %q", d.Recipe.FrontMatter.Category)
	}
}

func TestCreateDuplicate(t *testing.T) {
	_, router := testEnv(t, "")
	createRecipe(t, router, breadDoc)

	w := do(t, router, http.MethodPost, "/recipes", RecipeContentRequest{Content: breadDoc})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}
}

func TestCreateMalformed(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/recipes", RecipeContentRequest{Content: "no title here"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("malformed create = %d, want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "level-one heading") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestCreateEmptyContent(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/recipes", RecipeContentRequest{Content: "  "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty create = %d, want 400", w.Code)
	}
}

func TestUpdateWithOptimisticLocking(t *testing.T) {
	_, router := testEnv(t, "")
	created := createRecipe(t, router, breadDoc)

	updated := strings.Replace(breadDoc, "Mix well.", "Mix very well.", 1)

	w := do(t, router, http.MethodPut, "/recipes/bread", RecipeContentRequest{Content: updated}, "If-Match", `"stale"`)
	if w.Code != http.StatusConflict {
		t.Fatalf("stale update = %d, want 409", w.Code)
	}

	w = do(t, router, http.MethodPut, "/recipes/bread", RecipeContentRequest{Content: updated}, "If-Match", `"`+created.Checksum+`"`)
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	var d RecipeDetail
	_ = json.Unmarshal(w.Body.Bytes(), &d)
	if d.Checksum == created.Checksum {
		t.Error("checksum did not change")
	}
}

func TestUpdateWithoutIfMatch(t *testing.T) {
	_, router := testEnv(t, "")
	createRecipe(t, router, breadDoc)

	w := do(t, router, http.MethodPut, "/recipes/bread", RecipeContentRequest{Content: breadDoc + "\nMore.\n"})
	if w.Code != http.StatusOK {
		t.Errorf("update without If-Match = %d, want 200", w.Code)
	}
}

func TestUpdateRecipe_NotFound(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPut, "/recipes/ghost", RecipeContentRequest{Content: breadDoc})
	if w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

func TestDeleteRecipe(t *testing.T) {
	_, router := testEnv(t, "")
	createRecipe(t, router, breadDoc)

	w := do(t, router, http.MethodDelete, "/recipes/bread", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	w = do(t, router, http.MethodGet, "/recipes/bread", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestListRecipes(t *testing.T) {
	_, router := testEnv(t, "")
	createRecipe(t, router, breadDoc)
	createRecipe(t, router, toastDoc)

	w := do(t, router, http.MethodGet, "/recipes?category=Bread", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp RecipeListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || len(resp.Recipes) != 1 || resp.Recipes[0].Slug != "bread" {
		t.Errorf("list = %+v", resp)
	}

	w = do(t, router, http.MethodGet, "/categories", nil)
	if !strings.Contains(w.Body.String(), "Breakfast") {
		t.Errorf("categories = %s", w.Body.String())
	}
}

func TestNutritionEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createRecipe(t, router, breadDoc)
	createRecipe(t, router, toastDoc)

	w := do(t, router, http.MethodGet, "/recipes/toast/nutrition", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("nutrition = %d, body = %s", w.Code, w.Body.String())
	}
	var resp NutritionResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Complete {
		t.Errorf("incomplete: %+v", resp.Nutrition)
	}
	if got := resp.Nutrition.Totals[models.Calories]; got != 464 {
		t.Errorf("calories = %v, want 464", got)
	}
}

func TestNutritionPreview(t *testing.T) {
	_, router := testEnv(t, "")

	doc := strings.Replace(breadDoc, "- Flour, 100 g", "- Flour, 100 g\n- Saffron, 1 g", 1)
	w := do(t, router, http.MethodPost, "/nutrition/preview", RecipeContentRequest{Content: doc})
	if w.Code != http.StatusOK {
		t.Fatalf("preview = %d, body = %s", w.Code, w.Body.String())
	}
	var resp NutritionResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Complete {
		t.Error("preview with unknown ingredient should be incomplete")
	}
	if len(resp.Nutrition.MissingIngredients) != 1 || resp.Nutrition.MissingIngredients[0] != "Saffron" {
		t.Errorf("missing = %v", resp.Nutrition.MissingIngredients)
	}
}

func TestValidateEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/validate", RecipeContentRequest{Content: breadDoc})
	var ok ValidateResponse
	_ = json.Unmarshal(w.Body.Bytes(), &ok)
	if !ok.Valid || len(ok.Problems) != 0 {
		t.Errorf("valid doc = %+v", ok)
	}

	noCategory := strings.Replace(breadDoc, "Category: Bread\n", "", 1)
	w = do(t, router, http.MethodPost, "/validate", RecipeContentRequest{Content: noCategory})
	var bad ValidateResponse
	_ = json.Unmarshal(w.Body.Bytes(), &bad)
	if bad.Valid || len(bad.Problems) != 1 {
		t.Errorf("missing category = %+v", bad)
	}
}

func TestRenderRecipe(t *testing.T) {
	_, router := testEnv(t, "")
	createRecipe(t, router, breadDoc)

	w := do(t, router, http.MethodGet, "/recipes/bread/html", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("render = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "Bread") {
		t.Errorf("html = %s", w.Body.String())
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createRecipe(t, router, breadDoc)

	w := do(t, router, http.MethodGet, "/search?q=Bread", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d", w.Code)
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) == 0 || resp.Results[0].Slug != "bread" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/search", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestGraphEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createRecipe(t, router, toastDoc)

	w := do(t, router, http.MethodGet, "/graph", nil)
	var resp GraphResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Links) != 1 {
		t.Fatalf("links = %+v", resp.Links)
	}
	if resp.Links[0].Resolved {
		t.Error("link to missing bread should be unresolved")
	}

	createRecipe(t, router, breadDoc)
	w = do(t, router, http.MethodGet, "/graph", nil)
	resp = GraphResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Nodes) != 2 || len(resp.Links) != 1 || !resp.Links[0].Resolved {
		t.Errorf("graph = %+v", resp)
	}
}

func TestShoppingList(t *testing.T) {
	_, router := testEnv(t, "")
	createRecipe(t, router, breadDoc)
	createRecipe(t, router, toastDoc)

	w := do(t, router, http.MethodPost, "/shopping-list", recipeservice.Selection{Recipes: []string{"toast"}, Custom: []string{"Coffee"}})
	if w.Code != http.StatusOK {
		t.Fatalf("shopping list = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ShoppingListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	var names []string
	for _, a := range resp.Aisles {
		names = append(names, a.Name)
	}
	if got := strings.Join(names, ","); got != "Baking,Dairy,Miscellaneous" {
		t.Errorf("aisles = %s", got)
	}
}

func TestShoppingList_UnknownRecipe(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/shopping-list", recipeservice.Selection{Recipes: []string{"ghost"}})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown recipe = %d, want 404", w.Code)
	}
}

func TestQuickBitesRoundTrip(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPut, "/quick-bites", QuickBitesRequest{Content: "# Quick Bites\n## Snacks\n- Buttered Bread: Butter, Bread\n"})
	if w.Code != http.StatusOK {
		t.Fatalf("put quick bites = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/quick-bites", nil)
	var resp QuickBitesResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.QuickBites) != 1 || resp.QuickBites[0].ID != "buttered-bread" {
		t.Fatalf("quick bites = %+v", resp.QuickBites)
	}

	w = do(t, router, http.MethodPost, "/availability", AvailabilityRequest{CheckedOff: []string{"Butter"}})
	var avail AvailabilityResponse
	_ = json.Unmarshal(w.Body.Bytes(), &avail)
	a, ok := avail.Availability["buttered-bread"]
	if !ok || a.Missing != 1 {
		t.Errorf("availability = %+v", avail.Availability)
	}
}

func TestCatalogUpsertAndLabel(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPut, "/catalog/Oats", catalog.Profile{
		BasisGrams: 40,
		Nutrients:  models.Nutrients{models.Calories: 150},
		Aisle:      "Baking",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("upsert = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/catalog/Oats", nil)
	var p catalog.Profile
	_ = json.Unmarshal(w.Body.Bytes(), &p)
	if p.Name != "Oats" || p.BasisGrams != 40 {
		t.Errorf("profile = %+v", p)
	}

	w = do(t, router, http.MethodGet, "/catalog/Oats/label", nil)
	var label LabelResponse
	_ = json.Unmarshal(w.Body.Bytes(), &label)
	if !strings.Contains(label.Text, "Serving size: 40g") || !strings.Contains(label.Text, "150") {
		t.Errorf("label = %q", label.Text)
	}

	w = do(t, router, http.MethodDelete, "/catalog/Oats", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete = %d", w.Code)
	}
	w = do(t, router, http.MethodGet, "/catalog/Oats", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestCatalogUpsert_Invalid(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPut, "/catalog/Oats", catalog.Profile{BasisGrams: -1})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid upsert = %d, want 422", w.Code)
	}
}

func TestParseLabelEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/catalog/label", LabelRequest{
		Name: "Oats",
		Text: "Serving size: 1/2 cup (40g)\nCalories 150\nProtein 5g\n",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("parse label = %d, body = %s", w.Code, w.Body.String())
	}
	var p catalog.Profile
	_ = json.Unmarshal(w.Body.Bytes(), &p)
	if p.BasisGrams != 40 || p.Nutrients[models.Calories] != 150 {
		t.Errorf("profile = %+v", p)
	}

	w = do(t, router, http.MethodPost, "/catalog/label", LabelRequest{Name: "Oats", Text: "Calories 150"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("label without serving size = %d, want 422", w.Code)
	}
}

func TestIngredientsEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createRecipe(t, router, strings.Replace(breadDoc, "- Flour, 100 g", "- Flour, 100 g\n- Saffron, 1 g", 1))

	w := do(t, router, http.MethodGet, "/ingredients", nil)
	var resp IngredientsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Ingredients) != 2 {
		t.Fatalf("ingredients = %+v", resp.Ingredients)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	w := do(t, router, http.MethodPost, "/recipes", RecipeContentRequest{Content: breadDoc}, "Authorization", "Bearer secret123")
	if w.Code != http.StatusCreated {
		t.Errorf("authed create = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	w := do(t, router, http.MethodGet, "/recipes", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	w := do(t, router, http.MethodGet, "/recipes", nil, "Authorization", "Bearer wrong")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/recipes", nil)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	_, router := testEnvFull(t, RouterConfig{RateLimit: 1, RateBurst: 1}, nil)

	if w := do(t, router, http.MethodGet, "/recipes", nil); w.Code != http.StatusOK {
		t.Fatalf("first request = %d", w.Code)
	}
	w := do(t, router, http.MethodGet, "/recipes", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

// SSE endpoint auth tests.

func sseStub() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	_, router := testEnvFull(t, RouterConfig{AuthEnabled: true, Token: "secret"}, sseStub())

	w := do(t, router, http.MethodGet, "/events", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidTokenNotRateLimited(t *testing.T) {
	_, router := testEnvFull(t, RouterConfig{AuthEnabled: true, Token: "tok", RateLimit: 1, RateBurst: 1}, sseStub())

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
		req.Header.Set("Authorization", "Bearer tok")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		cancel()
		if w.Code != http.StatusOK {
			t.Fatalf("SSE attempt %d = %d, want 200", i, w.Code)
		}
	}
}

func TestRequestID(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/recipes", nil)
	if len(w.Header().Get("X-Request-ID")) != 36 {
		t.Errorf("generated request id = %q", w.Header().Get("X-Request-ID"))
	}

	w = do(t, router, http.MethodGet, "/recipes", nil, "X-Request-ID", "abc-123")
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("echoed request id = %q", got)
	}
}
