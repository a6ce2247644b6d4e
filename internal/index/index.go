package index

import "github.com/starford/larder/internal/models"

// RecipeIndex defines the interface for recipe indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type RecipeIndex interface {
	UpsertRecipe(row RecipeRow, r *models.Recipe, body string) error
	DeleteByPath(path string) (string, error)
	GetChecksum(path string) (string, error)
	GetRecipe(slug string) (*RecipeRow, error)
	ListRecipes(limit, offset int, category, sort string) ([]RecipeRow, int, error)
	Categories() ([]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Graph() ([]GraphNode, []GraphEdge, error)
	Dependents(slug string) ([]string, error)
	TransitiveDependents(slug string) ([]string, error)
	CrossReferences(slug string) ([]models.CrossReference, error)
	Ingredients() ([]IngredientUsage, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)

	GetNutrition(slug string) (*CachedNutrition, error)
	PutNutrition(slug, recipeChecksum, catalogChecksum string, res models.NutritionResult) error
	InvalidateNutrition(slugs ...string) error
	InvalidateAllNutrition() error

	Close() error
}

// Verify *DB satisfies RecipeIndex at compile time.
var _ RecipeIndex = (*DB)(nil)
