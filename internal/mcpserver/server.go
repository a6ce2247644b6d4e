// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Larder tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/larder/internal/recipeservice"
)

const contractURI = "larder://recipe-format"

// Server wraps the MCP server with Larder tools.
type Server struct {
	mcp *server.MCPServer
	svc *recipeservice.Service
}

// New creates a new MCP server with all Larder tools registered.
func New(svc *recipeservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Larder",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_recipes",
		mcp.WithDescription("Full-text search through recipe titles, bodies and ingredients."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchRecipes)

	s.mcp.AddTool(mcp.NewTool("list_recipes",
		mcp.WithDescription("List recipes, optionally in one category."),
		mcp.WithString("category", mcp.Description("Optional category filter")),
	), s.listRecipes)

	s.mcp.AddTool(mcp.NewTool("get_recipe",
		mcp.WithDescription("Read the Markdown source of a recipe."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Recipe slug (e.g. toasted-bread)")),
	), s.getRecipe)

	s.mcp.AddTool(mcp.NewTool("create_recipe",
		mcp.WithDescription("Create a new recipe. The file name is derived from the title. "+
			"Content MUST follow the recipe format contract. Read it first via "+
			"the get_recipe_contract tool or the "+contractURI+" resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Recipe Markdown")),
	), s.createRecipe)

	s.mcp.AddTool(mcp.NewTool("update_recipe",
		mcp.WithDescription("Replace the content of an existing recipe. Changing the title renames it."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Current recipe slug")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Recipe Markdown")),
	), s.updateRecipe)

	s.mcp.AddTool(mcp.NewTool("validate_recipe",
		mcp.WithDescription("Check recipe Markdown without saving it."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Recipe Markdown")),
	), s.validateRecipe)

	s.mcp.AddTool(mcp.NewTool("recipe_nutrition",
		mcp.WithDescription("Nutrition facts for a recipe, with cross-references expanded."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Recipe slug")),
	), s.recipeNutrition)

	s.mcp.AddTool(mcp.NewTool("shopping_list",
		mcp.WithDescription("Build an aisle-grouped shopping list."),
		mcp.WithArray("recipes", mcp.Description("Recipe slugs"), mcp.WithStringItems()),
		mcp.WithArray("quick_bites", mcp.Description("Quick bite IDs"), mcp.WithStringItems()),
		mcp.WithArray("custom", mcp.Description("Extra free-text items"), mcp.WithStringItems()),
	), s.shoppingList)

	s.mcp.AddTool(mcp.NewTool("list_catalog",
		mcp.WithDescription("List ingredient names known to the nutrition catalog."),
	), s.listCatalog)

	s.mcp.AddTool(mcp.NewTool("parse_label",
		mcp.WithDescription("Parse nutrition-label text into a catalog profile (not saved)."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Ingredient name")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Label text starting with 'Serving size:'")),
	), s.parseLabel)

	s.mcp.AddTool(mcp.NewTool("get_recipe_contract",
		mcp.WithDescription("Returns the recipe format contract. "+
			"Call this before creating or updating recipes to ensure correct structure."),
	), s.getRecipeContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Recipe Format Contract",
			mcp.WithResourceDescription("Markdown recipe format that all recipes must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchRecipes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) listRecipes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, _, err := s.svc.ListRecipes(ctx, 500, 0, req.GetString("category", ""), "title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s", it.Slug, it.Title, it.Category))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getRecipe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.GetRecipe(ctx, slug)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
	}
	return mcp.NewToolResultText(d.Content), nil
}

func (s *Server) createRecipe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.CreateRecipe(ctx, []byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", d.Slug)), nil
}

func (s *Server) updateRecipe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.UpdateRecipe(ctx, slug, []byte(content), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s", d.Slug)), nil
}

func (s *Server) validateRecipe(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	problems := s.svc.Validate(content)
	if len(problems) == 0 {
		return mcp.NewToolResultText("valid"), nil
	}
	return mcp.NewToolResultError(strings.Join(problems, "\n")), nil
}

func (s *Server) recipeNutrition(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Nutrition(ctx, slug)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) shoppingList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	aisles, err := s.svc.ShoppingList(ctx, recipeservice.Selection{
		Recipes:    req.GetStringSlice("recipes", nil),
		QuickBites: req.GetStringSlice("quick_bites", nil),
		Custom:     req.GetStringSlice("custom", nil),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(aisles)
}

func (s *Server) listCatalog(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries := s.svc.CatalogEntries(ctx)
	names := make([]string, 0, len(entries))
	for _, p := range entries {
		names = append(names, p.Name)
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) parseLabel(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.ParseLabel(name, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(p)
}

func (s *Server) getRecipeContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RecipeFormatContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     RecipeFormatContract,
		},
	}, nil
}
