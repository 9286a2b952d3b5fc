package handler

import (
	"log/slog"
	"net/http"

	"promptvault/internal/domain/services"
	vaultSvc "promptvault/internal/domain/services/vault"
)

// Services is everything the HTTP surface calls into.
type Services struct {
	Tenants     services.TenantService
	Categories  vaultSvc.CategoryService
	Collections vaultSvc.CollectionService
	Tags        vaultSvc.TagService
	Prompts     vaultSvc.PromptService
	Comments    vaultSvc.CommentService
	Favorites   vaultSvc.FavoriteService
	APIKeys     vaultSvc.APIKeyService
}

// NewRouter registers every route on a fresh mux. debug exposes the
// underlying error on 500 responses.
func NewRouter(svc Services, logger *slog.Logger, debug bool) *http.ServeMux {
	accountHandler := NewAccountHandler(svc.Tenants, logger, debug)
	categoryHandler := NewCategoryHandler(svc.Categories, logger, debug)
	collectionHandler := NewCollectionHandler(svc.Collections, logger, debug)
	tagHandler := NewTagHandler(svc.Tags, logger, debug)
	promptHandler := NewPromptHandler(svc.Prompts, svc.Comments, svc.Favorites, logger, debug)
	apiKeyHandler := NewAPIKeyHandler(svc.APIKeys, logger, debug)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", accountHandler.HealthCheck)
	mux.HandleFunc("GET /api/me", accountHandler.Me)

	// Categories
	mux.HandleFunc("GET /api/categories", categoryHandler.ListCategories)
	mux.HandleFunc("POST /api/categories", categoryHandler.CreateCategory)
	mux.HandleFunc("GET /api/categories/{id}", categoryHandler.GetCategory)
	mux.HandleFunc("PUT /api/categories/{id}", categoryHandler.UpdateCategory)
	mux.HandleFunc("PATCH /api/categories/{id}", categoryHandler.UpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", categoryHandler.DeleteCategory)

	// Collections
	mux.HandleFunc("GET /api/collections", collectionHandler.ListCollections)
	mux.HandleFunc("POST /api/collections", collectionHandler.CreateCollection)
	mux.HandleFunc("GET /api/collections/tree", collectionHandler.GetTree) // more specific than {id}
	mux.HandleFunc("GET /api/collections/{id}", collectionHandler.GetCollection)
	mux.HandleFunc("PUT /api/collections/{id}", collectionHandler.UpdateCollection)
	mux.HandleFunc("PATCH /api/collections/{id}", collectionHandler.UpdateCollection)
	mux.HandleFunc("DELETE /api/collections/{id}", collectionHandler.DeleteCollection)

	// Tags
	mux.HandleFunc("GET /api/tags", tagHandler.ListTags)
	mux.HandleFunc("POST /api/tags", tagHandler.CreateTag)
	mux.HandleFunc("GET /api/tags/{id}", tagHandler.GetTag)
	mux.HandleFunc("PUT /api/tags/{id}", tagHandler.UpdateTag)
	mux.HandleFunc("PATCH /api/tags/{id}", tagHandler.UpdateTag)
	mux.HandleFunc("DELETE /api/tags/{id}", tagHandler.DeleteTag)

	// Prompts
	mux.HandleFunc("GET /api/prompts", promptHandler.ListPrompts)
	mux.HandleFunc("POST /api/prompts", promptHandler.CreatePrompt)
	mux.HandleFunc("GET /api/prompts/{id}", promptHandler.GetPrompt)
	mux.HandleFunc("PUT /api/prompts/{id}", promptHandler.UpdatePrompt)
	mux.HandleFunc("PATCH /api/prompts/{id}", promptHandler.UpdatePrompt)
	mux.HandleFunc("DELETE /api/prompts/{id}", promptHandler.DeletePrompt)
	mux.HandleFunc("GET /api/prompts/{id}/versions", promptHandler.ListVersions)
	mux.HandleFunc("GET /api/prompts/{id}/comments", promptHandler.ListComments)
	mux.HandleFunc("POST /api/prompts/{id}/comments", promptHandler.AddComment)
	mux.HandleFunc("POST /api/prompts/{id}/favorite", promptHandler.ToggleFavorite)
	mux.HandleFunc("GET /api/favorites", promptHandler.ListFavorites)

	// API keys
	mux.HandleFunc("GET /api/api-keys", apiKeyHandler.ListAPIKeys)
	mux.HandleFunc("POST /api/api-keys", apiKeyHandler.CreateAPIKey)
	mux.HandleFunc("DELETE /api/api-keys/{id}", apiKeyHandler.DeleteAPIKey)

	return mux
}
