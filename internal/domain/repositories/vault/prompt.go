package vault

import (
	"context"

	"promptvault/internal/domain/models/vault"
)

// PromptRepository defines data access for prompt heads.
type PromptRepository interface {
	Create(ctx context.Context, prompt *vault.Prompt) error

	GetByID(ctx context.Context, id string) (*vault.Prompt, error)

	// GetForUpdate loads the prompt and row-locks it for the surrounding
	// transaction
	GetForUpdate(ctx context.Context, id string) (*vault.Prompt, error)

	Update(ctx context.Context, prompt *vault.Prompt) error

	// Delete removes the prompt; versions, tag links, favorites and
	// comments cascade
	Delete(ctx context.Context, id string) error

	// GetListItem returns the joined view for one prompt, with IsFavorited
	// computed for userID. Tags are not populated.
	GetListItem(ctx context.Context, id, userID string) (*vault.PromptListItem, error)

	// List returns joined views ordered by updated_at DESC. The Tag filter
	// field is ignored; tags are not populated.
	List(ctx context.Context, filter vault.PromptFilter) ([]vault.PromptListItem, error)

	// ListFavorites returns the user's favorited prompts in an organization,
	// most recently favorited first
	ListFavorites(ctx context.Context, organizationID, userID string) ([]vault.FavoritePrompt, error)

	// AdjustFavoriteCount adds delta to favorite_count and returns the new
	// value
	AdjustFavoriteCount(ctx context.Context, id string, delta int) (int, error)
}

// VersionRepository defines data access for the append-only version log.
type VersionRepository interface {
	Create(ctx context.Context, version *vault.PromptVersion) error

	// MaxVersion returns the highest version number, or 0 when none exist
	MaxVersion(ctx context.Context, promptID string) (int, error)

	// ListByPrompt returns versions newest first; limit <= 0 returns all
	ListByPrompt(ctx context.Context, promptID string, limit int) ([]vault.PromptVersion, error)
}

// CommentRepository defines data access for prompt comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *vault.Comment) error

	// ListByPrompt returns comments newest first
	ListByPrompt(ctx context.Context, promptID string) ([]vault.Comment, error)
}

// FavoriteRepository defines data access for (user, prompt) favorites.
type FavoriteRepository interface {
	Exists(ctx context.Context, userID, promptID string) (bool, error)

	Create(ctx context.Context, userID, promptID string) error

	Delete(ctx context.Context, userID, promptID string) error
}
