package vault

import (
	"context"

	"promptvault/internal/domain/models/vault"
)

// TagRepository defines data access for tags and prompt-tag links.
type TagRepository interface {
	Create(ctx context.Context, tag *vault.Tag) error

	GetByID(ctx context.Context, id string) (*vault.Tag, error)

	GetBySlug(ctx context.Context, organizationID, slug string) (*vault.Tag, error)

	// List returns tags ordered by name with prompt counts
	List(ctx context.Context, organizationID string) ([]vault.TagView, error)

	Update(ctx context.Context, tag *vault.Tag) error

	Delete(ctx context.Context, id string) error

	CountPrompts(ctx context.Context, id string) (int, error)

	// GetByName matches name case-insensitively within the organization
	GetByName(ctx context.Context, organizationID, name string) (*vault.Tag, error)

	// LinkPrompt attaches a tag to a prompt; existing links are kept
	LinkPrompt(ctx context.Context, promptID, tagID string) error

	// UnlinkAll removes every tag link of a prompt
	UnlinkAll(ctx context.Context, promptID string) error

	// ListForPrompts returns tag summaries grouped by prompt id
	ListForPrompts(ctx context.Context, promptIDs []string) (map[string][]vault.TagSummary, error)
}

// CategoryRepository defines data access for categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *vault.Category) error

	GetByID(ctx context.Context, id string) (*vault.Category, error)

	GetBySlug(ctx context.Context, organizationID, slug string) (*vault.Category, error)

	// List returns categories ordered by name with prompt counts
	List(ctx context.Context, organizationID string) ([]vault.CategoryView, error)

	Update(ctx context.Context, category *vault.Category) error

	Delete(ctx context.Context, id string) error

	CountPrompts(ctx context.Context, id string) (int, error)
}
