package vault

import (
	"context"

	"promptvault/internal/domain/models"
	"promptvault/internal/domain/models/vault"
)

// TagService manages organization tags
type TagService interface {
	CreateTag(ctx context.Context, req *CreateTagRequest) (*vault.Tag, error)
	GetTag(ctx context.Context, organizationID, id string) (*vault.Tag, error)
	ListTags(ctx context.Context, organizationID string) ([]vault.TagView, error)
	UpdateTag(ctx context.Context, id string, req *UpdateTagRequest) (*vault.Tag, error)

	// DeleteTag fails with a conflict while any prompt references the tag
	DeleteTag(ctx context.Context, organizationID, userID, id string) error

	// ResolveTags maps names to tags, creating missing ones. Blank names are
	// skipped and names with the same slug resolve to one tag.
	ResolveTags(ctx context.Context, organizationID string, names []string) ([]vault.Tag, error)
}

type CreateTagRequest struct {
	OrganizationID string  `json:"-"`
	UserID         string  `json:"-"`
	Name           string  `json:"name"`
	Color          *string `json:"color"`
}

type UpdateTagRequest struct {
	OrganizationID string
	UserID         string
	Name           *string
	Color          models.OptionalString
}

// CategoryService manages organization categories
type CategoryService interface {
	CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*vault.Category, error)
	GetCategory(ctx context.Context, organizationID, id string) (*vault.Category, error)
	ListCategories(ctx context.Context, organizationID string) ([]vault.CategoryView, error)
	UpdateCategory(ctx context.Context, id string, req *UpdateCategoryRequest) (*vault.Category, error)

	// DeleteCategory fails with a conflict while any prompt references it
	DeleteCategory(ctx context.Context, organizationID, userID, id string) error
}

type CreateCategoryRequest struct {
	OrganizationID string  `json:"-"`
	UserID         string  `json:"-"`
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	Color          *string `json:"color"`
	Icon           *string `json:"icon"`
}

type UpdateCategoryRequest struct {
	OrganizationID string
	UserID         string
	Name           *string
	Description    models.OptionalString
	Color          models.OptionalString
	Icon           models.OptionalString
}
