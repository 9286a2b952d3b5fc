package vault

import (
	"context"

	"promptvault/internal/domain/models"
	"promptvault/internal/domain/models/vault"
)

const (
	InitialVersionNote = "Initial version"
	DefaultChangeNote  = "Updated via API"
)

// PromptService owns the prompt aggregate and its version history
type PromptService interface {
	// CreatePrompt stores a DRAFT prompt with version 1 and its tags
	CreatePrompt(ctx context.Context, req *CreatePromptRequest) (*vault.PromptDetail, error)

	// GetPrompt returns the prompt with recent versions and comments
	GetPrompt(ctx context.Context, organizationID, userID, id string) (*vault.PromptDetail, error)

	ListPrompts(ctx context.Context, filter vault.PromptFilter) ([]vault.PromptListItem, error)

	// UpdatePrompt applies a partial update, appending a version when the
	// content changes
	UpdatePrompt(ctx context.Context, id string, req *UpdatePromptRequest) (*vault.PromptDetail, error)

	DeletePrompt(ctx context.Context, organizationID, userID, id string) error

	// ListVersions returns the full history newest first
	ListVersions(ctx context.Context, organizationID, id string) ([]vault.PromptVersion, error)
}

type CreatePromptRequest struct {
	OrganizationID string   `json:"-"`
	UserID         string   `json:"-"`
	Title          string   `json:"title"`
	Description    *string  `json:"description"`
	Content        string   `json:"content"`
	Variables      []string `json:"variables"`
	CategoryID     *string  `json:"category_id"`
	CollectionID   *string  `json:"collection_id"`
	Visibility     *string  `json:"visibility"`
	Tags           []string `json:"tags"`
}

// UpdatePromptRequest is a partial update. Nil pointers and absent
// optionals leave the field unchanged. A non-nil Tags replaces the whole
// tag set.
type UpdatePromptRequest struct {
	OrganizationID string
	UserID         string
	Title          *string
	Description    models.OptionalString
	Content        *string
	Variables      *[]string
	Status         *string
	Visibility     *string
	CategoryID     models.OptionalString
	CollectionID   models.OptionalString
	Tags           *[]string
	ChangeNote     *string
}

// FavoriteService toggles and lists per-user favorites
type FavoriteService interface {
	// ToggleFavorite flips the (user, prompt) favorite atomically
	ToggleFavorite(ctx context.Context, organizationID, userID, promptID string) (*vault.FavoriteState, error)

	ListFavorites(ctx context.Context, organizationID, userID string) ([]vault.FavoritePrompt, error)
}

// CommentService appends and lists prompt comments
type CommentService interface {
	AddComment(ctx context.Context, req *AddCommentRequest) (*vault.Comment, error)

	ListComments(ctx context.Context, organizationID, promptID string) ([]vault.Comment, error)
}

type AddCommentRequest struct {
	OrganizationID string `json:"-"`
	UserID         string `json:"-"`
	PromptID       string `json:"-"`
	Content        string `json:"content"`
}
