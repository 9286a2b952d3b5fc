package vault

import (
	"context"

	"promptvault/internal/domain/models"
	"promptvault/internal/domain/models/vault"
)

// CollectionService manages the collection forest
type CollectionService interface {
	CreateCollection(ctx context.Context, req *CreateCollectionRequest) (*vault.CollectionView, error)

	// GetCollection returns one node; includeDescendants fills DescendantIDs
	GetCollection(ctx context.Context, organizationID, id string, includeDescendants bool) (*vault.CollectionView, error)

	// ListCollections returns the flat forest ordered by name
	ListCollections(ctx context.Context, organizationID string) ([]vault.CollectionView, error)

	// GetTree returns the forest nested under its roots
	GetTree(ctx context.Context, organizationID string) ([]*vault.CollectionTreeNode, error)

	// UpdateCollection renames or re-parents a collection, rejecting cycles
	UpdateCollection(ctx context.Context, id string, req *UpdateCollectionRequest) (*vault.CollectionView, error)

	// DeleteCollection removes a collection with no prompts and no children
	DeleteCollection(ctx context.Context, organizationID, userID, id string) error
}

type CreateCollectionRequest struct {
	OrganizationID string  `json:"-"`
	UserID         string  `json:"-"`
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	ParentID       *string `json:"parent_id"`
}

type UpdateCollectionRequest struct {
	OrganizationID string
	UserID         string
	Name           string
	Description    models.OptionalString
	ParentID       models.OptionalString
}
