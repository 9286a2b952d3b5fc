package services

import (
	"context"

	"promptvault/internal/domain/models/vault"
)

// ResourceAuthorizer loads a resource by id and checks that it belongs to
// the caller's organization. A missing resource is domain.ErrNotFound; a
// resource of another organization is domain.ErrForbidden.
type ResourceAuthorizer interface {
	CanAccessCollection(ctx context.Context, organizationID, collectionID string) (*vault.Collection, error)

	CanAccessPrompt(ctx context.Context, organizationID, promptID string) (*vault.Prompt, error)

	CanAccessCategory(ctx context.Context, organizationID, categoryID string) (*vault.Category, error)

	CanAccessTag(ctx context.Context, organizationID, tagID string) (*vault.Tag, error)

	CanAccessAPIKey(ctx context.Context, organizationID, keyID string) (*vault.APIKey, error)
}
