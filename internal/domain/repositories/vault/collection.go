package vault

import (
	"context"

	"promptvault/internal/domain/models/vault"
)

// CollectionRepository defines data access for the collection forest.
// Lookups by id are not tenant-scoped; callers check OrganizationID.
type CollectionRepository interface {
	Create(ctx context.Context, collection *vault.Collection) error

	GetByID(ctx context.Context, id string) (*vault.Collection, error)

	// GetView returns the collection with parent summary and counts
	GetView(ctx context.Context, id string) (*vault.CollectionView, error)

	// List returns every collection of an organization ordered by name
	List(ctx context.Context, organizationID string) ([]vault.CollectionView, error)

	Update(ctx context.Context, collection *vault.Collection) error

	Delete(ctx context.Context, id string) error

	// Count returns the number of collections in an organization
	Count(ctx context.Context, organizationID string) (int, error)

	CountPrompts(ctx context.Context, id string) (int, error)

	CountChildren(ctx context.Context, id string) (int, error)

	// LockTree serializes tree mutations for an organization until the
	// surrounding transaction ends. Must be called inside a transaction.
	LockTree(ctx context.Context, organizationID string) error
}
