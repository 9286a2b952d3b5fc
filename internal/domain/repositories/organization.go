package repositories

import (
	"context"

	"promptvault/internal/domain/models"
)

// OrganizationRepository stores the local tenant records.
type OrganizationRepository interface {
	// GetByTenant finds the organization for a tenant, or domain.ErrNotFound
	GetByTenant(ctx context.Context, tenant models.Tenant) (*models.Organization, error)

	GetByID(ctx context.Context, id string) (*models.Organization, error)

	// Create inserts the organization, or loads the existing row when another
	// request created the same tenant first. Created reports which happened.
	Create(ctx context.Context, org *models.Organization) (created bool, err error)

	// AddMember records a membership; existing memberships are left alone
	AddMember(ctx context.Context, membership *models.Membership) error
}

// UserRepository stores local mirrors of identity-provider users.
type UserRepository interface {
	// Upsert inserts or refreshes the user keyed by ExternalID and fills ID
	Upsert(ctx context.Context, user *models.User) error

	GetByID(ctx context.Context, id string) (*models.User, error)
}
