package services

import (
	"context"

	"promptvault/internal/domain/models"
)

// TenantService turns verified credentials into a local Identity, creating
// the user and organization rows on first sight.
type TenantService interface {
	// ResolveSession upserts the user from the claims and finds or creates
	// the claims' tenant
	ResolveSession(ctx context.Context, claims *models.Claims) (*models.Identity, error)

	GetOrganization(ctx context.Context, id string) (*models.Organization, error)

	GetUser(ctx context.Context, id string) (*models.User, error)
}

// OrganizationDirectory looks up display names at the identity provider.
type OrganizationDirectory interface {
	OrganizationName(ctx context.Context, externalID string) (string, error)
}
