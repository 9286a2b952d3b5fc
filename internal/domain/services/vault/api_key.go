package vault

import (
	"context"

	"promptvault/internal/domain/models"
	"promptvault/internal/domain/models/vault"
)

// APIKeyService issues, lists, revokes and authenticates API keys
type APIKeyService interface {
	// CreateAPIKey returns the only response that carries the full secret
	CreateAPIKey(ctx context.Context, req *CreateAPIKeyRequest) (*CreatedAPIKey, error)

	// ListAPIKeys returns masked keys newest first
	ListAPIKeys(ctx context.Context, organizationID string) ([]vault.APIKeyView, error)

	DeleteAPIKey(ctx context.Context, organizationID, userID, id string) error

	// Authenticate resolves a raw secret to the identity of the user who
	// created the key. Unknown and expired keys are domain.ErrUnauthorized.
	Authenticate(ctx context.Context, secret string) (*models.Identity, error)
}

type CreateAPIKeyRequest struct {
	OrganizationID string  `json:"-"`
	UserID         string  `json:"-"`
	Name           string  `json:"name"`
	ExpiresAt      *string `json:"expires_at"`
}

type CreatedAPIKey struct {
	vault.APIKeyView
	Message string `json:"message"`
}

// ActivityRecorder appends audit entries. It joins the caller's
// transaction when one is open.
type ActivityRecorder interface {
	Record(ctx context.Context, activity *vault.Activity) error
}
