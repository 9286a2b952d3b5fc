package vault

import (
	"context"
	"time"

	"promptvault/internal/domain/models/vault"
)

// APIKeyRepository defines data access for API keys.
type APIKeyRepository interface {
	Create(ctx context.Context, key *vault.APIKey) error

	GetByID(ctx context.Context, id string) (*vault.APIKey, error)

	// GetByKey looks a key up by its raw secret
	GetByKey(ctx context.Context, secret string) (*vault.APIKey, error)

	// List returns keys newest first
	List(ctx context.Context, organizationID string) ([]vault.APIKey, error)

	Delete(ctx context.Context, id string) error

	TouchLastUsed(ctx context.Context, id string, at time.Time) error
}
