package vault

import (
	"context"

	"promptvault/internal/domain/models/vault"
)

// ActivityRepository appends audit records.
type ActivityRepository interface {
	Create(ctx context.Context, activity *vault.Activity) error
}
