package vault

import (
	"context"
	"fmt"

	"promptvault/internal/domain/models/vault"
	vaultRepo "promptvault/internal/domain/repositories/vault"
	"promptvault/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresActivityRepository implements the ActivityRepository interface
type PostgresActivityRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(config *postgres.RepositoryConfig) vaultRepo.ActivityRepository {
	return &PostgresActivityRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create appends an activity row. Metadata is stored as JSONB.
func (r *PostgresActivityRepository) Create(ctx context.Context, a *vault.Activity) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (organization_id, user_id, action, entity_type, entity_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, r.tables.Activities)

	metadata := a.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	err := postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		a.OrganizationID,
		nullIfEmpty(a.UserID),
		a.Action,
		a.EntityType,
		a.EntityID,
		metadata,
		a.CreatedAt,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("record activity %s: %w", a.Action, err)
	}

	return nil
}
