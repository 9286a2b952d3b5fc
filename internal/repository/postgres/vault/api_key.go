package vault

import (
	"context"
	"fmt"
	"time"

	"promptvault/internal/domain/models/vault"
	vaultRepo "promptvault/internal/domain/repositories/vault"
	"promptvault/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAPIKeyRepository implements the APIKeyRepository interface
type PostgresAPIKeyRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewAPIKeyRepository creates a new API key repository
func NewAPIKeyRepository(config *postgres.RepositoryConfig) vaultRepo.APIKeyRepository {
	return &PostgresAPIKeyRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const apiKeyColumns = `id, organization_id, created_by_id, name, key, expires_at, last_used_at, created_at`

func scanAPIKey(row interface{ Scan(...any) error }) (*vault.APIKey, error) {
	var k vault.APIKey
	err := row.Scan(
		&k.ID,
		&k.OrganizationID,
		&k.CreatedByID,
		&k.Name,
		&k.Key,
		&k.ExpiresAt,
		&k.LastUsedAt,
		&k.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *PostgresAPIKeyRepository) Create(ctx context.Context, k *vault.APIKey) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (organization_id, created_by_id, name, key, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, r.tables.APIKeys)

	err := postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		k.OrganizationID,
		k.CreatedByID,
		k.Name,
		k.Key,
		k.ExpiresAt,
		k.CreatedAt,
	).Scan(&k.ID, &k.CreatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("api key collision: %w", errConflict)
		}
		return fmt.Errorf("create api key: %w", err)
	}

	return nil
}

func (r *PostgresAPIKeyRepository) GetByID(ctx context.Context, id string) (*vault.APIKey, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, apiKeyColumns, r.tables.APIKeys)

	k, err := scanAPIKey(postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, postgres.MapLookupError(err, "api key", id)
	}
	return k, nil
}

func (r *PostgresAPIKeyRepository) GetByKey(ctx context.Context, secret string) (*vault.APIKey, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE key = $1`, apiKeyColumns, r.tables.APIKeys)

	k, err := scanAPIKey(postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, secret))
	if err != nil {
		// never echo the secret
		return nil, postgres.MapLookupError(err, "api key", vault.MaskSecret(secret))
	}
	return k, nil
}

func (r *PostgresAPIKeyRepository) List(ctx context.Context, organizationID string) ([]vault.APIKey, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE organization_id = $1
		ORDER BY created_at DESC
	`, apiKeyColumns, r.tables.APIKeys)

	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	keys := []vault.APIKey{}
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, *k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api keys: %w", err)
	}

	return keys, nil
}

func (r *PostgresAPIKeyRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.APIKeys)

	result, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	if result.RowsAffected() == 0 {
		return postgres.NotFound("api key", id)
	}
	return nil
}

func (r *PostgresAPIKeyRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET last_used_at = $1 WHERE id = $2`, r.tables.APIKeys)

	if _, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query, at, id); err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}
	return nil
}
