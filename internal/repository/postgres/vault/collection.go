package vault

import (
	"context"
	"fmt"

	"promptvault/internal/domain/models/vault"
	"promptvault/internal/domain/repositories"
	vaultRepo "promptvault/internal/domain/repositories/vault"
	"promptvault/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCollectionRepository implements the CollectionRepository interface
type PostgresCollectionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewCollectionRepository creates a new collection repository
func NewCollectionRepository(config *postgres.RepositoryConfig) vaultRepo.CollectionRepository {
	return &PostgresCollectionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// viewQuery selects collections with parent name and counts. The caller
// appends the WHERE clause.
func (r *PostgresCollectionRepository) viewQuery() string {
	return fmt.Sprintf(`
		SELECT c.id, c.organization_id, c.name, c.description, c.parent_id, c.created_at, c.updated_at,
			p.name,
			(SELECT COUNT(*) FROM %[2]s pr WHERE pr.collection_id = c.id),
			(SELECT COUNT(*) FROM %[1]s ch WHERE ch.parent_id = c.id)
		FROM %[1]s c
		LEFT JOIN %[1]s p ON p.id = c.parent_id
	`, r.tables.Collections, r.tables.Prompts)
}

func scanCollectionView(row interface{ Scan(...any) error }) (*vault.CollectionView, error) {
	var v vault.CollectionView
	var parentName *string
	err := row.Scan(
		&v.ID,
		&v.OrganizationID,
		&v.Name,
		&v.Description,
		&v.ParentID,
		&v.CreatedAt,
		&v.UpdatedAt,
		&parentName,
		&v.PromptCount,
		&v.ChildrenCount,
	)
	if err != nil {
		return nil, err
	}
	if v.ParentID != nil && parentName != nil {
		v.Parent = &vault.CollectionSummary{ID: *v.ParentID, Name: *parentName}
	}
	return &v, nil
}

// Create inserts a collection and fills its id and timestamps
func (r *PostgresCollectionRepository) Create(ctx context.Context, c *vault.Collection) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (organization_id, parent_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Collections)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		c.OrganizationID,
		c.ParentID,
		c.Name,
		c.Description,
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return postgres.NotFound("parent collection", deref(c.ParentID))
		}
		return fmt.Errorf("create collection: %w", err)
	}

	return nil
}

// GetByID retrieves a collection by id without tenant scoping
func (r *PostgresCollectionRepository) GetByID(ctx context.Context, id string) (*vault.Collection, error) {
	query := fmt.Sprintf(`
		SELECT id, organization_id, name, description, parent_id, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Collections)

	var c vault.Collection
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.OrganizationID,
		&c.Name,
		&c.Description,
		&c.ParentID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.MapLookupError(err, "collection", id)
	}

	return &c, nil
}

func (r *PostgresCollectionRepository) GetView(ctx context.Context, id string) (*vault.CollectionView, error) {
	query := r.viewQuery() + ` WHERE c.id = $1`

	view, err := scanCollectionView(postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, postgres.MapLookupError(err, "collection", id)
	}
	return view, nil
}

// List retrieves every collection of an organization ordered by name
func (r *PostgresCollectionRepository) List(ctx context.Context, organizationID string) ([]vault.CollectionView, error) {
	query := r.viewQuery() + ` WHERE c.organization_id = $1 ORDER BY c.name ASC, c.created_at ASC`

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	collections := []vault.CollectionView{}
	for rows.Next() {
		view, err := scanCollectionView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		collections = append(collections, *view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}

	return collections, nil
}

// Update writes name, description and parent
func (r *PostgresCollectionRepository) Update(ctx context.Context, c *vault.Collection) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, parent_id = $3, updated_at = $4
		WHERE id = $5
	`, r.tables.Collections)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		c.Name,
		c.Description,
		c.ParentID,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return postgres.NotFound("parent collection", deref(c.ParentID))
		}
		return fmt.Errorf("update collection: %w", err)
	}

	if result.RowsAffected() == 0 {
		return postgres.NotFound("collection", c.ID)
	}

	return nil
}

// Delete removes a collection. Referenced collections are rejected by the
// RESTRICT foreign keys.
func (r *PostgresCollectionRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Collections)

	result, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("collection %s is still referenced: %w", id, errConflict)
		}
		return fmt.Errorf("delete collection: %w", err)
	}

	if result.RowsAffected() == 0 {
		return postgres.NotFound("collection", id)
	}

	return nil
}

func (r *PostgresCollectionRepository) Count(ctx context.Context, organizationID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE organization_id = $1`, r.tables.Collections)
	return count(ctx, postgres.GetExecutor(ctx, r.pool), query, organizationID)
}

func (r *PostgresCollectionRepository) CountPrompts(ctx context.Context, id string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE collection_id = $1`, r.tables.Prompts)
	return count(ctx, postgres.GetExecutor(ctx, r.pool), query, id)
}

func (r *PostgresCollectionRepository) CountChildren(ctx context.Context, id string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE parent_id = $1`, r.tables.Collections)
	return count(ctx, postgres.GetExecutor(ctx, r.pool), query, id)
}

// LockTree takes a transaction-scoped advisory lock keyed by the
// organization's collection table and id.
func (r *PostgresCollectionRepository) LockTree(ctx context.Context, organizationID string) error {
	if !repositories.InTx(ctx) {
		return fmt.Errorf("lock collection tree: no transaction in context")
	}

	_, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`,
		r.tables.Collections+":"+organizationID,
	)
	if err != nil {
		return fmt.Errorf("lock collection tree: %w", err)
	}
	return nil
}
