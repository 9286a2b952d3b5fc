package vault

import (
	"context"
	"fmt"

	"promptvault/internal/domain/models/vault"
	vaultRepo "promptvault/internal/domain/repositories/vault"
	"promptvault/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCategoryRepository implements the CategoryRepository interface
type PostgresCategoryRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(config *postgres.RepositoryConfig) vaultRepo.CategoryRepository {
	return &PostgresCategoryRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const categoryColumns = `id, organization_id, name, slug, description, color, icon, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }, extra ...any) (*vault.Category, error) {
	var c vault.Category
	dest := []any{
		&c.ID,
		&c.OrganizationID,
		&c.Name,
		&c.Slug,
		&c.Description,
		&c.Color,
		&c.Icon,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCategoryRepository) Create(ctx context.Context, c *vault.Category) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (organization_id, name, slug, description, color, icon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Categories)

	err := postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		c.OrganizationID,
		c.Name,
		c.Slug,
		c.Description,
		c.Color,
		c.Icon,
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("category slug %q already exists: %w", c.Slug, errConflict)
		}
		return fmt.Errorf("create category: %w", err)
	}

	return nil
}

func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id string) (*vault.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, categoryColumns, r.tables.Categories)

	c, err := scanCategory(postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, postgres.MapLookupError(err, "category", id)
	}
	return c, nil
}

func (r *PostgresCategoryRepository) GetBySlug(ctx context.Context, organizationID, slug string) (*vault.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE organization_id = $1 AND slug = $2`, categoryColumns, r.tables.Categories)

	c, err := scanCategory(postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, organizationID, slug))
	if err != nil {
		return nil, postgres.MapLookupError(err, "category", slug)
	}
	return c, nil
}

func (r *PostgresCategoryRepository) List(ctx context.Context, organizationID string) ([]vault.CategoryView, error) {
	query := fmt.Sprintf(`
		SELECT c.id, c.organization_id, c.name, c.slug, c.description, c.color, c.icon, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM %s p WHERE p.category_id = c.id)
		FROM %s c
		WHERE c.organization_id = $1
		ORDER BY c.name ASC
	`, r.tables.Prompts, r.tables.Categories)

	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []vault.CategoryView{}
	for rows.Next() {
		var promptCount int
		c, err := scanCategory(rows, &promptCount)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, vault.CategoryView{Category: *c, PromptCount: promptCount})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

func (r *PostgresCategoryRepository) Update(ctx context.Context, c *vault.Category) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, slug = $2, description = $3, color = $4, icon = $5, updated_at = $6
		WHERE id = $7
	`, r.tables.Categories)

	result, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query,
		c.Name,
		c.Slug,
		c.Description,
		c.Color,
		c.Icon,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("category slug %q already exists: %w", c.Slug, errConflict)
		}
		return fmt.Errorf("update category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return postgres.NotFound("category", c.ID)
	}

	return nil
}

func (r *PostgresCategoryRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Categories)

	result, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("category %s still has prompts: %w", id, errConflict)
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return postgres.NotFound("category", id)
	}
	return nil
}

func (r *PostgresCategoryRepository) CountPrompts(ctx context.Context, id string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE category_id = $1`, r.tables.Prompts)
	return count(ctx, postgres.GetExecutor(ctx, r.pool), query, id)
}
