package vault

import (
	"context"
	"fmt"

	"promptvault/internal/domain/models/vault"
	vaultRepo "promptvault/internal/domain/repositories/vault"
	"promptvault/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresTagRepository implements the TagRepository interface
type PostgresTagRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewTagRepository creates a new tag repository
func NewTagRepository(config *postgres.RepositoryConfig) vaultRepo.TagRepository {
	return &PostgresTagRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const tagColumns = `id, organization_id, name, slug, color, created_at, updated_at`

func scanTag(row interface{ Scan(...any) error }, extra ...any) (*vault.Tag, error) {
	var t vault.Tag
	dest := []any{&t.ID, &t.OrganizationID, &t.Name, &t.Slug, &t.Color, &t.CreatedAt, &t.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a tag. A taken (organization, slug) pair is a conflict.
func (r *PostgresTagRepository) Create(ctx context.Context, tag *vault.Tag) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (organization_id, name, slug, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Tags)

	err := postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		tag.OrganizationID,
		tag.Name,
		tag.Slug,
		tag.Color,
		tag.CreatedAt,
		tag.UpdatedAt,
	).Scan(&tag.ID, &tag.CreatedAt, &tag.UpdatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("tag slug %q already exists: %w", tag.Slug, errConflict)
		}
		return fmt.Errorf("create tag: %w", err)
	}

	return nil
}

func (r *PostgresTagRepository) GetByID(ctx context.Context, id string) (*vault.Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, tagColumns, r.tables.Tags)

	tag, err := scanTag(postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, postgres.MapLookupError(err, "tag", id)
	}
	return tag, nil
}

func (r *PostgresTagRepository) GetBySlug(ctx context.Context, organizationID, slug string) (*vault.Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE organization_id = $1 AND slug = $2`, tagColumns, r.tables.Tags)

	tag, err := scanTag(postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, organizationID, slug))
	if err != nil {
		return nil, postgres.MapLookupError(err, "tag", slug)
	}
	return tag, nil
}

func (r *PostgresTagRepository) List(ctx context.Context, organizationID string) ([]vault.TagView, error) {
	query := fmt.Sprintf(`
		SELECT t.id, t.organization_id, t.name, t.slug, t.color, t.created_at, t.updated_at,
			(SELECT COUNT(*) FROM %s pt WHERE pt.tag_id = t.id)
		FROM %s t
		WHERE t.organization_id = $1
		ORDER BY t.name ASC
	`, r.tables.PromptTags, r.tables.Tags)

	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := []vault.TagView{}
	for rows.Next() {
		var promptCount int
		tag, err := scanTag(rows, &promptCount)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, vault.TagView{Tag: *tag, PromptCount: promptCount})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}

	return tags, nil
}

func (r *PostgresTagRepository) Update(ctx context.Context, tag *vault.Tag) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, slug = $2, color = $3, updated_at = $4
		WHERE id = $5
	`, r.tables.Tags)

	result, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query,
		tag.Name,
		tag.Slug,
		tag.Color,
		tag.UpdatedAt,
		tag.ID,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("tag slug %q already exists: %w", tag.Slug, errConflict)
		}
		return fmt.Errorf("update tag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return postgres.NotFound("tag", tag.ID)
	}

	return nil
}

func (r *PostgresTagRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Tags)

	result, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("tag %s is still attached to prompts: %w", id, errConflict)
		}
		return fmt.Errorf("delete tag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return postgres.NotFound("tag", id)
	}
	return nil
}

func (r *PostgresTagRepository) CountPrompts(ctx context.Context, id string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE tag_id = $1`, r.tables.PromptTags)
	return count(ctx, postgres.GetExecutor(ctx, r.pool), query, id)
}

func (r *PostgresTagRepository) GetByName(ctx context.Context, organizationID, name string) (*vault.Tag, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE organization_id = $1 AND lower(name) = lower($2)
		ORDER BY created_at ASC
		LIMIT 1
	`, tagColumns, r.tables.Tags)

	tag, err := scanTag(postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, organizationID, name))
	if err != nil {
		return nil, postgres.MapLookupError(err, "tag", name)
	}
	return tag, nil
}

func (r *PostgresTagRepository) LinkPrompt(ctx context.Context, promptID, tagID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (prompt_id, tag_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (prompt_id, tag_id) DO NOTHING
	`, r.tables.PromptTags)

	if _, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query, promptID, tagID); err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return postgres.NotFound("tag", tagID)
		}
		return fmt.Errorf("link tag: %w", err)
	}
	return nil
}

func (r *PostgresTagRepository) UnlinkAll(ctx context.Context, promptID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE prompt_id = $1`, r.tables.PromptTags)

	if _, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query, promptID); err != nil {
		return fmt.Errorf("unlink tags: %w", err)
	}
	return nil
}

func (r *PostgresTagRepository) ListForPrompts(ctx context.Context, promptIDs []string) (map[string][]vault.TagSummary, error) {
	result := make(map[string][]vault.TagSummary, len(promptIDs))
	if len(promptIDs) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`
		SELECT pt.prompt_id, t.id, t.name, t.slug, t.color
		FROM %s pt
		JOIN %s t ON t.id = pt.tag_id
		WHERE pt.prompt_id = ANY($1)
		ORDER BY t.name ASC
	`, r.tables.PromptTags, r.tables.Tags)

	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query, promptIDs)
	if err != nil {
		return nil, fmt.Errorf("list prompt tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var promptID string
		var t vault.TagSummary
		if err := rows.Scan(&promptID, &t.ID, &t.Name, &t.Slug, &t.Color); err != nil {
			return nil, fmt.Errorf("scan prompt tag: %w", err)
		}
		result[promptID] = append(result[promptID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prompt tags: %w", err)
	}

	return result, nil
}
