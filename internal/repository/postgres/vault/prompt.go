package vault

import (
	"context"
	"fmt"
	"strings"

	"promptvault/internal/domain/models"
	"promptvault/internal/domain/models/vault"
	vaultRepo "promptvault/internal/domain/repositories/vault"
	"promptvault/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPromptRepository implements the PromptRepository interface
type PostgresPromptRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewPromptRepository creates a new prompt repository
func NewPromptRepository(config *postgres.RepositoryConfig) vaultRepo.PromptRepository {
	return &PostgresPromptRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const promptColumns = `p.id, p.organization_id, p.author_id, p.category_id, p.collection_id, p.title,
	p.description, p.content, p.variables, p.status, p.visibility, p.favorite_count, p.created_at, p.updated_at`

func scanPrompt(row interface{ Scan(...any) error }) (*vault.Prompt, error) {
	var p vault.Prompt
	err := row.Scan(
		&p.ID,
		&p.OrganizationID,
		&p.AuthorID,
		&p.CategoryID,
		&p.CollectionID,
		&p.Title,
		&p.Description,
		&p.Content,
		&p.Variables,
		&p.Status,
		&p.Visibility,
		&p.FavoriteCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// listSelect joins author, category, collection and counters. userParam is
// the placeholder holding the viewer's user id (NULL for none).
func (r *PostgresPromptRepository) listSelect(userParam string) string {
	return fmt.Sprintf(`
		SELECT %s,
			u.id, u.email, u.first_name, u.last_name,
			cat.id, cat.name, cat.color,
			col.id, col.name,
			(SELECT COUNT(*) FROM %s v WHERE v.prompt_id = p.id),
			(SELECT COUNT(*) FROM %s cm WHERE cm.prompt_id = p.id),
			EXISTS (SELECT 1 FROM %s f WHERE f.prompt_id = p.id AND f.user_id = %s)
		FROM %s p
		JOIN %s u ON u.id = p.author_id
		LEFT JOIN %s cat ON cat.id = p.category_id
		LEFT JOIN %s col ON col.id = p.collection_id
	`, promptColumns,
		r.tables.Versions,
		r.tables.Comments,
		r.tables.Favorites, userParam,
		r.tables.Prompts,
		r.tables.Users,
		r.tables.Categories,
		r.tables.Collections,
	)
}

func scanListItem(row interface{ Scan(...any) error }, extra ...any) (*vault.PromptListItem, error) {
	var (
		item                  vault.PromptListItem
		firstName, lastName   *string
		catID, catName        *string
		catColor              *string
		collectionID, colName *string
	)
	dest := []any{
		&item.ID,
		&item.OrganizationID,
		&item.AuthorID,
		&item.CategoryID,
		&item.CollectionID,
		&item.Title,
		&item.Description,
		&item.Content,
		&item.Variables,
		&item.Status,
		&item.Visibility,
		&item.FavoriteCount,
		&item.CreatedAt,
		&item.UpdatedAt,
		&item.Author.ID,
		&item.Author.Email,
		&firstName,
		&lastName,
		&catID,
		&catName,
		&catColor,
		&collectionID,
		&colName,
		&item.VersionCount,
		&item.CommentCount,
		&item.IsFavorited,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	item.Author.Name = models.DisplayName(firstName, lastName, item.Author.Email)
	if catID != nil {
		item.Category = &vault.CategorySummary{ID: *catID, Name: deref(catName), Color: catColor}
	}
	if collectionID != nil {
		item.Collection = &vault.CollectionSummary{ID: *collectionID, Name: deref(colName)}
	}
	item.Tags = []vault.TagSummary{}
	return &item, nil
}

// Create inserts a prompt and fills its id and timestamps
func (r *PostgresPromptRepository) Create(ctx context.Context, p *vault.Prompt) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (organization_id, author_id, category_id, collection_id, title, description,
			content, variables, status, visibility, favorite_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`, r.tables.Prompts)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		p.OrganizationID,
		p.AuthorID,
		p.CategoryID,
		p.CollectionID,
		p.Title,
		p.Description,
		p.Content,
		p.Variables,
		p.Status,
		p.Visibility,
		p.FavoriteCount,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("prompt references a missing category, collection or author: %w", errNotFound)
		}
		return fmt.Errorf("create prompt: %w", err)
	}

	return nil
}

// GetByID retrieves a prompt by id without tenant scoping
func (r *PostgresPromptRepository) GetByID(ctx context.Context, id string) (*vault.Prompt, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s p WHERE p.id = $1`, promptColumns, r.tables.Prompts)

	p, err := scanPrompt(postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, postgres.MapLookupError(err, "prompt", id)
	}
	return p, nil
}

// GetForUpdate retrieves a prompt and holds its row lock until the
// surrounding transaction ends
func (r *PostgresPromptRepository) GetForUpdate(ctx context.Context, id string) (*vault.Prompt, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s p WHERE p.id = $1 FOR UPDATE`, promptColumns, r.tables.Prompts)

	p, err := scanPrompt(postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, postgres.MapLookupError(err, "prompt", id)
	}
	return p, nil
}

// Update writes every mutable column of the prompt head
func (r *PostgresPromptRepository) Update(ctx context.Context, p *vault.Prompt) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, description = $2, content = $3, variables = $4, status = $5,
			visibility = $6, category_id = $7, collection_id = $8, updated_at = $9
		WHERE id = $10
		RETURNING favorite_count
	`, r.tables.Prompts)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		p.Title,
		p.Description,
		p.Content,
		p.Variables,
		p.Status,
		p.Visibility,
		p.CategoryID,
		p.CollectionID,
		p.UpdatedAt,
		p.ID,
	).Scan(&p.FavoriteCount)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return postgres.NotFound("prompt", p.ID)
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("prompt references a missing category or collection: %w", errNotFound)
		}
		return fmt.Errorf("update prompt: %w", err)
	}

	return nil
}

// Delete removes a prompt and, through cascades, its dependents
func (r *PostgresPromptRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Prompts)

	result, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}
	if result.RowsAffected() == 0 {
		return postgres.NotFound("prompt", id)
	}
	return nil
}

func (r *PostgresPromptRepository) GetListItem(ctx context.Context, id, userID string) (*vault.PromptListItem, error) {
	query := r.listSelect("$2") + ` WHERE p.id = $1`

	item, err := scanListItem(postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, nullIfEmpty(userID)))
	if err != nil {
		return nil, postgres.MapLookupError(err, "prompt", id)
	}
	return item, nil
}

// List retrieves prompts matching the filter, newest update first
func (r *PostgresPromptRepository) List(ctx context.Context, filter vault.PromptFilter) ([]vault.PromptListItem, error) {
	args := []any{filter.OrganizationID, nullIfEmpty(filter.UserID)}
	conditions := []string{"p.organization_id = $1"}

	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(p.title ILIKE $%[1]d OR p.description ILIKE $%[1]d OR p.content ILIKE $%[1]d)", n))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if filter.CollectionID != "" {
		args = append(args, filter.CollectionID)
		conditions = append(conditions, fmt.Sprintf("p.collection_id = $%d", len(args)))
	}

	query := r.listSelect("$2") +
		" WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY p.updated_at DESC"

	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		if postgres.IsPgInvalidInputError(err) {
			return []vault.PromptListItem{}, nil
		}
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	prompts := []vault.PromptListItem{}
	for rows.Next() {
		item, err := scanListItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		prompts = append(prompts, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prompts: %w", err)
	}

	return prompts, nil
}

func (r *PostgresPromptRepository) ListFavorites(ctx context.Context, organizationID, userID string) ([]vault.FavoritePrompt, error) {
	query := strings.Replace(r.listSelect("$2"), "SELECT", "SELECT fav.created_at,", 1) +
		fmt.Sprintf(` JOIN %s fav ON fav.prompt_id = p.id AND fav.user_id = $2`, r.tables.Favorites) +
		` WHERE p.organization_id = $1 ORDER BY fav.created_at DESC`

	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query, organizationID, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []vault.FavoritePrompt{}
	for rows.Next() {
		var fav vault.FavoritePrompt
		item, err := scanListItem(prependScanner{row: rows, first: &fav.FavoritedAt})
		if err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		fav.PromptListItem = *item
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}

	return favorites, nil
}

// AdjustFavoriteCount applies delta under the row lock of the UPDATE
func (r *PostgresPromptRepository) AdjustFavoriteCount(ctx context.Context, id string, delta int) (int, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET favorite_count = GREATEST(favorite_count + $1, 0)
		WHERE id = $2
		RETURNING favorite_count
	`, r.tables.Prompts)

	var n int
	err := postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, delta, id).Scan(&n)
	if err != nil {
		return 0, postgres.MapLookupError(err, "prompt", id)
	}
	return n, nil
}

// prependScanner scans one leading column into first and the rest into
// the caller's destinations.
type prependScanner struct {
	row   interface{ Scan(...any) error }
	first any
}

func (s prependScanner) Scan(dest ...any) error {
	return s.row.Scan(append([]any{s.first}, dest...)...)
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
