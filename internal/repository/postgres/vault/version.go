package vault

import (
	"context"
	"fmt"

	"promptvault/internal/domain/models"
	"promptvault/internal/domain/models/vault"
	vaultRepo "promptvault/internal/domain/repositories/vault"
	"promptvault/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresVersionRepository implements the VersionRepository interface
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewVersionRepository creates a new prompt version repository
func NewVersionRepository(config *postgres.RepositoryConfig) vaultRepo.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func (r *PostgresVersionRepository) Create(ctx context.Context, v *vault.PromptVersion) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (prompt_id, version, content, variables, change_description, created_by_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, r.tables.Versions)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		v.PromptID,
		v.Version,
		v.Content,
		v.Variables,
		v.ChangeDescription,
		v.CreatedByID,
		v.CreatedAt,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("version %d of prompt %s already exists: %w", v.Version, v.PromptID, errConflict)
		}
		return fmt.Errorf("create prompt version: %w", err)
	}

	return nil
}

func (r *PostgresVersionRepository) MaxVersion(ctx context.Context, promptID string) (int, error) {
	query := fmt.Sprintf(`SELECT COALESCE(MAX(version), 0) FROM %s WHERE prompt_id = $1`, r.tables.Versions)
	return count(ctx, postgres.GetExecutor(ctx, r.pool), query, promptID)
}

func (r *PostgresVersionRepository) ListByPrompt(ctx context.Context, promptID string, limit int) ([]vault.PromptVersion, error) {
	query := fmt.Sprintf(`
		SELECT v.id, v.prompt_id, v.version, v.content, v.variables, v.change_description,
			v.created_by_id, v.created_at, u.email, u.first_name, u.last_name
		FROM %s v
		LEFT JOIN %s u ON u.id = v.created_by_id
		WHERE v.prompt_id = $1
		ORDER BY v.version DESC
	`, r.tables.Versions, r.tables.Users)

	args := []any{promptID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list prompt versions: %w", err)
	}
	defer rows.Close()

	versions := []vault.PromptVersion{}
	for rows.Next() {
		var (
			v                   vault.PromptVersion
			email               *string
			firstName, lastName *string
		)
		err := rows.Scan(
			&v.ID,
			&v.PromptID,
			&v.Version,
			&v.Content,
			&v.Variables,
			&v.ChangeDescription,
			&v.CreatedByID,
			&v.CreatedAt,
			&email,
			&firstName,
			&lastName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan prompt version: %w", err)
		}
		if email != nil {
			v.CreatedBy = &models.UserSummary{
				ID:    v.CreatedByID,
				Email: *email,
				Name:  models.DisplayName(firstName, lastName, *email),
			}
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prompt versions: %w", err)
	}

	return versions, nil
}

// PostgresCommentRepository implements the CommentRepository interface
type PostgresCommentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(config *postgres.RepositoryConfig) vaultRepo.CommentRepository {
	return &PostgresCommentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func (r *PostgresCommentRepository) Create(ctx context.Context, c *vault.Comment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (prompt_id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, r.tables.Comments)

	err := postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		c.PromptID,
		c.AuthorID,
		c.Content,
		c.CreatedAt,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return postgres.NotFound("prompt", c.PromptID)
		}
		return fmt.Errorf("create comment: %w", err)
	}

	return nil
}

func (r *PostgresCommentRepository) ListByPrompt(ctx context.Context, promptID string) ([]vault.Comment, error) {
	query := fmt.Sprintf(`
		SELECT c.id, c.prompt_id, c.author_id, c.content, c.created_at, u.email, u.first_name, u.last_name
		FROM %s c
		LEFT JOIN %s u ON u.id = c.author_id
		WHERE c.prompt_id = $1
		ORDER BY c.created_at DESC
	`, r.tables.Comments, r.tables.Users)

	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query, promptID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []vault.Comment{}
	for rows.Next() {
		var (
			c                   vault.Comment
			email               *string
			firstName, lastName *string
		)
		if err := rows.Scan(&c.ID, &c.PromptID, &c.AuthorID, &c.Content, &c.CreatedAt, &email, &firstName, &lastName); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		if email != nil {
			c.Author = &models.UserSummary{
				ID:    c.AuthorID,
				Email: *email,
				Name:  models.DisplayName(firstName, lastName, *email),
			}
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

// PostgresFavoriteRepository implements the FavoriteRepository interface
type PostgresFavoriteRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(config *postgres.RepositoryConfig) vaultRepo.FavoriteRepository {
	return &PostgresFavoriteRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func (r *PostgresFavoriteRepository) Exists(ctx context.Context, userID, promptID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE user_id = $1 AND prompt_id = $2)`, r.tables.Favorites)

	var exists bool
	if err := postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, userID, promptID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return exists, nil
}

func (r *PostgresFavoriteRepository) Create(ctx context.Context, userID, promptID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, prompt_id, created_at)
		VALUES ($1, $2, NOW())
	`, r.tables.Favorites)

	if _, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query, userID, promptID); err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("prompt %s is already a favorite: %w", promptID, errConflict)
		}
		return fmt.Errorf("create favorite: %w", err)
	}
	return nil
}

func (r *PostgresFavoriteRepository) Delete(ctx context.Context, userID, promptID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND prompt_id = $2`, r.tables.Favorites)

	result, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query, userID, promptID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if result.RowsAffected() == 0 {
		return postgres.NotFound("favorite", promptID)
	}
	return nil
}
