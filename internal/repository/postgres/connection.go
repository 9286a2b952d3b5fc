package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"promptvault/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds environment-prefixed table names
type TableNames struct {
	Organizations string
	Users         string
	Members       string
	Categories    string
	Tags          string
	Collections   string
	Prompts       string
	Versions      string
	PromptTags    string
	Favorites     string
	Comments      string
	APIKeys       string
	Activities    string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Organizations: prefix + "organizations",
		Users:         prefix + "users",
		Members:       prefix + "organization_members",
		Categories:    prefix + "categories",
		Tags:          prefix + "tags",
		Collections:   prefix + "collections",
		Prompts:       prefix + "prompts",
		Versions:      prefix + "prompt_versions",
		PromptTags:    prefix + "prompt_tags",
		Favorites:     prefix + "favorites",
		Comments:      prefix + "comments",
		APIKeys:       prefix + "api_keys",
		Activities:    prefix + "activities",
	}
}

// All returns every table in dependency order, parents first.
func (t *TableNames) All() []string {
	return []string{
		t.Organizations,
		t.Users,
		t.Members,
		t.Categories,
		t.Tags,
		t.Collections,
		t.Prompts,
		t.Versions,
		t.PromptTags,
		t.Favorites,
		t.Comments,
		t.APIKeys,
		t.Activities,
	}
}

// CreateConnectionPool creates a pgx pool and pings the database.
//
// Transaction-pooling PgBouncer (port 6543) rejects prepared statements, so
// on that port the pool switches to QueryExecModeCacheDescribe unless the
// connection string already chose a mode via default_query_exec_mode.
// Table names are interpolated before statements are prepared, so each
// prefix gets its own statement cache entries.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 2

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction carried by ctx, or the pool when
// there is none.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
