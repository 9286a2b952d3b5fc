package postgres

import (
	"context"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates every table and index that does not exist yet.
// Statements are idempotent so the server and the seed command can both
// run it on startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, prefix string) error {
	for _, stmt := range schemaStatements(tables, prefix) {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// DropTables drops every table, children first.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	all := tables.All()
	slices.Reverse(all)
	for _, table := range all {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

func schemaStatements(t *TableNames, prefix string) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		`CREATE TABLE IF NOT EXISTS ` + t.Organizations + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			kind TEXT NOT NULL CHECK (kind IN ('organization', 'personal')),
			external_id TEXT NOT NULL,
			name VARCHAR(255) NOT NULL,
			slug TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (kind, external_id)
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Users + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			external_id TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL DEFAULT '',
			first_name TEXT,
			last_name TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Members + ` (
			organization_id UUID NOT NULL REFERENCES ` + t.Organizations + `(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES ` + t.Users + `(id) ON DELETE CASCADE,
			role TEXT NOT NULL DEFAULT 'MEMBER',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (organization_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Categories + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			organization_id UUID NOT NULL REFERENCES ` + t.Organizations + `(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			slug TEXT NOT NULL,
			description TEXT,
			color TEXT,
			icon TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (organization_id, slug)
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Tags + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			organization_id UUID NOT NULL REFERENCES ` + t.Organizations + `(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			slug TEXT NOT NULL,
			color TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (organization_id, slug)
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Collections + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			organization_id UUID NOT NULL REFERENCES ` + t.Organizations + `(id) ON DELETE CASCADE,
			parent_id UUID REFERENCES ` + t.Collections + `(id) ON DELETE RESTRICT,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (parent_id IS NULL OR parent_id <> id)
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Prompts + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			organization_id UUID NOT NULL REFERENCES ` + t.Organizations + `(id) ON DELETE CASCADE,
			author_id UUID NOT NULL REFERENCES ` + t.Users + `(id),
			category_id UUID REFERENCES ` + t.Categories + `(id) ON DELETE RESTRICT,
			collection_id UUID REFERENCES ` + t.Collections + `(id) ON DELETE RESTRICT,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			content TEXT NOT NULL,
			variables TEXT[],
			status TEXT NOT NULL DEFAULT 'DRAFT' CHECK (status IN ('DRAFT', 'PUBLISHED', 'ARCHIVED')),
			visibility TEXT NOT NULL DEFAULT 'PRIVATE' CHECK (visibility IN ('PRIVATE', 'ORGANIZATION')),
			favorite_count INTEGER NOT NULL DEFAULT 0 CHECK (favorite_count >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Versions + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			prompt_id UUID NOT NULL REFERENCES ` + t.Prompts + `(id) ON DELETE CASCADE,
			version INTEGER NOT NULL CHECK (version >= 1),
			content TEXT NOT NULL,
			variables TEXT[],
			change_description TEXT,
			created_by_id UUID NOT NULL REFERENCES ` + t.Users + `(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (prompt_id, version)
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.PromptTags + ` (
			prompt_id UUID NOT NULL REFERENCES ` + t.Prompts + `(id) ON DELETE CASCADE,
			tag_id UUID NOT NULL REFERENCES ` + t.Tags + `(id) ON DELETE RESTRICT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (prompt_id, tag_id)
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Favorites + ` (
			user_id UUID NOT NULL REFERENCES ` + t.Users + `(id) ON DELETE CASCADE,
			prompt_id UUID NOT NULL REFERENCES ` + t.Prompts + `(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, prompt_id)
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Comments + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			prompt_id UUID NOT NULL REFERENCES ` + t.Prompts + `(id) ON DELETE CASCADE,
			author_id UUID NOT NULL REFERENCES ` + t.Users + `(id),
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.APIKeys + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			organization_id UUID NOT NULL REFERENCES ` + t.Organizations + `(id) ON DELETE CASCADE,
			created_by_id UUID NOT NULL REFERENCES ` + t.Users + `(id),
			name VARCHAR(255) NOT NULL,
			key TEXT NOT NULL UNIQUE,
			expires_at TIMESTAMPTZ,
			last_used_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Activities + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			organization_id UUID NOT NULL REFERENCES ` + t.Organizations + `(id) ON DELETE CASCADE,
			user_id UUID REFERENCES ` + t.Users + `(id) ON DELETE SET NULL,
			action TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `collections_org_parent ON ` + t.Collections + `(organization_id, parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `prompts_org_updated ON ` + t.Prompts + `(organization_id, updated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `prompts_category ON ` + t.Prompts + `(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `prompts_collection ON ` + t.Prompts + `(collection_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `prompt_tags_tag ON ` + t.PromptTags + `(tag_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `tags_org_name ON ` + t.Tags + `(organization_id, lower(name))`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `comments_prompt ON ` + t.Comments + `(prompt_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `api_keys_org ON ` + t.APIKeys + `(organization_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `activities_org ON ` + t.Activities + `(organization_id, created_at DESC)`,
	}
}
