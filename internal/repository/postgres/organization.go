package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"promptvault/internal/domain/models"
	"promptvault/internal/domain/repositories"
)

// PostgresOrganizationRepository implements repositories.OrganizationRepository
type PostgresOrganizationRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

func NewOrganizationRepository(config *RepositoryConfig) repositories.OrganizationRepository {
	return &PostgresOrganizationRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const organizationColumns = `id, kind, external_id, name, slug, created_at, updated_at`

func scanOrganization(row interface{ Scan(...any) error }) (*models.Organization, error) {
	var org models.Organization
	err := row.Scan(
		&org.ID,
		&org.Kind,
		&org.ExternalID,
		&org.Name,
		&org.Slug,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *PostgresOrganizationRepository) GetByTenant(ctx context.Context, tenant models.Tenant) (*models.Organization, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE kind = $1 AND external_id = $2
	`, organizationColumns, r.tables.Organizations)

	org, err := scanOrganization(GetExecutor(ctx, r.pool).QueryRow(ctx, query, tenant.Kind, tenant.ExternalID))
	if err != nil {
		return nil, MapLookupError(err, "organization", tenant.String())
	}
	return org, nil
}

func (r *PostgresOrganizationRepository) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, organizationColumns, r.tables.Organizations)

	org, err := scanOrganization(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, MapLookupError(err, "organization", id)
	}
	return org, nil
}

// Create inserts the organization. Concurrent first requests for the same
// tenant race on (kind, external_id); the loser reads the winner's row.
func (r *PostgresOrganizationRepository) Create(ctx context.Context, org *models.Organization) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (kind, external_id, name, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (kind, external_id) DO NOTHING
		RETURNING %s
	`, r.tables.Organizations, organizationColumns)

	executor := GetExecutor(ctx, r.pool)
	created, err := scanOrganization(executor.QueryRow(ctx, query,
		org.Kind,
		org.ExternalID,
		org.Name,
		org.Slug,
		org.CreatedAt,
		org.UpdatedAt,
	))
	if err == nil {
		*org = *created
		return true, nil
	}
	if !IsPgNoRowsError(err) {
		return false, fmt.Errorf("create organization: %w", err)
	}

	existing, err := r.GetByTenant(ctx, org.Tenant())
	if err != nil {
		return false, err
	}
	*org = *existing
	return false, nil
}

func (r *PostgresOrganizationRepository) AddMember(ctx context.Context, m *models.Membership) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (organization_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (organization_id, user_id) DO NOTHING
	`, r.tables.Members)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query, m.OrganizationID, m.UserID, m.Role, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("add organization member: %w", err)
	}
	return nil
}
