package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"promptvault/internal/domain"
	"promptvault/internal/domain/models"
	"promptvault/internal/domain/repositories"
	"promptvault/internal/domain/services"
	vaultService "promptvault/internal/service/vault"
)

// tenantService implements the TenantService interface
type tenantService struct {
	userRepo  repositories.UserRepository
	orgRepo   repositories.OrganizationRepository
	directory services.OrganizationDirectory
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewTenantService creates a new tenant service
func NewTenantService(
	userRepo repositories.UserRepository,
	orgRepo repositories.OrganizationRepository,
	directory services.OrganizationDirectory,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.TenantService {
	return &tenantService{
		userRepo:  userRepo,
		orgRepo:   orgRepo,
		directory: directory,
		txManager: txManager,
		logger:    logger,
	}
}

// ResolveSession mirrors the session user locally and finds or creates the
// organization row for the session's tenant.
func (s *tenantService) ResolveSession(ctx context.Context, claims *models.Claims) (*models.Identity, error) {
	if claims == nil || claims.Subject == "" {
		return nil, &domain.UnauthorizedError{Message: "session has no subject"}
	}

	tenant := claims.Tenant()
	if err := tenant.Validate(); err != nil {
		return nil, &domain.UnauthorizedError{Message: err.Error()}
	}

	first, last := nameParts(claims)
	now := time.Now()
	user := &models.User{
		ExternalID: claims.Subject,
		Email:      strings.TrimSpace(claims.Email),
		FirstName:  first,
		LastName:   last,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("upsert session user: %w", err)
	}

	org, err := s.orgRepo.GetByTenant(ctx, tenant)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		org, err = s.createOrganization(ctx, tenant, user)
	case err == nil:
		err = s.orgRepo.AddMember(ctx, &models.Membership{
			OrganizationID: org.ID,
			UserID:         user.ID,
			Role:           models.RoleMember,
			CreatedAt:      now,
		})
	}
	if err != nil {
		return nil, err
	}

	return &models.Identity{
		UserID:         user.ID,
		OrganizationID: org.ID,
		Tenant:         tenant,
		Method:         models.AuthMethodSession,
	}, nil
}

func (s *tenantService) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	return s.orgRepo.GetByID(ctx, id)
}

func (s *tenantService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// createOrganization lazily creates the tenant's organization and records
// the first user as its owner. When a concurrent request wins the insert,
// this user is recorded as a member of the winner's row.
func (s *tenantService) createOrganization(ctx context.Context, tenant models.Tenant, user *models.User) (*models.Organization, error) {
	name := s.organizationName(ctx, tenant, user)
	slug := vaultService.Slugify(name)
	if slug == "" {
		slug = vaultService.Slugify(tenant.ExternalID)
	}

	now := time.Now()
	org := &models.Organization{
		Kind:       tenant.Kind,
		ExternalID: tenant.ExternalID,
		Name:       name,
		Slug:       slug,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var created bool
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.orgRepo.Create(ctx, org)
		if err != nil {
			return err
		}

		role := models.RoleMember
		if created {
			role = models.RoleOwner
		}
		return s.orgRepo.AddMember(ctx, &models.Membership{
			OrganizationID: org.ID,
			UserID:         user.ID,
			Role:           role,
			CreatedAt:      now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create organization for %s: %w", tenant, err)
	}

	if created {
		s.logger.InfoContext(ctx, "organization created",
			"id", org.ID,
			"tenant", tenant.String(),
			"name", org.Name,
			"owner_id", user.ID,
		)
	}

	return org, nil
}

// organizationName picks a display name. Personal workspaces are named
// after the user; organizations come from the directory, falling back to
// the external id.
func (s *tenantService) organizationName(ctx context.Context, tenant models.Tenant, user *models.User) string {
	if tenant.IsPersonal() {
		first := "Personal"
		if user.FirstName != nil && *user.FirstName != "" {
			first = *user.FirstName
		}
		return first + " Workspace"
	}

	name, err := s.directory.OrganizationName(ctx, tenant.ExternalID)
	if err != nil || strings.TrimSpace(name) == "" {
		if err != nil {
			s.logger.WarnContext(ctx, "organization directory lookup failed",
				"external_id", tenant.ExternalID,
				"error", err,
			)
		}
		return tenant.ExternalID
	}
	return strings.TrimSpace(name)
}

// nameParts prefers the given/family claims and falls back to splitting
// the full name at the first space.
func nameParts(claims *models.Claims) (first, last *string) {
	given := strings.TrimSpace(claims.GivenName)
	family := strings.TrimSpace(claims.FamilyName)

	if given == "" && family == "" {
		full := strings.TrimSpace(claims.Name)
		if full == "" {
			return nil, nil
		}
		given, family, _ = strings.Cut(full, " ")
		family = strings.TrimSpace(family)
	}

	if given != "" {
		first = &given
	}
	if family != "" {
		last = &family
	}
	return first, last
}
