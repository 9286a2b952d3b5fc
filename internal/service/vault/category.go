package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"promptvault/internal/config"
	"promptvault/internal/domain"
	"promptvault/internal/domain/models/vault"
	"promptvault/internal/domain/repositories"
	vaultRepo "promptvault/internal/domain/repositories/vault"
	"promptvault/internal/domain/services"
	vaultSvc "promptvault/internal/domain/services/vault"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type categoryService struct {
	categoryRepo vaultRepo.CategoryRepository
	txManager    repositories.TransactionManager
	authorizer   services.ResourceAuthorizer
	activity     vaultSvc.ActivityRecorder
	logger       *slog.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(
	categoryRepo vaultRepo.CategoryRepository,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	activity vaultSvc.ActivityRecorder,
	logger *slog.Logger,
) vaultSvc.CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		txManager:    txManager,
		authorizer:   authorizer,
		activity:     activity,
		logger:       logger,
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, req *vaultSvc.CreateCategoryRequest) (*vault.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.OrganizationID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
		validation.Field(&req.Color, validation.Length(0, config.MaxColorLength)),
		validation.Field(&req.Icon, validation.Length(0, config.MaxIconLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	slug, err := slugFor(req.Name)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	category := &vault.Category{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Slug:           slug,
		Description:    normalizeText(req.Description),
		Color:          normalizeText(req.Color),
		Icon:           normalizeText(req.Icon),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.ensureSlugAvailable(ctx, req.OrganizationID, slug, ""); err != nil {
			return err
		}
		if err := s.categoryRepo.Create(ctx, category); err != nil {
			return err
		}
		return s.activity.Record(ctx, newActivity(req.OrganizationID, req.UserID,
			vault.ActionCategoryCreated, vault.EntityCategory, category.ID,
			map[string]any{"name": category.Name, "slug": category.Slug},
		))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "category created",
		"id", category.ID,
		"slug", category.Slug,
		"organization_id", category.OrganizationID,
	)
	return category, nil
}

func (s *categoryService) GetCategory(ctx context.Context, organizationID, id string) (*vault.Category, error) {
	return s.authorizer.CanAccessCategory(ctx, organizationID, id)
}

func (s *categoryService) ListCategories(ctx context.Context, organizationID string) ([]vault.CategoryView, error) {
	return s.categoryRepo.List(ctx, organizationID)
}

func (s *categoryService) UpdateCategory(ctx context.Context, id string, req *vaultSvc.UpdateCategoryRequest) (*vault.Category, error) {
	if req.Name == nil && !req.Description.Present && !req.Color.Present && !req.Icon.Present {
		return nil, fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.OrganizationID, validation.Required),
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, config.MaxNameLength)),
		validation.Field(&req.Description, validation.By(optionalLength(config.MaxDescriptionLength))),
		validation.Field(&req.Color, validation.By(optionalLength(config.MaxColorLength))),
		validation.Field(&req.Icon, validation.By(optionalLength(config.MaxIconLength))),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var category *vault.Category
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		category, err = s.authorizer.CanAccessCategory(ctx, req.OrganizationID, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			slug, err := slugFor(*req.Name)
			if err != nil {
				return err
			}
			if slug != category.Slug {
				if err := s.ensureSlugAvailable(ctx, req.OrganizationID, slug, category.ID); err != nil {
					return err
				}
			}
			category.Name = *req.Name
			category.Slug = slug
		}
		if req.Description.Present {
			category.Description = normalizeText(req.Description.Value)
		}
		if req.Color.Present {
			category.Color = normalizeText(req.Color.Value)
		}
		if req.Icon.Present {
			category.Icon = normalizeText(req.Icon.Value)
		}

		category.UpdatedAt = time.Now()
		if err := s.categoryRepo.Update(ctx, category); err != nil {
			return err
		}

		return s.activity.Record(ctx, newActivity(req.OrganizationID, req.UserID,
			vault.ActionCategoryUpdated, vault.EntityCategory, category.ID,
			map[string]any{"name": category.Name, "slug": category.Slug},
		))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "category updated", "id", category.ID, "slug", category.Slug)
	return category, nil
}

// DeleteCategory removes a category that no prompt references.
func (s *categoryService) DeleteCategory(ctx context.Context, organizationID, userID, id string) error {
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		category, err := s.authorizer.CanAccessCategory(ctx, organizationID, id)
		if err != nil {
			return err
		}

		n, err := s.categoryRepo.CountPrompts(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.NewConflict("category", id,
				fmt.Sprintf("cannot delete category with %d prompt(s)", n))
		}

		if err := s.activity.Record(ctx, newActivity(organizationID, userID,
			vault.ActionCategoryDeleted, vault.EntityCategory, id,
			map[string]any{"name": category.Name, "slug": category.Slug},
		)); err != nil {
			return err
		}

		return s.categoryRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "category deleted", "id", id, "organization_id", organizationID)
	return nil
}

func (s *categoryService) ensureSlugAvailable(ctx context.Context, organizationID, slug, selfID string) error {
	existing, err := s.categoryRepo.GetBySlug(ctx, organizationID, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return domain.NewConflict("category", existing.ID, fmt.Sprintf("a category with slug %q already exists", slug))
}
