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

type tagService struct {
	tagRepo    vaultRepo.TagRepository
	txManager  repositories.TransactionManager
	authorizer services.ResourceAuthorizer
	activity   vaultSvc.ActivityRecorder
	logger     *slog.Logger
}

// NewTagService creates a new tag service
func NewTagService(
	tagRepo vaultRepo.TagRepository,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	activity vaultSvc.ActivityRecorder,
	logger *slog.Logger,
) vaultSvc.TagService {
	return &tagService{
		tagRepo:    tagRepo,
		txManager:  txManager,
		authorizer: authorizer,
		activity:   activity,
		logger:     logger,
	}
}

func (s *tagService) CreateTag(ctx context.Context, req *vaultSvc.CreateTagRequest) (*vault.Tag, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.OrganizationID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
		validation.Field(&req.Color, validation.Length(0, config.MaxColorLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	slug, err := slugFor(req.Name)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tag := &vault.Tag{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Slug:           slug,
		Color:          normalizeText(req.Color),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.ensureSlugAvailable(ctx, req.OrganizationID, slug, ""); err != nil {
			return err
		}
		if err := s.tagRepo.Create(ctx, tag); err != nil {
			return err
		}
		return s.activity.Record(ctx, newActivity(req.OrganizationID, req.UserID,
			vault.ActionTagCreated, vault.EntityTag, tag.ID,
			map[string]any{"name": tag.Name, "slug": tag.Slug},
		))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "tag created", "id", tag.ID, "slug", tag.Slug, "organization_id", tag.OrganizationID)
	return tag, nil
}

func (s *tagService) GetTag(ctx context.Context, organizationID, id string) (*vault.Tag, error) {
	return s.authorizer.CanAccessTag(ctx, organizationID, id)
}

func (s *tagService) ListTags(ctx context.Context, organizationID string) ([]vault.TagView, error) {
	return s.tagRepo.List(ctx, organizationID)
}

// UpdateTag renames or recolors a tag. A rename regenerates the slug.
func (s *tagService) UpdateTag(ctx context.Context, id string, req *vaultSvc.UpdateTagRequest) (*vault.Tag, error) {
	if req.Name == nil && !req.Color.Present {
		return nil, fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.OrganizationID, validation.Required),
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, config.MaxNameLength)),
		validation.Field(&req.Color, validation.By(optionalLength(config.MaxColorLength))),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var tag *vault.Tag
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		tag, err = s.authorizer.CanAccessTag(ctx, req.OrganizationID, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			slug, err := slugFor(*req.Name)
			if err != nil {
				return err
			}
			if slug != tag.Slug {
				if err := s.ensureSlugAvailable(ctx, req.OrganizationID, slug, tag.ID); err != nil {
					return err
				}
			}
			tag.Name = *req.Name
			tag.Slug = slug
		}
		if req.Color.Present {
			tag.Color = normalizeText(req.Color.Value)
		}

		tag.UpdatedAt = time.Now()
		if err := s.tagRepo.Update(ctx, tag); err != nil {
			return err
		}

		return s.activity.Record(ctx, newActivity(req.OrganizationID, req.UserID,
			vault.ActionTagUpdated, vault.EntityTag, tag.ID,
			map[string]any{"name": tag.Name, "slug": tag.Slug},
		))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "tag updated", "id", tag.ID, "slug", tag.Slug)
	return tag, nil
}

// DeleteTag removes a tag that no prompt references.
func (s *tagService) DeleteTag(ctx context.Context, organizationID, userID, id string) error {
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		tag, err := s.authorizer.CanAccessTag(ctx, organizationID, id)
		if err != nil {
			return err
		}

		n, err := s.tagRepo.CountPrompts(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.NewConflict("tag", id,
				fmt.Sprintf("cannot delete tag used by %d prompt(s)", n))
		}

		if err := s.activity.Record(ctx, newActivity(organizationID, userID,
			vault.ActionTagDeleted, vault.EntityTag, id,
			map[string]any{"name": tag.Name, "slug": tag.Slug},
		)); err != nil {
			return err
		}

		return s.tagRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "tag deleted", "id", id, "organization_id", organizationID)
	return nil
}

// ResolveTags maps each name to the organization's tag of the same name,
// compared case-insensitively, creating the tag when none exists. Blank
// names are skipped. A new tag whose slug is already held by a differently
// named tag is a conflict. It joins the caller's transaction when ctx
// carries one.
func (s *tagService) ResolveTags(ctx context.Context, organizationID string, names []string) ([]vault.Tag, error) {
	tags := make([]vault.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		existing, err := s.tagRepo.GetByName(ctx, organizationID, name)
		if err == nil {
			tags = append(tags, *existing)
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}

		slug := TagNameSlug(name)
		if slug == "" {
			return nil, fmt.Errorf("%w: tag %q has no usable slug", domain.ErrValidation, name)
		}
		if err := s.ensureSlugAvailable(ctx, organizationID, slug, ""); err != nil {
			return nil, err
		}

		now := time.Now()
		tag := &vault.Tag{
			OrganizationID: organizationID,
			Name:           name,
			Slug:           slug,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.tagRepo.Create(ctx, tag); err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}

	return tags, nil
}

func (s *tagService) ensureSlugAvailable(ctx context.Context, organizationID, slug, selfID string) error {
	existing, err := s.tagRepo.GetBySlug(ctx, organizationID, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return domain.NewConflict("tag", existing.ID, fmt.Sprintf("a tag with slug %q already exists", slug))
}

// slugFor derives a slug, rejecting names without any letter or digit.
func slugFor(name string) (string, error) {
	slug := Slugify(name)
	if slug == "" {
		return "", fmt.Errorf("%w: name must contain at least one letter or digit", domain.ErrValidation)
	}
	return slug, nil
}
