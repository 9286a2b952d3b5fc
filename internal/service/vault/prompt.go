package vault

import (
	"context"
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

var (
	validStatuses     = []any{string(vault.StatusDraft), string(vault.StatusPublished), string(vault.StatusArchived)}
	validVisibilities = []any{string(vault.VisibilityPrivate), string(vault.VisibilityOrganization)}
)

type promptService struct {
	promptRepo  vaultRepo.PromptRepository
	versionRepo vaultRepo.VersionRepository
	commentRepo vaultRepo.CommentRepository
	tagRepo     vaultRepo.TagRepository
	tagService  vaultSvc.TagService
	txManager   repositories.TransactionManager
	authorizer  services.ResourceAuthorizer
	activity    vaultSvc.ActivityRecorder
	logger      *slog.Logger
}

// NewPromptService creates the prompt lifecycle manager
func NewPromptService(
	promptRepo vaultRepo.PromptRepository,
	versionRepo vaultRepo.VersionRepository,
	commentRepo vaultRepo.CommentRepository,
	tagRepo vaultRepo.TagRepository,
	tagService vaultSvc.TagService,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	activity vaultSvc.ActivityRecorder,
	logger *slog.Logger,
) vaultSvc.PromptService {
	return &promptService{
		promptRepo:  promptRepo,
		versionRepo: versionRepo,
		commentRepo: commentRepo,
		tagRepo:     tagRepo,
		tagService:  tagService,
		txManager:   txManager,
		authorizer:  authorizer,
		activity:    activity,
		logger:      logger,
	}
}

// CreatePrompt stores a DRAFT prompt, its first version and its tag links
// in one transaction.
func (s *promptService) CreatePrompt(ctx context.Context, req *vaultSvc.CreatePromptRequest) (*vault.PromptDetail, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	req.CategoryID = normalizeText(req.CategoryID)
	req.CollectionID = normalizeText(req.CollectionID)
	req.Tags = trimAll(req.Tags)

	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	visibility := vault.VisibilityPrivate
	if req.Visibility != nil {
		visibility = vault.Visibility(*req.Visibility)
	}

	now := time.Now()
	prompt := &vault.Prompt{
		OrganizationID: req.OrganizationID,
		AuthorID:       req.UserID,
		CategoryID:     req.CategoryID,
		CollectionID:   req.CollectionID,
		Title:          req.Title,
		Description:    normalizeText(req.Description),
		Content:        req.Content,
		Variables:      normalizeVariables(req.Variables),
		Status:         vault.StatusDraft,
		Visibility:     visibility,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.checkReferences(ctx, req.OrganizationID, prompt.CategoryID, prompt.CollectionID); err != nil {
			return err
		}

		if err := s.promptRepo.Create(ctx, prompt); err != nil {
			return err
		}

		note := vaultSvc.InitialVersionNote
		if err := s.versionRepo.Create(ctx, &vault.PromptVersion{
			PromptID:          prompt.ID,
			Version:           1,
			Content:           prompt.Content,
			Variables:         prompt.Variables,
			ChangeDescription: &note,
			CreatedByID:       req.UserID,
			CreatedAt:         now,
		}); err != nil {
			return err
		}

		if err := s.linkTags(ctx, req.OrganizationID, prompt.ID, req.Tags); err != nil {
			return err
		}

		return s.activity.Record(ctx, newActivity(req.OrganizationID, req.UserID,
			vault.ActionPromptCreated, vault.EntityPrompt, prompt.ID,
			map[string]any{"promptTitle": prompt.Title},
		))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "prompt created",
		"id", prompt.ID,
		"title", prompt.Title,
		"organization_id", prompt.OrganizationID,
		"tag_count", len(req.Tags),
	)

	return s.GetPrompt(ctx, req.OrganizationID, req.UserID, prompt.ID)
}

// GetPrompt returns the prompt with its recent versions and all comments
func (s *promptService) GetPrompt(ctx context.Context, organizationID, userID, id string) (*vault.PromptDetail, error) {
	if _, err := s.authorizer.CanAccessPrompt(ctx, organizationID, id); err != nil {
		return nil, err
	}

	item, err := s.promptRepo.GetListItem(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	items := []vault.PromptListItem{*item}
	if err := attachTags(ctx, s.tagRepo, items); err != nil {
		return nil, err
	}

	versions, err := s.versionRepo.ListByPrompt(ctx, id, config.RecentVersionsLimit)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPrompt(ctx, id)
	if err != nil {
		return nil, err
	}

	return &vault.PromptDetail{
		PromptListItem: items[0],
		Versions:       versions,
		Comments:       comments,
	}, nil
}

// ListPrompts fetches by the store-side filters, then applies the tag
// filter against each prompt's resolved tags.
func (s *promptService) ListPrompts(ctx context.Context, filter vault.PromptFilter) ([]vault.PromptListItem, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Tag = strings.TrimSpace(filter.Tag)
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, filter.Status)
	}

	prompts, err := s.promptRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err := attachTags(ctx, s.tagRepo, prompts); err != nil {
		return nil, err
	}

	if filter.Tag == "" {
		return prompts, nil
	}

	filtered := make([]vault.PromptListItem, 0, len(prompts))
	for i := range prompts {
		if prompts[i].HasTag(filter.Tag) {
			filtered = append(filtered, prompts[i])
		}
	}
	return filtered, nil
}

// UpdatePrompt applies a partial update. A version is appended exactly when
// the trimmed content differs from the stored content. The prompt row stays
// locked for the whole update so version numbers cannot collide.
func (s *promptService) UpdatePrompt(ctx context.Context, id string, req *vaultSvc.UpdatePromptRequest) (*vault.PromptDetail, error) {
	trimPtr(&req.Title)
	trimPtr(&req.Content)
	trimPtr(&req.ChangeNote)
	if req.Tags != nil {
		tags := trimAll(*req.Tags)
		req.Tags = &tags
	}

	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var (
		contentChanged bool
		newVersion     int
	)
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if _, err := s.authorizer.CanAccessPrompt(ctx, req.OrganizationID, id); err != nil {
			return err
		}

		prompt, err := s.promptRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if req.Title != nil {
			prompt.Title = *req.Title
		}
		if req.Description.Present {
			prompt.Description = normalizeText(req.Description.Value)
		}
		if req.Status != nil {
			prompt.Status = vault.PromptStatus(*req.Status)
		}
		if req.Visibility != nil {
			prompt.Visibility = vault.Visibility(*req.Visibility)
		}
		if req.CategoryID.Present {
			prompt.CategoryID = normalizeText(req.CategoryID.Value)
		}
		if req.CollectionID.Present {
			prompt.CollectionID = normalizeText(req.CollectionID.Value)
		}
		if req.CategoryID.Present || req.CollectionID.Present {
			if err := s.checkReferences(ctx, req.OrganizationID,
				presentOnly(req.CategoryID.Present, prompt.CategoryID),
				presentOnly(req.CollectionID.Present, prompt.CollectionID),
			); err != nil {
				return err
			}
		}
		if req.Variables != nil {
			prompt.Variables = normalizeVariables(*req.Variables)
		}

		contentChanged = req.Content != nil && *req.Content != prompt.Content
		if req.Content != nil {
			prompt.Content = *req.Content
		}

		prompt.UpdatedAt = time.Now()
		if err := s.promptRepo.Update(ctx, prompt); err != nil {
			return err
		}

		if contentChanged {
			latest, err := s.versionRepo.MaxVersion(ctx, id)
			if err != nil {
				return err
			}
			newVersion = latest + 1

			note := vaultSvc.DefaultChangeNote
			if req.ChangeNote != nil && *req.ChangeNote != "" {
				note = *req.ChangeNote
			}
			if err := s.versionRepo.Create(ctx, &vault.PromptVersion{
				PromptID:          id,
				Version:           newVersion,
				Content:           prompt.Content,
				Variables:         prompt.Variables,
				ChangeDescription: &note,
				CreatedByID:       req.UserID,
				CreatedAt:         prompt.UpdatedAt,
			}); err != nil {
				return err
			}
		}

		// Full replace of the tag set
		if req.Tags != nil {
			if err := s.tagRepo.UnlinkAll(ctx, id); err != nil {
				return err
			}
			if err := s.linkTags(ctx, req.OrganizationID, id, *req.Tags); err != nil {
				return err
			}
		}

		metadata := map[string]any{"promptTitle": prompt.Title, "contentChanged": contentChanged}
		if contentChanged {
			metadata["version"] = newVersion
		}
		return s.activity.Record(ctx, newActivity(req.OrganizationID, req.UserID,
			vault.ActionPromptUpdated, vault.EntityPrompt, id, metadata,
		))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "prompt updated",
		"id", id,
		"content_changed", contentChanged,
		"version", newVersion,
	)

	return s.GetPrompt(ctx, req.OrganizationID, req.UserID, id)
}

// DeletePrompt records the deletion first; versions, tag links, favorites
// and comments go with the row.
func (s *promptService) DeletePrompt(ctx context.Context, organizationID, userID, id string) error {
	var title string
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		prompt, err := s.authorizer.CanAccessPrompt(ctx, organizationID, id)
		if err != nil {
			return err
		}
		title = prompt.Title

		if err := s.activity.Record(ctx, newActivity(organizationID, userID,
			vault.ActionPromptDeleted, vault.EntityPrompt, id,
			map[string]any{"promptTitle": prompt.Title},
		)); err != nil {
			return err
		}

		return s.promptRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "prompt deleted", "id", id, "title", title, "organization_id", organizationID)
	return nil
}

func (s *promptService) ListVersions(ctx context.Context, organizationID, id string) ([]vault.PromptVersion, error) {
	if _, err := s.authorizer.CanAccessPrompt(ctx, organizationID, id); err != nil {
		return nil, err
	}
	return s.versionRepo.ListByPrompt(ctx, id, 0)
}

// checkReferences verifies that a category and collection, when set,
// belong to the organization.
func (s *promptService) checkReferences(ctx context.Context, organizationID string, categoryID, collectionID *string) error {
	if categoryID != nil {
		if _, err := s.authorizer.CanAccessCategory(ctx, organizationID, *categoryID); err != nil {
			return err
		}
	}
	if collectionID != nil {
		if _, err := s.authorizer.CanAccessCollection(ctx, organizationID, *collectionID); err != nil {
			return err
		}
	}
	return nil
}

func (s *promptService) linkTags(ctx context.Context, organizationID, promptID string, names []string) error {
	if len(names) == 0 {
		return nil
	}

	tags, err := s.tagService.ResolveTags(ctx, organizationID, names)
	if err != nil {
		return err
	}
	for _, tag := range tags {
		if err := s.tagRepo.LinkPrompt(ctx, promptID, tag.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *promptService) validateCreateRequest(req *vaultSvc.CreatePromptRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OrganizationID, validation.Required),
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title, validation.Required, validation.Length(1, config.MaxTitleLength)),
		validation.Field(&req.Content, validation.Required, validation.Length(1, config.MaxPromptContentLength)),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
		validation.Field(&req.Variables, validation.Length(0, config.MaxVariablesPerPrompt)),
		validation.Field(&req.Tags,
			validation.Length(0, config.MaxTagsPerPrompt),
			validation.Each(validation.Length(0, config.MaxNameLength)),
		),
		validation.Field(&req.Visibility, validation.NilOrNotEmpty, validation.In(validVisibilities...)),
	)
}

func (s *promptService) validateUpdateRequest(req *vaultSvc.UpdatePromptRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OrganizationID, validation.Required),
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title, validation.NilOrNotEmpty, validation.Length(1, config.MaxTitleLength)),
		validation.Field(&req.Content, validation.NilOrNotEmpty, validation.Length(1, config.MaxPromptContentLength)),
		validation.Field(&req.Description, validation.By(optionalLength(config.MaxDescriptionLength))),
		validation.Field(&req.Status, validation.NilOrNotEmpty, validation.In(validStatuses...)),
		validation.Field(&req.Visibility, validation.NilOrNotEmpty, validation.In(validVisibilities...)),
		validation.Field(&req.Variables, validation.By(maxItems(config.MaxVariablesPerPrompt))),
		validation.Field(&req.Tags, validation.By(maxItems(config.MaxTagsPerPrompt)), validation.By(tagNameLengths)),
		validation.Field(&req.ChangeNote, validation.Length(0, config.MaxChangeNoteLength)),
	)
}

// attachTags fills Tags on every item with one batched lookup.
func attachTags(ctx context.Context, tagRepo vaultRepo.TagRepository, items []vault.PromptListItem) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}

	byPrompt, err := tagRepo.ListForPrompts(ctx, ids)
	if err != nil {
		return err
	}

	for i := range items {
		if tags, ok := byPrompt[items[i].ID]; ok {
			items[i].Tags = tags
		} else {
			items[i].Tags = []vault.TagSummary{}
		}
	}
	return nil
}

// normalizeVariables trims names and drops blanks and duplicates, keeping
// first-seen order.
func normalizeVariables(vars []string) []string {
	result := make([]string, 0, len(vars))
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		result = append(result, v)
	}
	return result
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

// tagNameLengths checks every name of an optional tag replacement list.
func tagNameLengths(value any) error {
	names, ok := value.(*[]string)
	if !ok || names == nil {
		return nil
	}
	return validation.Validate(*names, validation.Each(validation.Length(0, config.MaxNameLength)))
}

func trimPtr(s **string) {
	if *s == nil {
		return
	}
	trimmed := strings.TrimSpace(**s)
	*s = &trimmed
}

func presentOnly(present bool, id *string) *string {
	if !present {
		return nil
	}
	return id
}

func maxItems(max int) validation.RuleFunc {
	return func(value any) error {
		list, ok := value.(*[]string)
		if !ok || list == nil {
			return nil
		}
		if len(*list) > max {
			return fmt.Errorf("must contain no more than %d items", max)
		}
		return nil
	}
}
