package auth

import (
	"context"
	"fmt"

	"promptvault/internal/domain"
	"promptvault/internal/domain/models/vault"
	vaultRepo "promptvault/internal/domain/repositories/vault"
	"promptvault/internal/domain/services"
)

// TenantAuthorizer implements ResourceAuthorizer using organization
// ownership. A resource is accessible when it belongs to the caller's
// organization.
//
// Lookups are unscoped by id so that a resource of another tenant is
// reported as forbidden instead of missing.
type TenantAuthorizer struct {
	collectionRepo vaultRepo.CollectionRepository
	promptRepo     vaultRepo.PromptRepository
	categoryRepo   vaultRepo.CategoryRepository
	tagRepo        vaultRepo.TagRepository
	apiKeyRepo     vaultRepo.APIKeyRepository
}

// NewTenantAuthorizer creates a new organization-based authorizer
func NewTenantAuthorizer(
	collectionRepo vaultRepo.CollectionRepository,
	promptRepo vaultRepo.PromptRepository,
	categoryRepo vaultRepo.CategoryRepository,
	tagRepo vaultRepo.TagRepository,
	apiKeyRepo vaultRepo.APIKeyRepository,
) services.ResourceAuthorizer {
	return &TenantAuthorizer{
		collectionRepo: collectionRepo,
		promptRepo:     promptRepo,
		categoryRepo:   categoryRepo,
		tagRepo:        tagRepo,
		apiKeyRepo:     apiKeyRepo,
	}
}

func checkOrganization(resource, id, owner, organizationID string) error {
	if owner != organizationID {
		return &domain.ForbiddenError{
			Message: fmt.Sprintf("access denied to %s %s", resource, id),
		}
	}
	return nil
}

// CanAccessCollection loads the collection and checks its organization
func (a *TenantAuthorizer) CanAccessCollection(ctx context.Context, organizationID, collectionID string) (*vault.Collection, error) {
	collection, err := a.collectionRepo.GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if err := checkOrganization("collection", collectionID, collection.OrganizationID, organizationID); err != nil {
		return nil, err
	}
	return collection, nil
}

// CanAccessPrompt loads the prompt and checks its organization
func (a *TenantAuthorizer) CanAccessPrompt(ctx context.Context, organizationID, promptID string) (*vault.Prompt, error) {
	prompt, err := a.promptRepo.GetByID(ctx, promptID)
	if err != nil {
		return nil, err
	}
	if err := checkOrganization("prompt", promptID, prompt.OrganizationID, organizationID); err != nil {
		return nil, err
	}
	return prompt, nil
}

func (a *TenantAuthorizer) CanAccessCategory(ctx context.Context, organizationID, categoryID string) (*vault.Category, error) {
	category, err := a.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if err := checkOrganization("category", categoryID, category.OrganizationID, organizationID); err != nil {
		return nil, err
	}
	return category, nil
}

func (a *TenantAuthorizer) CanAccessTag(ctx context.Context, organizationID, tagID string) (*vault.Tag, error) {
	tag, err := a.tagRepo.GetByID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if err := checkOrganization("tag", tagID, tag.OrganizationID, organizationID); err != nil {
		return nil, err
	}
	return tag, nil
}

func (a *TenantAuthorizer) CanAccessAPIKey(ctx context.Context, organizationID, keyID string) (*vault.APIKey, error) {
	key, err := a.apiKeyRepo.GetByID(ctx, keyID)
	if err != nil {
		return nil, err
	}
	if err := checkOrganization("api key", keyID, key.OrganizationID, organizationID); err != nil {
		return nil, err
	}
	return key, nil
}
