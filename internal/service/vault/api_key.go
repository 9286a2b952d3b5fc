package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"promptvault/internal/auth"
	"promptvault/internal/config"
	"promptvault/internal/domain"
	"promptvault/internal/domain/models"
	"promptvault/internal/domain/models/vault"
	"promptvault/internal/domain/repositories"
	vaultRepo "promptvault/internal/domain/repositories/vault"
	"promptvault/internal/domain/services"
	vaultSvc "promptvault/internal/domain/services/vault"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const createdKeyMessage = "Store this key securely. It will not be shown again."

type apiKeyService struct {
	apiKeyRepo vaultRepo.APIKeyRepository
	orgRepo    repositories.OrganizationRepository
	txManager  repositories.TransactionManager
	authorizer services.ResourceAuthorizer
	activity   vaultSvc.ActivityRecorder
	prefix     string
	now        func() time.Time
	logger     *slog.Logger
}

// NewAPIKeyService creates a new API key service. Generated secrets start
// with prefix followed by an underscore.
func NewAPIKeyService(
	apiKeyRepo vaultRepo.APIKeyRepository,
	orgRepo repositories.OrganizationRepository,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	activity vaultSvc.ActivityRecorder,
	prefix string,
	logger *slog.Logger,
) vaultSvc.APIKeyService {
	return &apiKeyService{
		apiKeyRepo: apiKeyRepo,
		orgRepo:    orgRepo,
		txManager:  txManager,
		authorizer: authorizer,
		activity:   activity,
		prefix:     prefix,
		now:        time.Now,
		logger:     logger,
	}
}

// CreateAPIKey issues a key. The returned view is the only place the full
// secret ever appears.
func (s *apiKeyService) CreateAPIKey(ctx context.Context, req *vaultSvc.CreateAPIKeyRequest) (*vaultSvc.CreatedAPIKey, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.OrganizationID, validation.Required),
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := s.now()
	expiresAt, err := parseExpiry(req.ExpiresAt, now)
	if err != nil {
		return nil, err
	}

	secret, err := auth.GenerateAPIKey(s.prefix)
	if err != nil {
		return nil, err
	}

	key := &vault.APIKey{
		OrganizationID: req.OrganizationID,
		CreatedByID:    req.UserID,
		Name:           req.Name,
		Key:            secret,
		ExpiresAt:      expiresAt,
		CreatedAt:      now,
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.apiKeyRepo.Create(ctx, key); err != nil {
			return err
		}
		return s.activity.Record(ctx, newActivity(req.OrganizationID, req.UserID,
			vault.ActionAPIKeyCreated, vault.EntityAPIKey, key.ID,
			map[string]any{"name": key.Name, "key": vault.MaskSecret(secret)},
		))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "api key created",
		"id", key.ID,
		"name", key.Name,
		"organization_id", key.OrganizationID,
		"expires_at", key.ExpiresAt,
	)

	view := key.View()
	view.Key = secret
	return &vaultSvc.CreatedAPIKey{APIKeyView: view, Message: createdKeyMessage}, nil
}

func (s *apiKeyService) ListAPIKeys(ctx context.Context, organizationID string) ([]vault.APIKeyView, error) {
	keys, err := s.apiKeyRepo.List(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	views := make([]vault.APIKeyView, len(keys))
	for i := range keys {
		views[i] = keys[i].View()
	}
	return views, nil
}

func (s *apiKeyService) DeleteAPIKey(ctx context.Context, organizationID, userID, id string) error {
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		key, err := s.authorizer.CanAccessAPIKey(ctx, organizationID, id)
		if err != nil {
			return err
		}

		if err := s.activity.Record(ctx, newActivity(organizationID, userID,
			vault.ActionAPIKeyDeleted, vault.EntityAPIKey, id,
			map[string]any{"name": key.Name, "key": vault.MaskSecret(key.Key)},
		)); err != nil {
			return err
		}

		return s.apiKeyRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "api key deleted", "id", id, "organization_id", organizationID)
	return nil
}

// Authenticate resolves a raw secret to the identity of the key's creator
// inside the key's organization.
func (s *apiKeyService) Authenticate(ctx context.Context, secret string) (*models.Identity, error) {
	key, err := s.apiKeyRepo.GetByKey(ctx, secret)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.UnauthorizedError{Message: "invalid API key"}
		}
		return nil, err
	}

	now := s.now()
	if key.IsExpired(now) {
		return nil, &domain.UnauthorizedError{Message: "API key has expired"}
	}

	if err := s.apiKeyRepo.TouchLastUsed(ctx, key.ID, now); err != nil {
		s.logger.WarnContext(ctx, "failed to update api key last_used_at", "id", key.ID, "error", err)
	}

	org, err := s.orgRepo.GetByID(ctx, key.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("load api key organization: %w", err)
	}

	return &models.Identity{
		UserID:         key.CreatedByID,
		OrganizationID: org.ID,
		Tenant:         org.Tenant(),
		Method:         models.AuthMethodAPIKey,
		APIKeyID:       key.ID,
	}, nil
}

// parseExpiry accepts an RFC 3339 timestamp in the future. Nil or blank
// means the key never expires.
func parseExpiry(raw *string, now time.Time) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, strings.TrimSpace(*raw))
	if err != nil {
		return nil, fmt.Errorf("%w: expires_at must be an RFC 3339 timestamp", domain.ErrValidation)
	}
	if !t.After(now) {
		return nil, fmt.Errorf("%w: expires_at must be in the future", domain.ErrValidation)
	}
	return &t, nil
}
