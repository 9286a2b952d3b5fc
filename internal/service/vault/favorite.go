package vault

import (
	"context"
	"log/slog"

	"promptvault/internal/domain/models/vault"
	"promptvault/internal/domain/repositories"
	vaultRepo "promptvault/internal/domain/repositories/vault"
	"promptvault/internal/domain/services"
	vaultSvc "promptvault/internal/domain/services/vault"
)

type favoriteService struct {
	promptRepo   vaultRepo.PromptRepository
	favoriteRepo vaultRepo.FavoriteRepository
	tagRepo      vaultRepo.TagRepository
	txManager    repositories.TransactionManager
	authorizer   services.ResourceAuthorizer
	activity     vaultSvc.ActivityRecorder
	logger       *slog.Logger
}

// NewFavoriteService creates a new favorite service
func NewFavoriteService(
	promptRepo vaultRepo.PromptRepository,
	favoriteRepo vaultRepo.FavoriteRepository,
	tagRepo vaultRepo.TagRepository,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	activity vaultSvc.ActivityRecorder,
	logger *slog.Logger,
) vaultSvc.FavoriteService {
	return &favoriteService{
		promptRepo:   promptRepo,
		favoriteRepo: favoriteRepo,
		tagRepo:      tagRepo,
		txManager:    txManager,
		authorizer:   authorizer,
		activity:     activity,
		logger:       logger,
	}
}

// ToggleFavorite flips the favorite under the prompt's row lock, so the
// row write and the counter change commit together and concurrent toggles
// serialize.
func (s *favoriteService) ToggleFavorite(ctx context.Context, organizationID, userID, promptID string) (*vault.FavoriteState, error) {
	state := &vault.FavoriteState{PromptID: promptID}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if _, err := s.authorizer.CanAccessPrompt(ctx, organizationID, promptID); err != nil {
			return err
		}

		prompt, err := s.promptRepo.GetForUpdate(ctx, promptID)
		if err != nil {
			return err
		}

		exists, err := s.favoriteRepo.Exists(ctx, userID, promptID)
		if err != nil {
			return err
		}

		action := vault.ActionPromptFavorited
		delta := 1
		if exists {
			action = vault.ActionPromptUnfavorited
			delta = -1
			err = s.favoriteRepo.Delete(ctx, userID, promptID)
		} else {
			err = s.favoriteRepo.Create(ctx, userID, promptID)
		}
		if err != nil {
			return err
		}

		count, err := s.promptRepo.AdjustFavoriteCount(ctx, promptID, delta)
		if err != nil {
			return err
		}
		state.IsFavorited = !exists
		state.FavoriteCount = count

		return s.activity.Record(ctx, newActivity(organizationID, userID,
			action, vault.EntityPrompt, promptID,
			map[string]any{"promptTitle": prompt.Title},
		))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "favorite toggled",
		"prompt_id", promptID,
		"user_id", userID,
		"is_favorited", state.IsFavorited,
		"favorite_count", state.FavoriteCount,
	)

	return state, nil
}

func (s *favoriteService) ListFavorites(ctx context.Context, organizationID, userID string) ([]vault.FavoritePrompt, error) {
	favorites, err := s.promptRepo.ListFavorites(ctx, organizationID, userID)
	if err != nil {
		return nil, err
	}

	items := make([]vault.PromptListItem, len(favorites))
	for i := range favorites {
		items[i] = favorites[i].PromptListItem
	}
	if err := attachTags(ctx, s.tagRepo, items); err != nil {
		return nil, err
	}
	for i := range favorites {
		favorites[i].PromptListItem = items[i]
	}

	return favorites, nil
}
