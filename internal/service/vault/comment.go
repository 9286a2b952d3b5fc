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

type commentService struct {
	commentRepo vaultRepo.CommentRepository
	userRepo    repositories.UserRepository
	txManager   repositories.TransactionManager
	authorizer  services.ResourceAuthorizer
	activity    vaultSvc.ActivityRecorder
	logger      *slog.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(
	commentRepo vaultRepo.CommentRepository,
	userRepo repositories.UserRepository,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	activity vaultSvc.ActivityRecorder,
	logger *slog.Logger,
) vaultSvc.CommentService {
	return &commentService{
		commentRepo: commentRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		authorizer:  authorizer,
		activity:    activity,
		logger:      logger,
	}
}

func (s *commentService) AddComment(ctx context.Context, req *vaultSvc.AddCommentRequest) (*vault.Comment, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.OrganizationID, validation.Required),
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.PromptID, validation.Required),
		validation.Field(&req.Content, validation.Required, validation.Length(1, config.MaxCommentLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	comment := &vault.Comment{
		PromptID:  req.PromptID,
		AuthorID:  req.UserID,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		prompt, err := s.authorizer.CanAccessPrompt(ctx, req.OrganizationID, req.PromptID)
		if err != nil {
			return err
		}

		if err := s.commentRepo.Create(ctx, comment); err != nil {
			return err
		}

		return s.activity.Record(ctx, newActivity(req.OrganizationID, req.UserID,
			vault.ActionCommentCreated, vault.EntityComment, comment.ID,
			map[string]any{"promptId": prompt.ID, "promptTitle": prompt.Title},
		))
	})
	if err != nil {
		return nil, err
	}

	if author, err := s.userRepo.GetByID(ctx, req.UserID); err == nil {
		summary := author.Summary()
		comment.Author = &summary
	} else {
		s.logger.WarnContext(ctx, "failed to load comment author", "user_id", req.UserID, "error", err)
	}

	s.logger.InfoContext(ctx, "comment added", "id", comment.ID, "prompt_id", req.PromptID)
	return comment, nil
}

func (s *commentService) ListComments(ctx context.Context, organizationID, promptID string) ([]vault.Comment, error) {
	if _, err := s.authorizer.CanAccessPrompt(ctx, organizationID, promptID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPrompt(ctx, promptID)
}
