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

type collectionService struct {
	collectionRepo vaultRepo.CollectionRepository
	txManager      repositories.TransactionManager
	authorizer     services.ResourceAuthorizer
	activity       vaultSvc.ActivityRecorder
	logger         *slog.Logger
}

// NewCollectionService creates the collection tree manager
func NewCollectionService(
	collectionRepo vaultRepo.CollectionRepository,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	activity vaultSvc.ActivityRecorder,
	logger *slog.Logger,
) vaultSvc.CollectionService {
	return &collectionService{
		collectionRepo: collectionRepo,
		txManager:      txManager,
		authorizer:     authorizer,
		activity:       activity,
		logger:         logger,
	}
}

// CreateCollection creates a root collection, or a child of a collection in
// the same organization. A new node cannot close a cycle.
func (s *collectionService) CreateCollection(ctx context.Context, req *vaultSvc.CreateCollectionRequest) (*vault.CollectionView, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.ParentID != nil && strings.TrimSpace(*req.ParentID) == "" {
		req.ParentID = nil
	}

	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	collection := &vault.Collection{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Description:    normalizeText(req.Description),
		ParentID:       req.ParentID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var view *vault.CollectionView
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if collection.ParentID != nil {
			if _, err := s.authorizer.CanAccessCollection(ctx, req.OrganizationID, *collection.ParentID); err != nil {
				return err
			}
		}

		if err := s.collectionRepo.Create(ctx, collection); err != nil {
			return err
		}

		if err := s.activity.Record(ctx, newActivity(req.OrganizationID, req.UserID,
			vault.ActionCollectionCreated, vault.EntityCollection, collection.ID,
			map[string]any{"name": collection.Name},
		)); err != nil {
			return err
		}

		var err error
		view, err = s.collectionRepo.GetView(ctx, collection.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "collection created",
		"id", collection.ID,
		"name", collection.Name,
		"parent_id", collection.ParentID,
		"organization_id", req.OrganizationID,
	)

	return view, nil
}

// GetCollection returns one node. Descendants are computed from a fresh
// read of the organization's forest.
func (s *collectionService) GetCollection(ctx context.Context, organizationID, id string, includeDescendants bool) (*vault.CollectionView, error) {
	if _, err := s.authorizer.CanAccessCollection(ctx, organizationID, id); err != nil {
		return nil, err
	}

	view, err := s.collectionRepo.GetView(ctx, id)
	if err != nil {
		return nil, err
	}

	if includeDescendants {
		all, err := s.collectionRepo.List(ctx, organizationID)
		if err != nil {
			return nil, err
		}
		view.DescendantIDs = Descendants(all, id)
	}

	return view, nil
}

func (s *collectionService) ListCollections(ctx context.Context, organizationID string) ([]vault.CollectionView, error) {
	return s.collectionRepo.List(ctx, organizationID)
}

func (s *collectionService) GetTree(ctx context.Context, organizationID string) ([]*vault.CollectionTreeNode, error) {
	all, err := s.collectionRepo.List(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	tree := BuildCollectionTree(all)

	s.logger.DebugContext(ctx, "collection tree built",
		"organization_id", organizationID,
		"collection_count", len(all),
		"root_count", len(tree),
	)

	return tree, nil
}

// UpdateCollection renames a collection and optionally moves it. A move runs
// under the organization's tree lock so concurrent moves cannot jointly
// form a cycle.
func (s *collectionService) UpdateCollection(ctx context.Context, id string, req *vaultSvc.UpdateCollectionRequest) (*vault.CollectionView, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var view *vault.CollectionView
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		collection, err := s.authorizer.CanAccessCollection(ctx, req.OrganizationID, id)
		if err != nil {
			return err
		}

		collection.Name = req.Name
		if req.Description.Present {
			collection.Description = normalizeText(req.Description.Value)
		}

		// Tri-state: only move when the field was sent
		if req.ParentID.Present {
			newParentID := req.ParentID.Value
			if newParentID != nil && strings.TrimSpace(*newParentID) == "" {
				newParentID = nil
			}

			if newParentID != nil && !sameParent(collection.ParentID, *newParentID) {
				if err := s.collectionRepo.LockTree(ctx, req.OrganizationID); err != nil {
					return err
				}
				if _, err := s.authorizer.CanAccessCollection(ctx, req.OrganizationID, *newParentID); err != nil {
					return err
				}
				if err := s.validateNoCircularReference(ctx, req.OrganizationID, id, *newParentID); err != nil {
					return err
				}
				s.logger.DebugContext(ctx, "moving collection",
					"collection_id", id,
					"new_parent_id", *newParentID,
				)
			}
			collection.ParentID = newParentID
		}

		collection.UpdatedAt = time.Now()
		if err := s.collectionRepo.Update(ctx, collection); err != nil {
			return err
		}

		if err := s.activity.Record(ctx, newActivity(req.OrganizationID, req.UserID,
			vault.ActionCollectionUpdated, vault.EntityCollection, id,
			map[string]any{"name": collection.Name},
		)); err != nil {
			return err
		}

		view, err = s.collectionRepo.GetView(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "collection updated",
		"id", id,
		"name", view.Name,
		"parent_id", view.ParentID,
	)

	return view, nil
}

// DeleteCollection removes a leaf collection. Children and prompts are never
// cascaded or reassigned.
func (s *collectionService) DeleteCollection(ctx context.Context, organizationID, userID, id string) error {
	var name string
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.collectionRepo.LockTree(ctx, organizationID); err != nil {
			return err
		}

		collection, err := s.authorizer.CanAccessCollection(ctx, organizationID, id)
		if err != nil {
			return err
		}
		name = collection.Name

		prompts, err := s.collectionRepo.CountPrompts(ctx, id)
		if err != nil {
			return err
		}
		if prompts > 0 {
			return domain.NewConflict("collection", id,
				fmt.Sprintf("cannot delete collection with %d prompt(s); move or delete them first", prompts))
		}

		children, err := s.collectionRepo.CountChildren(ctx, id)
		if err != nil {
			return err
		}
		if children > 0 {
			return domain.NewConflict("collection", id,
				fmt.Sprintf("cannot delete collection with %d child collection(s); delete or move them first", children))
		}

		if err := s.activity.Record(ctx, newActivity(organizationID, userID,
			vault.ActionCollectionDeleted, vault.EntityCollection, id,
			map[string]any{"name": collection.Name},
		)); err != nil {
			return err
		}

		return s.collectionRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "collection deleted",
		"id", id,
		"name", name,
		"organization_id", organizationID,
	)

	return nil
}

// validateNoCircularReference walks up from newParentID. Reaching id means
// the move would make a collection its own ancestor. The walk visits at
// most one node per collection in the organization; a longer chain means
// the stored links already contain a cycle.
func (s *collectionService) validateNoCircularReference(ctx context.Context, organizationID, id, newParentID string) error {
	if id == newParentID {
		return domain.NewConflict("collection", id, "a collection cannot be its own parent")
	}

	limit, err := s.collectionRepo.Count(ctx, organizationID)
	if err != nil {
		return err
	}

	current := &newParentID
	for steps := 0; current != nil; steps++ {
		if *current == id {
			return domain.NewConflict("collection", id, "cannot move a collection into one of its own descendants")
		}
		if steps >= limit {
			return domain.NewConflict("collection", id, "collection hierarchy contains a cycle")
		}

		node, err := s.collectionRepo.GetByID(ctx, *current)
		if err != nil {
			return err
		}
		current = node.ParentID
	}

	return nil
}

func (s *collectionService) validateCreateRequest(req *vaultSvc.CreateCollectionRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OrganizationID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
	)
}

func (s *collectionService) validateUpdateRequest(req *vaultSvc.UpdateCollectionRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OrganizationID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
		validation.Field(&req.Description, validation.By(optionalLength(config.MaxDescriptionLength))),
	)
}

func sameParent(current *string, candidate string) bool {
	return current != nil && *current == candidate
}
