package vault

import (
	"context"
	"log/slog"
	"time"

	"promptvault/internal/domain/models/vault"
	vaultRepo "promptvault/internal/domain/repositories/vault"
	vaultSvc "promptvault/internal/domain/services/vault"
)

type activityRecorder struct {
	activityRepo vaultRepo.ActivityRepository
	logger       *slog.Logger
}

// NewActivityRecorder creates the audit log writer
func NewActivityRecorder(activityRepo vaultRepo.ActivityRepository, logger *slog.Logger) vaultSvc.ActivityRecorder {
	return &activityRecorder{
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// Record appends one activity. Callers pass the ctx of their transaction so
// the record commits or rolls back with the mutation it describes.
func (r *activityRecorder) Record(ctx context.Context, activity *vault.Activity) error {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	if err := r.activityRepo.Create(ctx, activity); err != nil {
		return err
	}

	r.logger.DebugContext(ctx, "activity recorded",
		"action", activity.Action,
		"entity_type", activity.EntityType,
		"entity_id", activity.EntityID,
	)
	return nil
}

func newActivity(orgID, userID string, action vault.ActivityAction, entity vault.EntityType, entityID string, metadata map[string]any) *vault.Activity {
	return &vault.Activity{
		OrganizationID: orgID,
		UserID:         userID,
		Action:         action,
		EntityType:     entity,
		EntityID:       entityID,
		Metadata:       metadata,
	}
}
