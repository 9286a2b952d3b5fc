package auth

import (
	"context"
	"fmt"
	"log/slog"

	"promptvault/internal/domain/services"

	"github.com/workos/workos-go/v6/pkg/organizations"
)

// WorkOSDirectory resolves organization display names through the WorkOS
// organizations API.
type WorkOSDirectory struct {
	logger *slog.Logger
}

// NewWorkOSDirectory configures the WorkOS client with apiKey.
func NewWorkOSDirectory(apiKey string, logger *slog.Logger) services.OrganizationDirectory {
	organizations.SetAPIKey(apiKey)
	return &WorkOSDirectory{logger: logger}
}

func (d *WorkOSDirectory) OrganizationName(ctx context.Context, externalID string) (string, error) {
	org, err := organizations.GetOrganization(ctx, organizations.GetOrganizationOpts{
		Organization: externalID,
	})
	if err != nil {
		return "", fmt.Errorf("fetching workos organization %s: %w", externalID, err)
	}

	d.logger.DebugContext(ctx, "workos organization resolved", "external_id", externalID, "name", org.Name)
	return org.Name, nil
}

// StaticDirectory names every organization after its external id. It is
// used when no WorkOS key is configured.
type StaticDirectory struct{}

func (StaticDirectory) OrganizationName(_ context.Context, externalID string) (string, error) {
	return externalID, nil
}
