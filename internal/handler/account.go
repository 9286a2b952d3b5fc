package handler

import (
	"log/slog"
	"net/http"
	"time"

	"promptvault/internal/domain/models"
	"promptvault/internal/domain/services"
	"promptvault/internal/httputil"
)

// AccountHandler serves the caller's own identity and the health probe.
type AccountHandler struct {
	base
	tenants services.TenantService
}

func NewAccountHandler(tenants services.TenantService, logger *slog.Logger, debug bool) *AccountHandler {
	return &AccountHandler{
		base:    base{logger: logger, debug: debug},
		tenants: tenants,
	}
}

type meResponse struct {
	Identity     *models.Identity     `json:"identity"`
	User         *models.User         `json:"user"`
	Organization *models.Organization `json:"organization"`
}

// Me returns who the caller is and which organization they act in
// GET /api/me
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	user, err := h.tenants.GetUser(r.Context(), identity.UserID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	org, err := h.tenants.GetOrganization(r.Context(), identity.OrganizationID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, meResponse{
		Identity:     identity,
		User:         user,
		Organization: org,
	})
}

// HealthCheck is a simple health check endpoint
func (h *AccountHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}
