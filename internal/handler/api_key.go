package handler

import (
	"log/slog"
	"net/http"

	vaultSvc "promptvault/internal/domain/services/vault"
	"promptvault/internal/httputil"
)

// APIKeyHandler handles API key HTTP requests
type APIKeyHandler struct {
	base
	apiKeys vaultSvc.APIKeyService
}

func NewAPIKeyHandler(apiKeys vaultSvc.APIKeyService, logger *slog.Logger, debug bool) *APIKeyHandler {
	return &APIKeyHandler{
		base:    base{logger: logger, debug: debug},
		apiKeys: apiKeys,
	}
}

// ListAPIKeys returns masked keys
// GET /api/api-keys
func (h *APIKeyHandler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	keys, err := h.apiKeys.ListAPIKeys(r.Context(), identity.OrganizationID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, keys)
}

// CreateAPIKey issues a key. The response is the only place the full
// secret ever appears.
// POST /api/api-keys
func (h *APIKeyHandler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var req vaultSvc.CreateAPIKeyRequest
	if !decode(w, r, &req) {
		return
	}
	req.OrganizationID = identity.OrganizationID
	req.UserID = identity.UserID

	created, err := h.apiKeys.CreateAPIKey(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	httputil.RespondJSON(w, http.StatusCreated, created)
}

// DeleteAPIKey revokes a key
// DELETE /api/api-keys/{id}
func (h *APIKeyHandler) DeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.apiKeys.DeleteAPIKey(r.Context(), identity.OrganizationID, identity.UserID, id); err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondSuccess(w, "API key deleted successfully")
}
