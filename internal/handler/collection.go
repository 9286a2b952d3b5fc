package handler

import (
	"log/slog"
	"net/http"

	vaultSvc "promptvault/internal/domain/services/vault"
	"promptvault/internal/httputil"
)

// CollectionHandler handles collection HTTP requests
type CollectionHandler struct {
	base
	collections vaultSvc.CollectionService
}

func NewCollectionHandler(collections vaultSvc.CollectionService, logger *slog.Logger, debug bool) *CollectionHandler {
	return &CollectionHandler{
		base:        base{logger: logger, debug: debug},
		collections: collections,
	}
}

type updateCollectionBody struct {
	Name        string                  `json:"name"`
	Description httputil.OptionalString `json:"description"`
	ParentID    httputil.OptionalString `json:"parent_id"`
}

// ListCollections returns the flat forest
// GET /api/collections
func (h *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	collections, err := h.collections.ListCollections(r.Context(), identity.OrganizationID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, collections)
}

// GetTree returns the forest nested under its roots
// GET /api/collections/tree
func (h *CollectionHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	tree, err := h.collections.GetTree(r.Context(), identity.OrganizationID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

// CreateCollection POST /api/collections
func (h *CollectionHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var req vaultSvc.CreateCollectionRequest
	if !decode(w, r, &req) {
		return
	}

	parentID, err := httputil.UUIDPtr("parent_id", req.ParentID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	req.ParentID = parentID
	req.OrganizationID = identity.OrganizationID
	req.UserID = identity.UserID

	collection, err := h.collections.CreateCollection(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, collection)
}

// GetCollection returns one collection. ?include=descendants adds the ids
// of every collection below it.
// GET /api/collections/{id}
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	includeDescendants := r.URL.Query().Get("include") == "descendants"

	collection, err := h.collections.GetCollection(r.Context(), identity.OrganizationID, id, includeDescendants)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, collection)
}

// UpdateCollection renames or moves a collection
// PUT|PATCH /api/collections/{id}
func (h *CollectionHandler) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body updateCollectionBody
	if !decode(w, r, &body) {
		return
	}

	parentID, err := httputil.OptionalUUID("parent_id", body.ParentID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	collection, err := h.collections.UpdateCollection(r.Context(), id, &vaultSvc.UpdateCollectionRequest{
		OrganizationID: identity.OrganizationID,
		UserID:         identity.UserID,
		Name:           body.Name,
		Description:    body.Description.ToModel(),
		ParentID:       parentID.ToModel(),
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, collection)
}

// DeleteCollection removes an empty leaf collection
// DELETE /api/collections/{id}
func (h *CollectionHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.collections.DeleteCollection(r.Context(), identity.OrganizationID, identity.UserID, id); err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondSuccess(w, "Collection deleted successfully")
}
