package handler

import (
	"log/slog"
	"net/http"

	vaultSvc "promptvault/internal/domain/services/vault"
	"promptvault/internal/httputil"
)

// TagHandler handles tag HTTP requests
type TagHandler struct {
	base
	tags vaultSvc.TagService
}

func NewTagHandler(tags vaultSvc.TagService, logger *slog.Logger, debug bool) *TagHandler {
	return &TagHandler{
		base: base{logger: logger, debug: debug},
		tags: tags,
	}
}

type updateTagBody struct {
	Name  *string                 `json:"name"`
	Color httputil.OptionalString `json:"color"`
}

// ListTags GET /api/tags
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	tags, err := h.tags.ListTags(r.Context(), identity.OrganizationID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tags)
}

// CreateTag POST /api/tags
func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var req vaultSvc.CreateTagRequest
	if !decode(w, r, &req) {
		return
	}
	req.OrganizationID = identity.OrganizationID
	req.UserID = identity.UserID

	tag, err := h.tags.CreateTag(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, tag)
}

// GetTag GET /api/tags/{id}
func (h *TagHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	tag, err := h.tags.GetTag(r.Context(), identity.OrganizationID, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tag)
}

// UpdateTag renames or recolors a tag
// PUT|PATCH /api/tags/{id}
func (h *TagHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body updateTagBody
	if !decode(w, r, &body) {
		return
	}

	tag, err := h.tags.UpdateTag(r.Context(), id, &vaultSvc.UpdateTagRequest{
		OrganizationID: identity.OrganizationID,
		UserID:         identity.UserID,
		Name:           body.Name,
		Color:          body.Color.ToModel(),
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tag)
}

// DeleteTag DELETE /api/tags/{id}
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.tags.DeleteTag(r.Context(), identity.OrganizationID, identity.UserID, id); err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondSuccess(w, "Tag deleted successfully")
}
