package handler

import (
	"log/slog"
	"net/http"

	vaultSvc "promptvault/internal/domain/services/vault"
	"promptvault/internal/httputil"
)

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	base
	categories vaultSvc.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories vaultSvc.CategoryService, logger *slog.Logger, debug bool) *CategoryHandler {
	return &CategoryHandler{
		base:       base{logger: logger, debug: debug},
		categories: categories,
	}
}

type updateCategoryBody struct {
	Name        *string                 `json:"name"`
	Description httputil.OptionalString `json:"description"`
	Color       httputil.OptionalString `json:"color"`
	Icon        httputil.OptionalString `json:"icon"`
}

// ListCategories returns the organization's categories with prompt counts
// GET /api/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	categories, err := h.categories.ListCategories(r.Context(), identity.OrganizationID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, categories)
}

// CreateCategory creates a category
// POST /api/categories
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var req vaultSvc.CreateCategoryRequest
	if !decode(w, r, &req) {
		return
	}
	req.OrganizationID = identity.OrganizationID
	req.UserID = identity.UserID

	category, err := h.categories.CreateCategory(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, category)
}

// GetCategory GET /api/categories/{id}
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	category, err := h.categories.GetCategory(r.Context(), identity.OrganizationID, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, category)
}

// UpdateCategory applies a partial update
// PUT|PATCH /api/categories/{id}
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body updateCategoryBody
	if !decode(w, r, &body) {
		return
	}

	category, err := h.categories.UpdateCategory(r.Context(), id, &vaultSvc.UpdateCategoryRequest{
		OrganizationID: identity.OrganizationID,
		UserID:         identity.UserID,
		Name:           body.Name,
		Description:    body.Description.ToModel(),
		Color:          body.Color.ToModel(),
		Icon:           body.Icon.ToModel(),
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, category)
}

// DeleteCategory removes an unused category
// DELETE /api/categories/{id}
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.categories.DeleteCategory(r.Context(), identity.OrganizationID, identity.UserID, id); err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondSuccess(w, "Category deleted successfully")
}
