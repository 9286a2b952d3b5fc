package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"promptvault/internal/domain/models/vault"
	vaultSvc "promptvault/internal/domain/services/vault"
	"promptvault/internal/httputil"
)

// PromptHandler handles prompts and the resources hanging off them:
// versions, comments and favorites.
type PromptHandler struct {
	base
	prompts   vaultSvc.PromptService
	comments  vaultSvc.CommentService
	favorites vaultSvc.FavoriteService
}

// NewPromptHandler creates a new prompt handler
func NewPromptHandler(
	prompts vaultSvc.PromptService,
	comments vaultSvc.CommentService,
	favorites vaultSvc.FavoriteService,
	logger *slog.Logger,
	debug bool,
) *PromptHandler {
	return &PromptHandler{
		base:      base{logger: logger, debug: debug},
		prompts:   prompts,
		comments:  comments,
		favorites: favorites,
	}
}

type updatePromptBody struct {
	Title        *string                 `json:"title"`
	Description  httputil.OptionalString `json:"description"`
	Content      *string                 `json:"content"`
	Variables    *[]string               `json:"variables"`
	Status       *string                 `json:"status"`
	Visibility   *string                 `json:"visibility"`
	CategoryID   httputil.OptionalString `json:"category_id"`
	CollectionID httputil.OptionalString `json:"collection_id"`
	Tags         *[]string               `json:"tags"`
	ChangeNote   *string                 `json:"change_note"`
}

// ListPrompts returns the organization's prompts, newest activity first.
// Query: search, status, category_id, collection_id, tag
// GET /api/prompts
func (h *PromptHandler) ListPrompts(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	categoryID, err := httputil.QueryUUID(r, "category_id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	collectionID, err := httputil.QueryUUID(r, "collection_id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	prompts, err := h.prompts.ListPrompts(r.Context(), vault.PromptFilter{
		OrganizationID: identity.OrganizationID,
		UserID:         identity.UserID,
		Search:         query.Get("search"),
		Status:         vault.PromptStatus(strings.ToUpper(strings.TrimSpace(query.Get("status")))),
		CategoryID:     categoryID,
		CollectionID:   collectionID,
		Tag:            query.Get("tag"),
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prompts)
}

// CreatePrompt stores a draft prompt with its first version
// POST /api/prompts
func (h *PromptHandler) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var req vaultSvc.CreatePromptRequest
	if !decode(w, r, &req) {
		return
	}

	var err error
	if req.CategoryID, err = httputil.UUIDPtr("category_id", req.CategoryID); err != nil {
		h.handleError(w, r, err)
		return
	}
	if req.CollectionID, err = httputil.UUIDPtr("collection_id", req.CollectionID); err != nil {
		h.handleError(w, r, err)
		return
	}
	req.Visibility = enumValue(req.Visibility)
	req.OrganizationID = identity.OrganizationID
	req.UserID = identity.UserID

	prompt, err := h.prompts.CreatePrompt(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, prompt)
}

// GetPrompt returns the prompt with recent versions and comments
// GET /api/prompts/{id}
func (h *PromptHandler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	prompt, err := h.prompts.GetPrompt(r.Context(), identity.OrganizationID, identity.UserID, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prompt)
}

// UpdatePrompt applies a partial update. A content change appends a version.
// PUT|PATCH /api/prompts/{id}
func (h *PromptHandler) UpdatePrompt(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body updatePromptBody
	if !decode(w, r, &body) {
		return
	}

	categoryID, err := httputil.OptionalUUID("category_id", body.CategoryID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	collectionID, err := httputil.OptionalUUID("collection_id", body.CollectionID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	prompt, err := h.prompts.UpdatePrompt(r.Context(), id, &vaultSvc.UpdatePromptRequest{
		OrganizationID: identity.OrganizationID,
		UserID:         identity.UserID,
		Title:          body.Title,
		Description:    body.Description.ToModel(),
		Content:        body.Content,
		Variables:      body.Variables,
		Status:         enumValue(body.Status),
		Visibility:     enumValue(body.Visibility),
		CategoryID:     categoryID.ToModel(),
		CollectionID:   collectionID.ToModel(),
		Tags:           body.Tags,
		ChangeNote:     body.ChangeNote,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prompt)
}

// DeletePrompt removes a prompt with its versions, comments and favorites
// DELETE /api/prompts/{id}
func (h *PromptHandler) DeletePrompt(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.prompts.DeletePrompt(r.Context(), identity.OrganizationID, identity.UserID, id); err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondSuccess(w, "Prompt deleted successfully")
}

// ListVersions GET /api/prompts/{id}/versions
func (h *PromptHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	versions, err := h.prompts.ListVersions(r.Context(), identity.OrganizationID, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, versions)
}

// ListComments GET /api/prompts/{id}/comments
func (h *PromptHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	comments, err := h.comments.ListComments(r.Context(), identity.OrganizationID, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, comments)
}

// AddComment POST /api/prompts/{id}/comments
func (h *PromptHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req vaultSvc.AddCommentRequest
	if !decode(w, r, &req) {
		return
	}
	req.OrganizationID = identity.OrganizationID
	req.UserID = identity.UserID
	req.PromptID = id

	comment, err := h.comments.AddComment(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, comment)
}

// ToggleFavorite flips the caller's favorite on a prompt
// POST /api/prompts/{id}/favorite
func (h *PromptHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	state, err := h.favorites.ToggleFavorite(r.Context(), identity.OrganizationID, identity.UserID, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, state)
}

// ListFavorites returns the caller's favorited prompts
// GET /api/favorites
func (h *PromptHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	favorites, err := h.favorites.ListFavorites(r.Context(), identity.OrganizationID, identity.UserID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, favorites)
}
