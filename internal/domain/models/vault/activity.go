package vault

import "time"

type ActivityAction string

const (
	ActionPromptCreated     ActivityAction = "PROMPT_CREATED"
	ActionPromptUpdated     ActivityAction = "PROMPT_UPDATED"
	ActionPromptDeleted     ActivityAction = "PROMPT_DELETED"
	ActionPromptFavorited   ActivityAction = "PROMPT_FAVORITED"
	ActionPromptUnfavorited ActivityAction = "PROMPT_UNFAVORITED"
	ActionCommentCreated    ActivityAction = "COMMENT_CREATED"
	ActionCollectionCreated ActivityAction = "COLLECTION_CREATED"
	ActionCollectionUpdated ActivityAction = "COLLECTION_UPDATED"
	ActionCollectionDeleted ActivityAction = "COLLECTION_DELETED"
	ActionTagCreated        ActivityAction = "TAG_CREATED"
	ActionTagUpdated        ActivityAction = "TAG_UPDATED"
	ActionTagDeleted        ActivityAction = "TAG_DELETED"
	ActionCategoryCreated   ActivityAction = "CATEGORY_CREATED"
	ActionCategoryUpdated   ActivityAction = "CATEGORY_UPDATED"
	ActionCategoryDeleted   ActivityAction = "CATEGORY_DELETED"
	ActionAPIKeyCreated     ActivityAction = "API_KEY_CREATED"
	ActionAPIKeyDeleted     ActivityAction = "API_KEY_DELETED"
)

type EntityType string

const (
	EntityPrompt     EntityType = "PROMPT"
	EntityComment    EntityType = "COMMENT"
	EntityCollection EntityType = "COLLECTION"
	EntityTag        EntityType = "TAG"
	EntityCategory   EntityType = "CATEGORY"
	EntityAPIKey     EntityType = "API_KEY"
)

// Activity is an append-only audit record.
type Activity struct {
	ID             string         `json:"id" db:"id"`
	OrganizationID string         `json:"organization_id" db:"organization_id"`
	UserID         string         `json:"user_id" db:"user_id"`
	Action         ActivityAction `json:"action" db:"action"`
	EntityType     EntityType     `json:"entity_type" db:"entity_type"`
	EntityID       string         `json:"entity_id" db:"entity_id"`
	Metadata       map[string]any `json:"metadata" db:"metadata"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}
