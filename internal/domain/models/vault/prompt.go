package vault

import (
	"time"

	"promptvault/internal/domain/models"
)

type PromptStatus string

const (
	StatusDraft     PromptStatus = "DRAFT"
	StatusPublished PromptStatus = "PUBLISHED"
	StatusArchived  PromptStatus = "ARCHIVED"
)

func (s PromptStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

type Visibility string

const (
	VisibilityPrivate      Visibility = "PRIVATE"
	VisibilityOrganization Visibility = "ORGANIZATION"
)

func (v Visibility) IsValid() bool {
	return v == VisibilityPrivate || v == VisibilityOrganization
}

// Prompt is the mutable head of a prompt. Content always equals the
// content of the latest version after a content-changing update.
type Prompt struct {
	ID             string       `json:"id" db:"id"`
	OrganizationID string       `json:"organization_id" db:"organization_id"`
	AuthorID       string       `json:"author_id" db:"author_id"`
	CategoryID     *string      `json:"category_id" db:"category_id"`
	CollectionID   *string      `json:"collection_id" db:"collection_id"`
	Title          string       `json:"title" db:"title"`
	Description    *string      `json:"description" db:"description"`
	Content        string       `json:"content" db:"content"`
	Variables      []string     `json:"variables" db:"variables"`
	Status         PromptStatus `json:"status" db:"status"`
	Visibility     Visibility   `json:"visibility" db:"visibility"`
	FavoriteCount  int          `json:"favorite_count" db:"favorite_count"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// PromptVersion is an immutable content snapshot. Version numbers start
// at 1 and are dense per prompt.
type PromptVersion struct {
	ID                string              `json:"id" db:"id"`
	PromptID          string              `json:"prompt_id" db:"prompt_id"`
	Version           int                 `json:"version" db:"version"`
	Content           string              `json:"content" db:"content"`
	Variables         []string            `json:"variables" db:"variables"`
	ChangeDescription *string             `json:"change_description" db:"change_description"`
	CreatedByID       string              `json:"created_by_id" db:"created_by_id"`
	CreatedBy         *models.UserSummary `json:"created_by,omitempty"`
	CreatedAt         time.Time           `json:"created_at" db:"created_at"`
}

type Comment struct {
	ID        string              `json:"id" db:"id"`
	PromptID  string              `json:"prompt_id" db:"prompt_id"`
	AuthorID  string              `json:"author_id" db:"author_id"`
	Content   string              `json:"content" db:"content"`
	Author    *models.UserSummary `json:"author,omitempty"`
	CreatedAt time.Time           `json:"created_at" db:"created_at"`
}

// PromptListItem is a prompt joined with its author, category, collection,
// tags and counters.
type PromptListItem struct {
	Prompt
	Author       models.UserSummary `json:"author"`
	Category     *CategorySummary   `json:"category"`
	Collection   *CollectionSummary `json:"collection"`
	Tags         []TagSummary       `json:"tags"`
	VersionCount int                `json:"version_count"`
	CommentCount int                `json:"comment_count"`
	IsFavorited  bool               `json:"is_favorited"`
}

// HasTag reports whether the prompt carries a tag with the given name,
// compared case-insensitively.
func (p *PromptListItem) HasTag(name string) bool {
	for _, t := range p.Tags {
		if equalFold(t.Name, name) {
			return true
		}
	}
	return false
}

// PromptDetail adds the recent version history and comments.
type PromptDetail struct {
	PromptListItem
	Versions []PromptVersion `json:"versions"`
	Comments []Comment       `json:"comments"`
}

// FavoritePrompt is a favorited prompt with the time it was favorited.
type FavoritePrompt struct {
	PromptListItem
	FavoritedAt time.Time `json:"favorited_at"`
}

// FavoriteState is the outcome of a favorite toggle.
type FavoriteState struct {
	PromptID      string `json:"prompt_id"`
	IsFavorited   bool   `json:"is_favorited"`
	FavoriteCount int    `json:"favorite_count"`
}

// PromptFilter narrows a prompt listing. Tag is applied after the fetch.
type PromptFilter struct {
	OrganizationID string
	UserID         string
	Search         string
	Status         PromptStatus
	CategoryID     string
	CollectionID   string
	Tag            string
}
