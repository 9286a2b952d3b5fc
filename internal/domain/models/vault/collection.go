package vault

import "time"

// Collection is a node in an organization's collection forest.
type Collection struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	Description    *string   `json:"description" db:"description"`
	ParentID       *string   `json:"parent_id" db:"parent_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type CollectionSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CollectionView is a collection with its parent summary and counts.
type CollectionView struct {
	Collection
	Parent        *CollectionSummary `json:"parent"`
	PromptCount   int                `json:"prompt_count"`
	ChildrenCount int                `json:"children_count"`
	DescendantIDs []string           `json:"descendant_ids,omitempty"`
}

// CollectionTreeNode is a nested view of the forest.
type CollectionTreeNode struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Description   *string               `json:"description"`
	ParentID      *string               `json:"parent_id"`
	PromptCount   int                   `json:"prompt_count"`
	ChildrenCount int                   `json:"children_count"`
	Children      []*CollectionTreeNode `json:"children"`
}
