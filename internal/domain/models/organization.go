package models

import "time"

// MemberRole is a user's role inside an organization.
type MemberRole string

const (
	RoleOwner  MemberRole = "OWNER"
	RoleMember MemberRole = "MEMBER"
)

// Organization is the local record of a tenant. It is created lazily the
// first time an authenticated request arrives for an unknown tenant.
type Organization struct {
	ID         string     `json:"id" db:"id"`
	Kind       TenantKind `json:"kind" db:"kind"`
	ExternalID string     `json:"external_id" db:"external_id"`
	Name       string     `json:"name" db:"name"`
	Slug       string     `json:"slug" db:"slug"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

func (o *Organization) Tenant() Tenant {
	return Tenant{Kind: o.Kind, ExternalID: o.ExternalID}
}

type Membership struct {
	OrganizationID string     `json:"organization_id" db:"organization_id"`
	UserID         string     `json:"user_id" db:"user_id"`
	Role           MemberRole `json:"role" db:"role"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}
