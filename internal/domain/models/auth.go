package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the session token issued by the identity provider.
type Claims struct {
	jwt.RegisteredClaims
	OrgID      string `json:"org_id,omitempty"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
}

func (c *Claims) GetUserID() string {
	return c.Subject
}

// Tenant picks the active organization, or the user's personal workspace
// when the session has none.
func (c *Claims) Tenant() Tenant {
	if c.OrgID != "" {
		return OrganizationTenant(c.OrgID)
	}
	return PersonalTenant(c.Subject)
}

type AuthMethod string

const (
	AuthMethodSession AuthMethod = "session"
	AuthMethodAPIKey  AuthMethod = "api_key"
)

// Identity is the resolved caller of a request: a local user acting inside
// a local organization.
type Identity struct {
	UserID         string     `json:"user_id"`
	OrganizationID string     `json:"organization_id"`
	Tenant         Tenant     `json:"tenant"`
	Method         AuthMethod `json:"method"`
	APIKeyID       string     `json:"api_key_id,omitempty"`
}

// OptionalString carries PATCH tri-state semantics without any transport
// coupling. Handlers map it from httputil.OptionalString.
//   - Present=false: leave unchanged
//   - Present=true, Value=nil: clear
//   - Present=true, Value!=nil: set
type OptionalString struct {
	Present bool
	Value   *string
}
