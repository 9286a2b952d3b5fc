package models

import (
	"errors"
	"fmt"
)

// TenantKind distinguishes real organizations from a user's implicit
// personal workspace.
type TenantKind string

const (
	TenantOrganization TenantKind = "organization"
	TenantPersonal     TenantKind = "personal"
)

// Tenant identifies the isolation boundary a request acts in. ExternalID is
// the identity provider's organization id for TenantOrganization and the
// provider's user id for TenantPersonal.
type Tenant struct {
	Kind       TenantKind `json:"kind"`
	ExternalID string     `json:"external_id"`
}

func OrganizationTenant(orgID string) Tenant {
	return Tenant{Kind: TenantOrganization, ExternalID: orgID}
}

func PersonalTenant(userID string) Tenant {
	return Tenant{Kind: TenantPersonal, ExternalID: userID}
}

func (t Tenant) IsPersonal() bool {
	return t.Kind == TenantPersonal
}

func (t Tenant) String() string {
	return fmt.Sprintf("%s:%s", t.Kind, t.ExternalID)
}

func (t Tenant) Validate() error {
	switch t.Kind {
	case TenantOrganization, TenantPersonal:
	default:
		return fmt.Errorf("unknown tenant kind %q", t.Kind)
	}
	if t.ExternalID == "" {
		return errors.New("tenant external id is required")
	}
	return nil
}
