package vault

import "time"

// APIKey is an organization-scoped bearer secret. Key holds the raw secret
// and is never serialized; responses use APIKeyView.
type APIKey struct {
	ID             string     `json:"id" db:"id"`
	OrganizationID string     `json:"organization_id" db:"organization_id"`
	CreatedByID    string     `json:"created_by_id" db:"created_by_id"`
	Name           string     `json:"name" db:"name"`
	Key            string     `json:"-" db:"key"`
	ExpiresAt      *time.Time `json:"expires_at" db:"expires_at"`
	LastUsedAt     *time.Time `json:"last_used_at" db:"last_used_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

func (k *APIKey) IsExpired(now time.Time) bool {
	return k.ExpiresAt != nil && !k.ExpiresAt.After(now)
}

// View returns the masked representation.
func (k *APIKey) View() APIKeyView {
	return APIKeyView{
		ID:         k.ID,
		Name:       k.Name,
		Key:        MaskSecret(k.Key),
		ExpiresAt:  k.ExpiresAt,
		LastUsedAt: k.LastUsedAt,
		CreatedAt:  k.CreatedAt,
	}
}

type APIKeyView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Key        string     `json:"key"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// MaskSecret shows the first 8 and last 4 characters joined by an
// ellipsis. Secrets too short to mask are hidden entirely.
func MaskSecret(secret string) string {
	if len(secret) <= 12 {
		return "..."
	}
	return secret[:8] + "..." + secret[len(secret)-4:]
}
