package models

import (
	"strings"
	"time"
)

// User mirrors an identity-provider user. Rows are upserted on every
// authenticated session request.
type User struct {
	ID         string    `json:"id" db:"id"`
	ExternalID string    `json:"external_id" db:"external_id"`
	Email      string    `json:"email" db:"email"`
	FirstName  *string   `json:"first_name,omitempty" db:"first_name"`
	LastName   *string   `json:"last_name,omitempty" db:"last_name"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayName joins first and last name, falling back to the email.
func (u *User) DisplayName() string {
	return DisplayName(u.FirstName, u.LastName, u.Email)
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Name: u.DisplayName()}
}

// UserSummary is the author/creator shape embedded in other resources.
type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func DisplayName(first, last *string, email string) string {
	var parts []string
	if first != nil && strings.TrimSpace(*first) != "" {
		parts = append(parts, strings.TrimSpace(*first))
	}
	if last != nil && strings.TrimSpace(*last) != "" {
		parts = append(parts, strings.TrimSpace(*last))
	}
	if len(parts) == 0 {
		return email
	}
	return strings.Join(parts, " ")
}
