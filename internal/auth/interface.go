package auth

import "promptvault/internal/domain/models"

// TokenVerifier validates session tokens issued by the identity provider.
// The middleware depends on this interface only.
type TokenVerifier interface {
	// VerifyToken validates a JWT and returns its claims. Invalid, expired
	// or wrongly signed tokens are domain.ErrUnauthorized.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
